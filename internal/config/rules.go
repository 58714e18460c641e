package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/mentorloop-backend/internal/logger"
)

// ActivityRule is one row of the activity-to-credit mapping table the
// LIFE_LOG matcher is asked to choose from.
type ActivityRule struct {
	Key          string   `yaml:"key"`
	Examples     []string `yaml:"examples"`
	Subjects     []string `yaml:"subjects"`
	TypicalHours float64  `yaml:"typical_hours"`
	Extension    string   `yaml:"extension,omitempty"`
}

// GradeExpectation lists the credits a student in a grade band is expected
// to accumulate per subject.
type GradeExpectation struct {
	Band     string             `yaml:"band"`
	Subjects map[string]float64 `yaml:"subjects"`
}

// Rules is the immutable rule configuration loaded once at process start
// and passed into the pipeline constructor.
type Rules struct {
	ActivityRules     []ActivityRule     `yaml:"activity_rules"`
	GradeExpectations []GradeExpectation `yaml:"grade_expectations"`
}

func Load(path string, log *logger.Logger) (*Rules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file %s: %w", path, err)
	}
	var r Rules
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if len(r.ActivityRules) == 0 {
		return nil, fmt.Errorf("rules file %s has no activity_rules", path)
	}
	if log != nil {
		log.Info("Rules loaded",
			"path", path,
			"activity_rules", len(r.ActivityRules),
			"grade_expectations", len(r.GradeExpectations),
		)
	}
	return &r, nil
}

// ExpectationsForBand returns the per-subject expected credits for a grade
// band, or nil when the band is unknown.
func (r *Rules) ExpectationsForBand(band string) map[string]float64 {
	for _, e := range r.GradeExpectations {
		if e.Band == band {
			return e.Subjects
		}
	}
	return nil
}

// Default returns the built-in rule set used when no rules file is
// configured. Kept small; deployments ship their own YAML.
func Default() *Rules {
	return &Rules{
		ActivityRules: []ActivityRule{
			{
				Key:          "baking",
				Examples:     []string{"baked sourdough bread", "made cookies from scratch"},
				Subjects:     []string{"Culinary Arts", "Chemistry"},
				TypicalHours: 3,
				Extension:    "Try doubling the recipe and recalculating ratios.",
			},
			{
				Key:          "building",
				Examples:     []string{"built a birdhouse", "assembled a PC"},
				Subjects:     []string{"Engineering", "Mathematics"},
				TypicalHours: 4,
				Extension:    "Sketch a scale drawing of what you built.",
			},
			{
				Key:          "volunteering",
				Examples:     []string{"volunteered at the food bank"},
				Subjects:     []string{"Social Studies", "Health"},
				TypicalHours: 3,
			},
			{
				Key:          "coding",
				Examples:     []string{"wrote a small game", "made a website"},
				Subjects:     []string{"Computer Science"},
				TypicalHours: 4,
				Extension:    "Add one automated test to your project.",
			},
			{
				Key:          "gardening",
				Examples:     []string{"planted a vegetable garden"},
				Subjects:     []string{"Biology"},
				TypicalHours: 2,
			},
		},
		GradeExpectations: []GradeExpectation{
			{
				Band: "6-8",
				Subjects: map[string]float64{
					"Mathematics":    1,
					"Science":        1,
					"Language Arts":  1,
					"Social Studies": 1,
				},
			},
			{
				Band: "9-12",
				Subjects: map[string]float64{
					"Mathematics":      4,
					"Science":          3,
					"Language Arts":    4,
					"Social Studies":   3,
					"Health":           1,
					"Computer Science": 1,
				},
			},
		},
	}
}
