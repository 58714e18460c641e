package steps

import (
	"strings"
	"testing"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

func TestReflectionDimensionForIsDeterministic(t *testing.T) {
	a := ReflectionDimensionFor("I baked sourdough bread today")
	b := ReflectionDimensionFor("I baked sourdough bread today")
	if a != b {
		t.Fatalf("same activity must map to the same dimension: %s vs %s", a, b)
	}

	valid := map[string]bool{}
	for _, d := range reflectionDimensions {
		valid[d] = true
	}
	if !valid[a] {
		t.Fatalf("unknown dimension %q", a)
	}
}

func TestParseCreditMapping(t *testing.T) {
	got := parseCreditMapping(map[string]any{
		"matched":   true,
		"rule_key":  "baking",
		"subjects":  []any{"Culinary Arts", "Chemistry", ""},
		"credits":   0.02,
		"extension": " Try doubling the recipe. ",
	})
	if !got.Matched || got.RuleKey != "baking" || got.Credits != 0.02 {
		t.Fatalf("unexpected mapping: %+v", got)
	}
	if len(got.Subjects) != 2 {
		t.Fatalf("blank subjects must be dropped: %+v", got.Subjects)
	}
	if got.Extension != "Try doubling the recipe." {
		t.Fatalf("extension not trimmed: %q", got.Extension)
	}

	empty := parseCreditMapping(map[string]any{"matched": false})
	if empty.Matched || len(empty.Subjects) != 0 {
		t.Fatalf("no-match mapping must stay empty: %+v", empty)
	}
}

func TestComposeGapNudge(t *testing.T) {
	aligned := composeGapNudge([]string{"Science", "Health"}, []string{"science experiments"})
	if aligned == "" || !containsFold(aligned, "science") {
		t.Fatalf("interest overlap must produce an aligned nudge: %q", aligned)
	}

	generic := composeGapNudge([]string{"Mathematics"}, []string{"skateboarding"})
	if generic == "" || !containsFold(generic, "Mathematics") {
		t.Fatalf("generic nudge must name the subject: %q", generic)
	}
}

func TestInterestKeywords(t *testing.T) {
	got := interestKeywords([]string{" Robotics ", "", "space", "chess", "drawing", "music"})
	if len(got) != opportunityMaxKeywords {
		t.Fatalf("keywords must cap at %d: %v", opportunityMaxKeywords, got)
	}
	if got[0] != "robotics" {
		t.Fatalf("keywords must be lowercased and trimmed: %v", got)
	}
}

func TestRecentHistory(t *testing.T) {
	history := []types.ChatMessage{
		{Role: "student", Content: "one"},
		{Role: "tutor", Content: "two"},
		{Role: "student", Content: "three"},
	}
	got := recentHistory(history, 2)
	if len(got) != 2 || got[0].Content != "two" {
		t.Fatalf("most recent turns must be kept: %+v", got)
	}
	if len(recentHistory(history, 5)) != 3 {
		t.Fatalf("short history must pass through unchanged")
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
