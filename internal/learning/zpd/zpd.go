// Package zpd computes the zone of proximal development: the concepts a
// learner is ready for next, given decayed mastery and prerequisite
// readiness over the concept graph. Pure computation; callers assemble the
// snapshot from storage.
package zpd

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	// MasteredThreshold excludes concepts whose decayed mastery is high
	// enough to count as known.
	MasteredThreshold = 0.7
	// ReadinessThreshold excludes concepts whose prerequisites are not
	// sufficiently mastered yet.
	ReadinessThreshold = 0.7
	// DecayHalfLifeDays is the forgetting-curve half life.
	DecayHalfLifeDays = 30.0
)

// ConceptSnapshot is one concept with the learner's recorded state.
type ConceptSnapshot struct {
	ConceptID       uuid.UUID
	Subject         string
	Mastery         float64
	LastPracticedAt *time.Time
	PrerequisiteIDs []uuid.UUID
	DependentCount  int
}

// Candidate is one learnable concept with its scoring inputs.
type Candidate struct {
	ConceptID             uuid.UUID
	CurrentMastery        float64
	DecayedMastery        float64
	PrerequisiteReadiness float64
	Priority              float64
}

// DecayedMastery applies the exponential forgetting curve to a raw mastery
// level. A concept never practiced does not decay.
func DecayedMastery(raw float64, lastPracticed *time.Time, now time.Time) float64 {
	if lastPracticed == nil {
		return raw
	}
	days := now.Sub(*lastPracticed).Hours() / 24
	if days <= 0 {
		return raw
	}
	return raw * math.Pow(0.5, days/DecayHalfLifeDays)
}

// Select returns the learnable concepts ordered by priority (descending,
// stable). limit <= 0 means no truncation.
func Select(snapshots []ConceptSnapshot, now time.Time, limit int) []Candidate {
	decayed := make(map[uuid.UUID]float64, len(snapshots))
	maxDependents := 0
	for _, s := range snapshots {
		decayed[s.ConceptID] = DecayedMastery(s.Mastery, s.LastPracticedAt, now)
		if s.DependentCount > maxDependents {
			maxDependents = s.DependentCount
		}
	}

	out := make([]Candidate, 0, len(snapshots))
	for _, s := range snapshots {
		d := decayed[s.ConceptID]
		if d >= MasteredThreshold {
			continue
		}

		readiness := 1.0
		if len(s.PrerequisiteIDs) > 0 {
			sum := 0.0
			for _, p := range s.PrerequisiteIDs {
				sum += decayed[p]
			}
			readiness = sum / float64(len(s.PrerequisiteIDs))
		}
		if readiness < ReadinessThreshold {
			continue
		}

		influence := 0.0
		if maxDependents > 0 {
			influence = float64(s.DependentCount) / float64(maxDependents)
		}
		priority := 0.6*readiness + 0.3*(1-s.Mastery) + 0.1*influence

		out = append(out, Candidate{
			ConceptID:             s.ConceptID,
			CurrentMastery:        s.Mastery,
			DecayedMastery:        d,
			PrerequisiteReadiness: readiness,
			Priority:              priority,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
