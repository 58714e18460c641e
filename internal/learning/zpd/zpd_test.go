package zpd

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDecayedMastery(t *testing.T) {
	now := time.Now().UTC()

	if got := DecayedMastery(0.8, nil, now); got != 0.8 {
		t.Fatalf("never practiced should not decay: %v", got)
	}

	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)
	got := DecayedMastery(0.8, &thirtyDaysAgo, now)
	if math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("30 days = one half life: got %v, want 0.4", got)
	}

	justNow := now
	if got := DecayedMastery(0.8, &justNow, now); got != 0.8 {
		t.Fatalf("zero elapsed time should not decay: %v", got)
	}
}

func TestSelectExcludesMastered(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	got := Select([]ConceptSnapshot{
		{ConceptID: id, Mastery: 0.9, LastPracticedAt: &now},
	}, now, 0)
	if len(got) != 0 {
		t.Fatalf("mastered concept selected: %+v", got)
	}
}

func TestSelectExcludesUnreadyPrerequisites(t *testing.T) {
	now := time.Now().UTC()
	prereq := uuid.New()
	target := uuid.New()
	got := Select([]ConceptSnapshot{
		{ConceptID: prereq, Mastery: 0.2, LastPracticedAt: &now},
		{ConceptID: target, Mastery: 0, PrerequisiteIDs: []uuid.UUID{prereq}},
	}, now, 0)
	for _, c := range got {
		if c.ConceptID == target {
			t.Fatalf("unready concept selected: %+v", c)
		}
	}
}

func TestSelectNoPrerequisitesReadinessIsOne(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	got := Select([]ConceptSnapshot{
		{ConceptID: id, Mastery: 0.1, LastPracticedAt: &now},
	}, now, 0)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}
	if got[0].PrerequisiteReadiness != 1.0 {
		t.Fatalf("readiness = %v, want exactly 1.0", got[0].PrerequisiteReadiness)
	}
}

func TestSelectPriorityOrderingAndLimit(t *testing.T) {
	now := time.Now().UTC()
	practiced := now.Add(-24 * time.Hour)
	prereq := uuid.New()
	easy := uuid.New()   // low mastery, no prereqs
	harder := uuid.New() // higher mastery, no prereqs
	gated := uuid.New()  // prereq well mastered

	snaps := []ConceptSnapshot{
		{ConceptID: prereq, Mastery: 0.95, LastPracticedAt: &now},
		{ConceptID: easy, Mastery: 0.0, LastPracticedAt: &practiced, DependentCount: 2},
		{ConceptID: harder, Mastery: 0.5, LastPracticedAt: &practiced},
		{ConceptID: gated, Mastery: 0.1, PrerequisiteIDs: []uuid.UUID{prereq}, DependentCount: 1},
	}

	got := Select(snaps, now, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Priority > got[i-1].Priority {
			t.Fatalf("candidates not sorted by priority descending: %+v", got)
		}
	}
	if got[0].ConceptID != easy {
		t.Fatalf("expected the high-influence low-mastery concept first, got %v", got[0].ConceptID)
	}

	limited := Select(snaps, now, 1)
	if len(limited) != 1 || limited[0].ConceptID != got[0].ConceptID {
		t.Fatalf("limit did not truncate stably: %+v", limited)
	}
}

func TestSelectStableTieBreak(t *testing.T) {
	now := time.Now().UTC()
	a := uuid.New()
	b := uuid.New()
	snaps := []ConceptSnapshot{
		{ConceptID: a, Mastery: 0.2},
		{ConceptID: b, Mastery: 0.2},
	}
	got := Select(snaps, now, 0)
	if len(got) != 2 || got[0].ConceptID != a || got[1].ConceptID != b {
		t.Fatalf("equal priorities must keep input order: %+v", got)
	}
}

func TestSelectPriorityWeights(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	got := Select([]ConceptSnapshot{
		{ConceptID: id, Mastery: 0.4, DependentCount: 0},
	}, now, 0)
	if len(got) != 1 {
		t.Fatalf("expected one candidate")
	}
	want := 0.6*1.0 + 0.3*(1-0.4) + 0.1*0
	if math.Abs(got[0].Priority-want) > 1e-9 {
		t.Fatalf("priority = %v, want %v", got[0].Priority, want)
	}
}
