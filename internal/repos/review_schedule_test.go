package repos

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/mentorloop-backend/internal/repos/testutil"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

func TestReviewScheduleRepoEnsureIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewReviewScheduleRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "reviewschedule@example.com")
	c := testutil.SeedConcept(t, ctx, tx, "Fractions", "Mathematics")

	first := &types.ReviewSchedule{
		UserID:       u.ID,
		ConceptID:    c.ID,
		NextReviewAt: time.Now().UTC().Add(24 * time.Hour),
		IntervalDays: 1,
		EaseFactor:   2.5,
	}
	if err := repo.Ensure(ctx, tx, first); err != nil {
		t.Fatalf("first Ensure: %v", err)
	}

	second := &types.ReviewSchedule{
		UserID:       u.ID,
		ConceptID:    c.ID,
		NextReviewAt: time.Now().UTC().Add(72 * time.Hour),
		IntervalDays: 6,
		EaseFactor:   1.3,
	}
	if err := repo.Ensure(ctx, tx, second); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}

	got, err := repo.Get(ctx, tx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected schedule row")
	}
	if got.IntervalDays != 1 || got.EaseFactor != 2.5 {
		t.Fatalf("second Ensure overwrote first schedule: interval=%d ease=%v", got.IntervalDays, got.EaseFactor)
	}
}

func TestReviewScheduleRepoListDue(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewReviewScheduleRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "listdue@example.com")
	due := testutil.SeedConcept(t, ctx, tx, "Decimals", "Mathematics")
	notDue := testutil.SeedConcept(t, ctx, tx, "Photosynthesis", "Science")

	now := time.Now().UTC()
	if err := repo.Ensure(ctx, tx, &types.ReviewSchedule{
		UserID: u.ID, ConceptID: due.ID, NextReviewAt: now.Add(-time.Hour), IntervalDays: 1, EaseFactor: 2.5,
	}); err != nil {
		t.Fatalf("Ensure due: %v", err)
	}
	if err := repo.Ensure(ctx, tx, &types.ReviewSchedule{
		UserID: u.ID, ConceptID: notDue.ID, NextReviewAt: now.Add(48 * time.Hour), IntervalDays: 1, EaseFactor: 2.5,
	}); err != nil {
		t.Fatalf("Ensure not due: %v", err)
	}

	rows, err := repo.ListDue(ctx, tx, u.ID, now, 10, "")
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(rows) != 1 || rows[0].ConceptID != due.ID {
		t.Fatalf("ListDue returned wrong rows: %d", len(rows))
	}

	rows, err = repo.ListDue(ctx, tx, u.ID, now, 10, "Science")
	if err != nil {
		t.Fatalf("ListDue with subject: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("subject filter leaked rows: %d", len(rows))
	}
}
