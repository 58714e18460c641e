package repos

import (
	"context"
	"testing"

	"github.com/yungbote/mentorloop-backend/internal/repos/testutil"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

func TestPipelineJobRepoLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewPipelineJobRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "pipelinejob@example.com")

	job, err := repo.Create(ctx, tx, &types.PipelineJob{
		UserID: u.ID,
		Prompt: "I baked sourdough bread today",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Status != types.JobStatusPending {
		t.Fatalf("new job status = %q, want pending", job.Status)
	}

	claimed, err := repo.ClaimPending(ctx, tx, 5)
	if err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID != job.ID {
		t.Fatalf("ClaimPending = %d jobs", len(claimed))
	}
	if claimed[0].Status != types.JobStatusProcessing || claimed[0].StartedAt == nil {
		t.Fatalf("claimed job not processing: %+v", claimed[0])
	}

	if err := repo.MarkCompleted(ctx, tx, job.ID, "LIFE_LOG", "Nice work!", nil); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.JobStatusCompleted || got.CompletedAt == nil {
		t.Fatalf("job not completed: %+v", got)
	}

	// Terminal rows stay terminal.
	if err := repo.MarkFailed(ctx, tx, job.ID, "late failure"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, _ = repo.GetByID(ctx, tx, job.ID)
	if got.Status != types.JobStatusCompleted {
		t.Fatalf("terminal status was rewritten to %q", got.Status)
	}

	// Nothing left to claim.
	claimed, err = repo.ClaimPending(ctx, tx, 5)
	if err != nil {
		t.Fatalf("second ClaimPending: %v", err)
	}
	if len(claimed) != 0 {
		t.Fatalf("claimed terminal job again: %d", len(claimed))
	}
}
