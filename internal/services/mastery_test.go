package services

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

// memMasteryRepo keeps rows in a plain map and does nothing to serialize
// read-modify-write cycles; that is the service's job.
type memMasteryRepo struct {
	mu   sync.Mutex
	rows map[string]*types.UserConceptMastery
}

func newMemMasteryRepo() *memMasteryRepo {
	return &memMasteryRepo{rows: map[string]*types.UserConceptMastery{}}
}

func masteryKey(userID, conceptID uuid.UUID) string {
	return userID.String() + "|" + conceptID.String()
}

func (r *memMasteryRepo) Get(_ context.Context, _ *gorm.DB, userID, conceptID uuid.UUID) (*types.UserConceptMastery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[masteryKey(userID, conceptID)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *memMasteryRepo) GetByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.UserConceptMastery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.UserConceptMastery
	for _, row := range r.rows {
		if row.UserID == userID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMasteryRepo) Upsert(_ context.Context, _ *gorm.DB, userID, conceptID uuid.UUID, mastery float64, lastPracticed *time.Time, history datatypes.JSON) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[masteryKey(userID, conceptID)] = &types.UserConceptMastery{
		UserID:          userID,
		ConceptID:       conceptID,
		Mastery:         mastery,
		LastPracticedAt: lastPracticed,
		History:         history,
	}
	return nil
}

func testMasteryService(t *testing.T) (MasteryService, *memMasteryRepo) {
	t.Helper()
	repo := newMemMasteryRepo()
	return NewMasteryService(nil, testLogger(t), nil, repo, nil), repo
}

func historyOf(t *testing.T, repo *memMasteryRepo, userID, conceptID uuid.UUID) []types.MasteryHistoryEntry {
	t.Helper()
	row, _ := repo.Get(context.Background(), nil, userID, conceptID)
	if row == nil {
		t.Fatalf("no mastery row persisted")
	}
	var history []types.MasteryHistoryEntry
	if err := json.Unmarshal(row.History, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	return history
}

func TestUpdateMasteryClamps(t *testing.T) {
	svc, _ := testMasteryService(t)
	userID, conceptID := uuid.New(), uuid.New()
	ctx := context.Background()

	var level float64
	var err error
	for i := 0; i < 4; i++ {
		level, err = svc.UpdateMastery(ctx, userID, conceptID, 0.4, "test", "up")
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if level != 1.0 {
		t.Fatalf("repeated positive deltas must converge to 1.0, got %v", level)
	}

	for i := 0; i < 5; i++ {
		level, err = svc.UpdateMastery(ctx, userID, conceptID, -0.3, "test", "down")
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if level != 0.0 {
		t.Fatalf("repeated negative deltas must converge to 0.0, got %v", level)
	}
}

func TestUpdateMasteryHistoryCapped(t *testing.T) {
	svc, repo := testMasteryService(t)
	userID, conceptID := uuid.New(), uuid.New()
	ctx := context.Background()

	for i := 0; i < masteryHistoryCap+10; i++ {
		if _, err := svc.UpdateMastery(ctx, userID, conceptID, 0.001, "test", "tick"); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	history := historyOf(t, repo, userID, conceptID)
	if len(history) != masteryHistoryCap {
		t.Fatalf("history len = %d, want %d", len(history), masteryHistoryCap)
	}
	last := history[len(history)-1]
	if last.Delta != 0.001 || last.Source != "test" {
		t.Fatalf("newest entry must survive the trim: %+v", last)
	}
}

func TestUpdateMasteryConcurrentUpdatesAreSerialized(t *testing.T) {
	svc, repo := testMasteryService(t)
	userID, conceptID := uuid.New(), uuid.New()
	ctx := context.Background()

	const workers = 40
	const delta = 0.01

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.UpdateMastery(ctx, userID, conceptID, delta, "test", "concurrent"); err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	row, _ := repo.Get(ctx, nil, userID, conceptID)
	if row == nil {
		t.Fatalf("no mastery row persisted")
	}
	if math.Abs(row.Mastery-workers*delta) > 1e-9 {
		t.Fatalf("mastery = %v, want %v (lost update)", row.Mastery, workers*delta)
	}
	if history := historyOf(t, repo, userID, conceptID); len(history) != workers {
		t.Fatalf("history len = %d, want %d (lost update)", len(history), workers)
	}
}
