package services

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/learning/sm2"
	"github.com/yungbote/mentorloop-backend/internal/learning/zpd"
	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/repos"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

// Mastery history entries are capped; older provenance is dropped at write time.
const masteryHistoryCap = 50

// ZPDItem is one learnable concept with display fields resolved.
type ZPDItem struct {
	ConceptID             uuid.UUID `json:"concept_id"`
	Name                  string    `json:"name"`
	Subject               string    `json:"subject"`
	CurrentMastery        float64   `json:"current_mastery"`
	PrerequisiteReadiness float64   `json:"prerequisite_readiness"`
	Priority              float64   `json:"priority"`
}

// ReviewOutcome is the result of recording one recall-quality score.
type ReviewOutcome struct {
	NextReviewAt time.Time `json:"next_review_at"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	Repetitions  int       `json:"repetitions"`
	MasteryDelta float64   `json:"mastery_delta"`
	NewMastery   float64   `json:"new_mastery"`
}

type MasteryService interface {
	// UpdateMastery applies a delta (clamped into [0,1]) and appends a
	// history entry. Concurrent updates to the same (user, concept) pair
	// are serialized; neither delta is lost.
	UpdateMastery(ctx context.Context, userID, conceptID uuid.UUID, delta float64, source, detail string) (float64, error)
	// ScheduleConceptReview creates the initial review schedule. Calling it
	// again before any review is recorded is a no-op.
	ScheduleConceptReview(ctx context.Context, userID, conceptID uuid.UUID) error
	RecordReview(ctx context.Context, userID, conceptID uuid.UUID, quality float64) (*ReviewOutcome, error)
	GetDueReviews(ctx context.Context, userID uuid.UUID, limit int, subject string) ([]*types.ReviewSchedule, error)
	SelectZPD(ctx context.Context, userID uuid.UUID, limit int, subject string) ([]ZPDItem, error)
}

const masteryLockShards = 64

type masteryService struct {
	db          *gorm.DB
	log         *logger.Logger
	conceptRepo repos.ConceptRepo
	masteryRepo repos.UserConceptMasteryRepo
	reviewRepo  repos.ReviewScheduleRepo

	// Sharded (user, concept) write locks so read-modify-write is
	// serialized per key with a fixed memory footprint.
	locks [masteryLockShards]sync.Mutex
}

func NewMasteryService(db *gorm.DB, baseLog *logger.Logger, conceptRepo repos.ConceptRepo, masteryRepo repos.UserConceptMasteryRepo, reviewRepo repos.ReviewScheduleRepo) MasteryService {
	return &masteryService{
		db:          db,
		log:         baseLog.With("service", "MasteryService"),
		conceptRepo: conceptRepo,
		masteryRepo: masteryRepo,
		reviewRepo:  reviewRepo,
	}
}

func (s *masteryService) keyLock(userID, conceptID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write(userID[:])
	_, _ = h.Write(conceptID[:])
	return &s.locks[h.Sum32()%masteryLockShards]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (s *masteryService) UpdateMastery(ctx context.Context, userID, conceptID uuid.UUID, delta float64, source, detail string) (float64, error) {
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return 0, fmt.Errorf("userID and conceptID required")
	}

	l := s.keyLock(userID, conceptID)
	l.Lock()
	defer l.Unlock()

	row, err := s.masteryRepo.Get(ctx, nil, userID, conceptID)
	if err != nil {
		return 0, fmt.Errorf("load mastery: %w", err)
	}

	prev := 0.0
	var history []types.MasteryHistoryEntry
	if row != nil {
		prev = row.Mastery
		if len(row.History) > 0 {
			if uErr := json.Unmarshal(row.History, &history); uErr != nil {
				s.log.Warn("Discarding unreadable mastery history", "user_id", userID, "concept_id", conceptID, "error", uErr)
				history = nil
			}
		}
	}

	now := time.Now().UTC()
	next := clamp01(prev + delta)
	history = append(history, types.MasteryHistoryEntry{
		Timestamp:     now,
		PreviousLevel: prev,
		NewLevel:      next,
		Delta:         delta,
		Source:        source,
		Detail:        detail,
	})
	if len(history) > masteryHistoryCap {
		history = history[len(history)-masteryHistoryCap:]
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return 0, fmt.Errorf("encode mastery history: %w", err)
	}

	if err := s.masteryRepo.Upsert(ctx, nil, userID, conceptID, next, &now, datatypes.JSON(raw)); err != nil {
		return 0, fmt.Errorf("upsert mastery: %w", err)
	}
	return next, nil
}

func (s *masteryService) ScheduleConceptReview(ctx context.Context, userID, conceptID uuid.UUID) error {
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return fmt.Errorf("userID and conceptID required")
	}
	now := time.Now().UTC()
	return s.reviewRepo.Ensure(ctx, nil, &types.ReviewSchedule{
		UserID:       userID,
		ConceptID:    conceptID,
		NextReviewAt: now.Add(24 * time.Hour),
		IntervalDays: 1,
		EaseFactor:   2.5,
		Repetitions:  0,
	})
}

func (s *masteryService) RecordReview(ctx context.Context, userID, conceptID uuid.UUID, quality float64) (*ReviewOutcome, error) {
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil, fmt.Errorf("userID and conceptID required")
	}

	schedule, err := s.reviewRepo.Get(ctx, nil, userID, conceptID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if schedule == nil {
		if err := s.ScheduleConceptReview(ctx, userID, conceptID); err != nil {
			return nil, fmt.Errorf("create schedule: %w", err)
		}
		schedule, err = s.reviewRepo.Get(ctx, nil, userID, conceptID)
		if err != nil || schedule == nil {
			return nil, fmt.Errorf("reload schedule: %w", err)
		}
	}

	next := sm2.Schedule(quality, schedule.IntervalDays, schedule.EaseFactor, schedule.Repetitions)
	now := time.Now().UTC()
	schedule.IntervalDays = next.IntervalDays
	schedule.EaseFactor = next.EaseFactor
	schedule.Repetitions = next.Repetitions
	schedule.LastQuality = sm2.ClampQuality(quality)
	schedule.LastReviewedAt = &now
	schedule.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	if err := s.reviewRepo.Update(ctx, nil, schedule); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}

	delta := sm2.QualityToMasteryDelta(quality)
	newMastery, err := s.UpdateMastery(ctx, userID, conceptID, delta, "review", fmt.Sprintf("quality=%d", schedule.LastQuality))
	if err != nil {
		return nil, err
	}

	return &ReviewOutcome{
		NextReviewAt: schedule.NextReviewAt,
		IntervalDays: schedule.IntervalDays,
		EaseFactor:   schedule.EaseFactor,
		Repetitions:  schedule.Repetitions,
		MasteryDelta: delta,
		NewMastery:   newMastery,
	}, nil
}

func (s *masteryService) GetDueReviews(ctx context.Context, userID uuid.UUID, limit int, subject string) ([]*types.ReviewSchedule, error) {
	return s.reviewRepo.ListDue(ctx, nil, userID, time.Now().UTC(), limit, subject)
}

func (s *masteryService) SelectZPD(ctx context.Context, userID uuid.UUID, limit int, subject string) ([]ZPDItem, error) {
	concepts, err := s.conceptRepo.ListAll(ctx, nil, "")
	if err != nil {
		return nil, fmt.Errorf("load concepts: %w", err)
	}
	edges, err := s.conceptRepo.ListEdges(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	masteries, err := s.masteryRepo.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load mastery: %w", err)
	}

	byConcept := make(map[uuid.UUID]*types.UserConceptMastery, len(masteries))
	for _, m := range masteries {
		byConcept[m.ConceptID] = m
	}
	dependents := map[uuid.UUID]int{}
	for _, e := range edges {
		dependents[e.PrerequisiteID]++
	}

	snapshots := make([]zpd.ConceptSnapshot, 0, len(concepts))
	names := make(map[uuid.UUID]*types.Concept, len(concepts))
	for _, c := range concepts {
		names[c.ID] = c
		snap := zpd.ConceptSnapshot{
			ConceptID:      c.ID,
			Subject:        c.Subject,
			DependentCount: dependents[c.ID],
		}
		for _, p := range c.Prerequisites {
			snap.PrerequisiteIDs = append(snap.PrerequisiteIDs, p.ID)
		}
		if m := byConcept[c.ID]; m != nil {
			snap.Mastery = m.Mastery
			snap.LastPracticedAt = m.LastPracticedAt
		}
		snapshots = append(snapshots, snap)
	}

	// Subject filtering happens after selection so prerequisite decay from
	// other subjects still counts toward readiness.
	candidates := zpd.Select(snapshots, time.Now().UTC(), 0)
	out := make([]ZPDItem, 0, len(candidates))
	for _, cand := range candidates {
		c := names[cand.ConceptID]
		if c == nil {
			continue
		}
		if subject != "" && c.Subject != subject {
			continue
		}
		out = append(out, ZPDItem{
			ConceptID:             cand.ConceptID,
			Name:                  c.Name,
			Subject:               c.Subject,
			CurrentMastery:        cand.CurrentMastery,
			PrerequisiteReadiness: cand.PrerequisiteReadiness,
			Priority:              cand.Priority,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
