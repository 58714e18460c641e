// Package jobs is the asynchronous execution surface for long-running
// pipeline runs: submit returns immediately with a PENDING job, a separate
// trigger drains the queue in bounded concurrent batches, and pollers read
// terminal status. There is no mid-flight cancellation and no automatic
// retry; resubmission is the caller's retry.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/pipeline"
	"github.com/yungbote/mentorloop-backend/internal/repos"
	"github.com/yungbote/mentorloop-backend/internal/services"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

const DefaultBatchSize = 5

// Degraded response when a run produced no usable text at all.
const degradedResponse = "I'm having trouble right now, but I'm still here — try asking me again in a moment."

// jobMetadata is the structured payload persisted with a completed job.
type jobMetadata struct {
	Stages []types.StageResult `json:"stages"`
	UI     *types.UIPayload    `json:"ui,omitempty"`
	Nudge  string              `json:"nudge,omitempty"`
	Cached bool                `json:"cached,omitempty"`
}

type Service interface {
	// Submit enqueues a run and returns the PENDING job immediately.
	Submit(ctx context.Context, userID uuid.UUID, prompt string) (*types.PipelineJob, error)
	Get(ctx context.Context, id uuid.UUID) (*types.PipelineJob, error)
	// ProcessPending claims up to batchSize pending jobs and runs them
	// concurrently; one job's failure never touches its batchmates.
	// Returns the number of jobs claimed.
	ProcessPending(ctx context.Context, batchSize int) (int, error)
}

type service struct {
	db       *gorm.DB
	log      *logger.Logger
	executor *pipeline.Executor
	jobRepo  repos.PipelineJobRepo
	userRepo repos.UserRepo
	cache    services.SemanticCache
	notify   Notifier
}

func NewService(db *gorm.DB, baseLog *logger.Logger, executor *pipeline.Executor, jobRepo repos.PipelineJobRepo, userRepo repos.UserRepo, cache services.SemanticCache, notify Notifier) Service {
	return &service{
		db:       db,
		log:      baseLog.With("service", "JobService"),
		executor: executor,
		jobRepo:  jobRepo,
		userRepo: userRepo,
		cache:    cache,
		notify:   notify,
	}
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, prompt string) (*types.PipelineJob, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("userID required")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt required")
	}
	return s.jobRepo.Create(ctx, nil, &types.PipelineJob{
		UserID: userID,
		Prompt: prompt,
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*types.PipelineJob, error) {
	return s.jobRepo.GetByID(ctx, nil, id)
}

func (s *service) ProcessPending(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	claimed, err := s.jobRepo.ClaimPending(ctx, nil, batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim pending jobs: %w", err)
	}
	if len(claimed) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range claimed {
		job := job
		g.Go(func() error {
			s.runOne(gctx, job)
			// Failures are recorded on the job row, never propagated
			// into the group: batchmates keep running.
			return nil
		})
	}
	_ = g.Wait()
	return len(claimed), nil
}

func (s *service) runOne(ctx context.Context, job *types.PipelineJob) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Job run panicked", "job_id", job.ID, "panic", r)
			s.fail(ctx, job, fmt.Sprintf("panic: %v", r))
		}
	}()

	if s.cache != nil {
		if answer, hit, _ := s.cache.Lookup(ctx, job.UserID, job.Prompt); hit {
			meta, _ := json.Marshal(jobMetadata{Cached: true})
			if err := s.jobRepo.MarkCompleted(ctx, nil, job.ID, string(types.IntentChat), answer, datatypes.JSON(meta)); err != nil {
				s.fail(ctx, job, fmt.Sprintf("persist cached result: %v", err))
				return
			}
			job.Status = types.JobStatusCompleted
			job.Result = answer
			if s.notify != nil {
				s.notify.JobCompleted(ctx, job)
			}
			return
		}
	}

	st := types.PipelineState{
		UserID: job.UserID,
		Prompt: job.Prompt,
	}
	user, err := s.userRepo.GetByID(ctx, nil, job.UserID)
	if err != nil || user == nil {
		s.fail(ctx, job, fmt.Sprintf("load user %s: %v", job.UserID, err))
		return
	}
	st.GradeBand = user.GradeBand
	if len(user.Interests) > 0 {
		_ = json.Unmarshal(user.Interests, &st.Interests)
	}

	final := s.executor.Run(ctx, st)

	result := strings.TrimSpace(final.ResponseText)
	degraded := result == ""
	if degraded {
		result = degradedResponse
	}

	meta, err := json.Marshal(jobMetadata{
		Stages: final.Stages,
		UI:     final.UI,
		Nudge:  final.GapNudge,
	})
	if err != nil {
		s.fail(ctx, job, fmt.Sprintf("encode metadata: %v", err))
		return
	}

	if err := s.jobRepo.MarkCompleted(ctx, nil, job.ID, string(final.Intent), result, datatypes.JSON(meta)); err != nil {
		s.fail(ctx, job, fmt.Sprintf("persist result: %v", err))
		return
	}

	if s.cache != nil && !degraded {
		_ = s.cache.Store(ctx, job.UserID, job.Prompt, result)
	}

	job.Status = types.JobStatusCompleted
	job.Intent = string(final.Intent)
	job.Result = result
	if s.notify != nil {
		s.notify.JobCompleted(ctx, job)
	}
}

func (s *service) fail(ctx context.Context, job *types.PipelineJob, msg string) {
	if err := s.jobRepo.MarkFailed(ctx, nil, job.ID, msg); err != nil {
		s.log.Error("Failed to mark job failed", "job_id", job.ID, "error", err)
	}
	job.Status = types.JobStatusFailed
	job.Error = msg
	if s.notify != nil {
		s.notify.JobFailed(ctx, job)
	}
}
