package jobs

import (
	"context"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

// Notifier is told when a job reaches a terminal status. Deployments can
// plug in push channels; the default just logs.
type Notifier interface {
	JobCompleted(ctx context.Context, job *types.PipelineJob)
	JobFailed(ctx context.Context, job *types.PipelineJob)
}

type logNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(baseLog *logger.Logger) Notifier {
	return &logNotifier{log: baseLog.With("component", "JobNotifier")}
}

func (n *logNotifier) JobCompleted(_ context.Context, job *types.PipelineJob) {
	n.log.Info("Job completed", "job_id", job.ID, "user_id", job.UserID, "intent", job.Intent)
}

func (n *logNotifier) JobFailed(_ context.Context, job *types.PipelineJob) {
	n.log.Warn("Job failed", "job_id", job.ID, "user_id", job.UserID, "error", job.Error)
}
