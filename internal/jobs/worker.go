package jobs

import (
	"context"
	"time"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/utils"
)

// Worker drains the pending queue on a fixed interval. Multiple workers can
// run against the same database; claiming skips locked rows.
type Worker struct {
	log       *logger.Logger
	svc       Service
	interval  time.Duration
	batchSize int
}

func NewWorker(baseLog *logger.Logger, svc Service) *Worker {
	log := baseLog.With("component", "JobWorker")
	intervalSec := utils.GetEnvAsInt("JOB_WORKER_INTERVAL_SECONDS", 5, log)
	batch := utils.GetEnvAsInt("JOB_WORKER_BATCH_SIZE", DefaultBatchSize, log)
	return &Worker{
		log:       log,
		svc:       svc,
		interval:  time.Duration(intervalSec) * time.Second,
		batchSize: batch,
	}
}

// Start blocks until ctx is canceled. Run it on its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Job worker started", "interval", w.interval.String(), "batch_size", w.batchSize)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Job worker stopping")
			return
		case <-ticker.C:
			n, err := w.svc.ProcessPending(ctx, w.batchSize)
			if err != nil {
				w.log.Error("Processing pending jobs failed", "error", err)
				continue
			}
			if n > 0 {
				w.log.Info("Processed job batch", "claimed", n)
			}
		}
	}
}
