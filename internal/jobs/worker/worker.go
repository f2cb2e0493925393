package worker

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/jobs/runtime"
	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/services"
	"github.com/indecor/dreamspace-backend/internal/types"
	"github.com/indecor/dreamspace-backend/internal/utils"
)

type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	notify   services.JobNotifier
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, notify services.JobNotifier) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
	}
}

func (w *Worker) Start(ctx context.Context) {
	concurrency := utils.GetEnvAsInt("WORKER_CONCURRENCY", 4, w.log)
	if concurrency < 1 {
		concurrency = 1
	}
	pollMS := utils.GetEnvAsInt("WORKER_POLL_MS", 1000, w.log)
	if pollMS < 100 {
		pollMS = 100
	}
	w.log.Info("Starting job worker pool", "concurrency", concurrency, "poll_ms", pollMS)

	for i := 0; i < concurrency; i++ {
		workerID := i + 1
		go w.runLoop(ctx, workerID, time.Duration(pollMS)*time.Millisecond)
	}
}

func (w *Worker) runLoop(ctx context.Context, workerID int, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	policy := repos.RunnablePolicy{StaleRunning: 30 * time.Minute}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			job, err := w.repo.ClaimNextRunnable(ctx, w.db, policy)
			if err != nil {
				w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
				continue
			}
			if job == nil {
				continue
			}
			w.dispatch(ctx, workerID, job)
		}
	}
}

// RunOnce claims and dispatches at most one job. Used by tests and by
// operators draining a queue without starting the pool.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.repo.ClaimNextRunnable(ctx, w.db, repos.RunnablePolicy{StaleRunning: 30 * time.Minute})
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	w.dispatch(ctx, 0, job)
	return true, nil
}

func (w *Worker) dispatch(ctx context.Context, workerID int, job *types.JobRun) {
	h, ok := w.registry.Get(job.JobType)
	jc := runtime.NewContext(ctx, w.db, job, w.repo, w.notify)

	if !ok {
		w.log.Warn("No handler registered for job_type",
			"worker_id", workerID,
			"job_type", job.JobType,
			"job_id", job.ID,
		)
		jc.Fail("dispatch", &missingHandlerError{JobType: job.JobType})
		return
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				w.log.Error("Job handler panic",
					"worker_id", workerID,
					"job_id", job.ID,
					"job_type", job.JobType,
					"panic", r,
				)
				jc.Fail("panic", fmt.Errorf("panic: %v", r))
			}
		}()

		if runErr := h.Run(jc); runErr != nil {
			// Most handlers call jc.Fail themselves; this is a safety net.
			jc.Fail("run", runErr)
		}
	}()
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string {
	return "no handler registered for job_type=" + e.JobType
}
