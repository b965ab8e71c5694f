package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/service"
)

const defaultJobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	status  service.StatusService
	now     func() time.Time
	timeout time.Duration

	mu         sync.Mutex
	lastReport *domain.TransitionReport
	lastRunAt  time.Time
}

func NewJobRunner(status service.StatusService) *JobRunner {
	return &JobRunner{
		status:  status,
		now:     time.Now,
		timeout: defaultJobTimeout,
	}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	if err := jobFunc(); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
	return nil
}

// RunStatusTransitions is the cron entry for the rental status sweep.
func (jr *JobRunner) RunStatusTransitions() {
	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()
	_, _ = jr.RunStatusTransitionsNow(ctx)
}

// RunStatusTransitionsNow runs one sweep against the current time and records
// its report. It is also used by --run-once and the admin endpoint.
func (jr *JobRunner) RunStatusTransitionsNow(ctx context.Context) (*domain.TransitionReport, error) {
	var report *domain.TransitionReport
	err := jr.runWithRecovery("StatusTransitions", func() error {
		now := jr.now()
		r, err := jr.status.RunTransitions(ctx, now)
		if err != nil {
			return err
		}
		report = r

		jr.mu.Lock()
		jr.lastReport = r
		jr.lastRunAt = now
		jr.mu.Unlock()
		return nil
	})
	return report, err
}

// LastStatusRun returns the most recent successful sweep, if any.
func (jr *JobRunner) LastStatusRun() (*domain.TransitionReport, time.Time) {
	jr.mu.Lock()
	defer jr.mu.Unlock()
	return jr.lastReport, jr.lastRunAt
}
