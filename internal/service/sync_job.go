package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/health-companion/internal/logger"
)

// SyncJob periodically reconciles both collections with the remote store: a
// pull per collection followed by a push of everything pending. The job is
// idle until Start is called.
type SyncJob struct {
	health *HealthStore
	log    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSyncJob(health *HealthStore, log *logger.Logger) *SyncJob {
	return &SyncJob{health: health, log: log}
}

// Start stops any previously running job, then launches a background
// goroutine that reconciles ownerID's data every interval. If interval is
// zero or negative it defaults to 5 minutes. The goroutine exits when ctx is
// cancelled or Stop is called.
func (j *SyncJob) Start(ctx context.Context, ownerID string, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.runOnce(jobCtx, ownerID)
			}
		}
	}()
}

// Stop cancels the background goroutine's context and blocks until the
// goroutine has fully exited. Safe to call when the job is not running
// (no-op in that case).
func (j *SyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// runOnce performs a single reconciliation round. Every round gets a run id
// so its pulls and pushes can be correlated in the logs. An offline round is
// skipped silently; failures inside a round are already logged where they
// happen.
func (j *SyncJob) runOnce(ctx context.Context, ownerID string) {
	runID := uuid.NewString()
	log := j.log.With().Str("sync_run", runID).Logger()

	_ = j.health.Prescriptions.Pull(ctx, ownerID)
	_ = j.health.Reminders.Pull(ctx, ownerID)

	out, err := j.health.ForceSyncAll(ctx, ownerID)
	if err != nil {
		log.Debug().Str("func", "SyncJob.runOnce").Msg("skipping sync round, device is offline")
		return
	}

	log.Debug().Str("func", "SyncJob.runOnce").
		Int("pushed", out.Prescriptions.Success+out.Reminders.Success).
		Int("failed", out.Prescriptions.Failed+out.Reminders.Failed).
		Msg("sync round completed")
}
