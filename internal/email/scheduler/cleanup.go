package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tempmail-backend/internal/email/repository"

	log "github.com/sirupsen/logrus"
)

// ReadStateCleanupScheduler periodically prunes read-state rows that have not
// been touched within the retention window
type ReadStateCleanupScheduler struct {
	readStateRepo repository.ReadStateRepository
	retention     time.Duration
	interval      time.Duration
	now           func() time.Time
	stopChan      chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
	done          chan struct{}
}

// NewReadStateCleanupScheduler creates a new scheduler
func NewReadStateCleanupScheduler(
	readStateRepo repository.ReadStateRepository,
	retention time.Duration,
	interval time.Duration,
) *ReadStateCleanupScheduler {
	return &ReadStateCleanupScheduler{
		readStateRepo: readStateRepo,
		retention:     retention,
		interval:      interval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the scheduler loop. A zero retention or interval disables it.
func (s *ReadStateCleanupScheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	if s.retention <= 0 || s.interval <= 0 {
		log.Info("[Cleanup] Read-state cleanup disabled")
		close(s.done)
		return
	}

	log.WithFields(log.Fields{
		"interval":  s.interval.String(),
		"retention": s.retention.String(),
	}).Info("[Cleanup] Starting read-state cleanup scheduler")

	go func() {
		defer close(s.done)

		s.RunOnce(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce(context.Background())
			case <-s.stopChan:
				log.Info("[Cleanup] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight pass to finish
func (s *ReadStateCleanupScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	if s.started.Load() {
		<-s.done
	}
}

// RunOnce deletes rows older than now minus the retention window and returns
// how many were removed
func (s *ReadStateCleanupScheduler) RunOnce(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.retention)

	removed, err := s.readStateRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("[Cleanup] Failed to prune read state")
		return 0
	}
	if removed > 0 {
		log.WithField("removed", removed).Info("[Cleanup] Pruned read state")
	}
	return removed
}
