package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/session"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store"
)

// HousekeepingService periodically prunes idle login sessions and audit
// events past the retention window, keeping both stores from growing without
// bound.
type HousekeepingService struct {
	Store     store.Store
	Sessions  *session.AttemptStore
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration // audit event retention

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the service. Interval defaults to 1 hour,
// retention to 90 days.
func NewHousekeepingService(
	st store.Store,
	sessions *session.AttemptStore,
	logger *slog.Logger,
	interval, retention time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:     st,
		Sessions:  sessions,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		"interval", s.Interval, "retention", s.Retention)
}

// Stop shuts the worker down, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep runs one cleanup pass. The two prunes are independent; a failure in
// one doesn't stop the other.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	now := time.Now()

	dropped := s.Sessions.PruneExpired(now)
	if dropped > 0 {
		s.Logger.Debug("pruned idle login sessions", "count", dropped)
	}

	cutoff := now.Add(-s.Retention)
	if err := s.Store.AuditEvents().DeleteOlderThan(ctx, cutoff); err != nil {
		s.Logger.Error("failed to prune audit events", "error", err)
	}
}
