package service

import (
	"context"
	"testing"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/session"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	logger := slogx.New(slogx.Config{Level: "error", Format: "text"})

	attempts := session.NewAttemptStore(time.Nanosecond)
	attempts.Get("stale-session").FailedAttempts = 2

	// One event far past retention, one fresh.
	audit := &AuditService{Store: st}
	audit.Now = func() time.Time { return time.Now().Add(-200 * 24 * time.Hour) }
	require.NoError(t, audit.Append(ctx, domain.EventLogin, "", "old@test.com", "127.0.0.1"))
	audit.Now = nil
	require.NoError(t, audit.Append(ctx, domain.EventLogin, "", "new@test.com", "127.0.0.1"))

	svc := NewHousekeepingService(st, attempts, logger, time.Hour, 90*24*time.Hour)

	// The first sweep runs immediately on start.
	svc.Start()
	svc.Stop()

	events, err := st.AuditEvents().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1, "only the event within retention survives")
	require.Equal(t, "new@test.com", events[0].Username)

	require.Zero(t, attempts.PruneExpired(time.Now()),
		"the idle session was already dropped by the sweep")
}

func TestHousekeepingDefaults(t *testing.T) {
	st := newTestStore(t)
	logger := slogx.New(slogx.Config{Level: "error", Format: "text"})

	svc := NewHousekeepingService(st, session.NewAttemptStore(0), logger, 0, 0)
	require.Equal(t, time.Hour, svc.Interval)
	require.Equal(t, 90*24*time.Hour, svc.Retention)
}
