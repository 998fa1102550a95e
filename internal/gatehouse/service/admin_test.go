package service

import (
	"context"
	"testing"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store/drivers/sqlite"
	"github.com/lockdownlabs/gatehouse/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newAdminService(st *sqlite.Store) *AdminService {
	return &AdminService{
		Store:        st,
		ResetToken:   "reset-me",
		SeedUsername: "user1@test.com",
		SeedPassword: "mysecretpassword",
		Issuer:       "gatehouse",
	}
}

func TestResetStoreSeedsSingleAdmin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "existing@test.com", "GoodPass1", domain.RoleUser)

	svc := newAdminService(st)

	seeded, err := svc.ResetStore(ctx, "reset-me")
	require.NoError(t, err)
	require.Equal(t, "user1@test.com", seeded.User.Username)
	require.Equal(t, domain.RoleAdmin, seeded.User.Role)
	require.NotEmpty(t, seeded.TOTPSecret)
	require.NoError(t, cryptox.VerifyPassword("mysecretpassword", seeded.User.PasswordHash))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1, "reset wipes everything but the seed account")
	require.Equal(t, seeded.User.ID, users[0].ID)
}

func TestResetStoreIsRepeatable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAdminService(st)

	first, err := svc.ResetStore(ctx, "reset-me")
	require.NoError(t, err)
	second, err := svc.ResetStore(ctx, "reset-me")
	require.NoError(t, err)

	require.NotEqual(t, first.TOTPSecret, second.TOTPSecret, "each reset provisions a fresh secret")

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestResetStoreRejectsWrongToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "existing@test.com", "GoodPass1", domain.RoleUser)

	svc := newAdminService(st)

	_, err := svc.ResetStore(ctx, "guess")
	require.ErrorIs(t, err, ErrResetUnauthorized)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1, "a rejected reset leaves the store untouched")
}

func TestResetStoreDisabledWithoutToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAdminService(st)
	svc.ResetToken = ""

	_, err := svc.ResetStore(ctx, "")
	require.ErrorIs(t, err, ErrResetDisabled)
	_, err = svc.ResetStore(ctx, "anything")
	require.ErrorIs(t, err, ErrResetDisabled)
}

func TestRecentEventsLimit(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAdminService(st)

	audit := &AuditService{Store: st}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		audit.Now = func() time.Time { return at }
		require.NoError(t, audit.Append(ctx, domain.EventLogin, "", "user@test.com", "127.0.0.1"))
	}

	events, err := svc.RecentEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, DefaultEventLimit, "zero limit falls back to the default tail length")
	require.Equal(t, base.Add(14*time.Minute), events[0].CreatedAt.UTC(), "newest first")

	events, err = svc.RecentEvents(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
}
