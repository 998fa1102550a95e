package service

import (
	"context"
	"strings"
	"testing"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store"
	"github.com/lockdownlabs/gatehouse/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func validRegistration() Registration {
	return Registration{
		Username:        "alice@test.com",
		Password:        "GoodPass1",
		ConfirmPassword: "GoodPass1",
		PINKey:          strings.Repeat("A", 32),
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	svc := &RegisterService{Store: st, Audit: &AuditService{Store: st}}

	user, err := svc.Register(ctx, validRegistration(), "203.0.113.9")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, user.Role, "role always defaults to user")

	t.Run("round-trips through the store", func(t *testing.T) {
		stored, err := st.Users().GetUserByUsername(ctx, "alice@test.com")
		require.NoError(t, err)
		require.Equal(t, user.ID, stored.ID)
		require.Equal(t, domain.RoleUser, stored.Role)

		require.NoError(t, cryptox.VerifyPassword("GoodPass1", stored.PasswordHash))
		require.ErrorIs(t, cryptox.VerifyPassword("GoodPass2", stored.PasswordHash), cryptox.ErrPasswordMismatch)
	})

	t.Run("emits a registration audit event", func(t *testing.T) {
		events, err := st.AuditEvents().ListRecent(ctx, 5)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, domain.EventRegistration, events[0].Kind)
		require.Equal(t, "alice@test.com", events[0].Username)
		require.Equal(t, "203.0.113.9", events[0].RemoteAddr)
	})
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &RegisterService{Store: st, Audit: &AuditService{Store: st}}

	cases := []struct {
		name   string
		mutate func(*Registration)
		field  string
	}{
		{"username not email-shaped", func(r *Registration) { r.Username = "not-an-email" }, "username"},
		{"username with display name", func(r *Registration) { r.Username = "Alice <alice@test.com>" }, "username"},
		{"password too short", func(r *Registration) {
			r.Password = "short1A"
			r.ConfirmPassword = "short1A"
		}, "password"},
		{"password too long", func(r *Registration) {
			r.Password = "Toolongpassword1"
			r.ConfirmPassword = "Toolongpassword1"
		}, "password"},
		{"password lacks uppercase", func(r *Registration) {
			r.Password = "longenough1"
			r.ConfirmPassword = "longenough1"
		}, "password"},
		{"password lacks digit", func(r *Registration) {
			r.Password = "Longenough"
			r.ConfirmPassword = "Longenough"
		}, "password"},
		{"password has excluded char", func(r *Registration) {
			r.Password = "GoodPass1*"
			r.ConfirmPassword = "GoodPass1*"
		}, "password"},
		{"confirmation mismatch", func(r *Registration) { r.ConfirmPassword = "Different1" }, "confirm_password"},
		{"pinkey 31 chars", func(r *Registration) { r.PINKey = strings.Repeat("A", 31) }, "pinkey"},
		{"pinkey 33 chars", func(r *Registration) { r.PINKey = strings.Repeat("A", 33) }, "pinkey"},
		{"pinkey has excluded char", func(r *Registration) { r.PINKey = strings.Repeat("A", 31) + "?" }, "pinkey"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := validRegistration()
			tc.mutate(&reg)

			_, err := svc.Register(ctx, reg, "127.0.0.1")

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, tc.field, vErr.Field)
		})
	}

	t.Run("no record created on validation failure", func(t *testing.T) {
		empty, err := st.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)
	})
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &RegisterService{Store: st, Audit: &AuditService{Store: st}}

	_, err := svc.Register(ctx, validRegistration(), "127.0.0.1")
	require.NoError(t, err)

	second := validRegistration()
	second.Password = "OtherPass9"
	second.ConfirmPassword = "OtherPass9"
	_, err = svc.Register(ctx, second, "127.0.0.1")
	require.ErrorIs(t, err, ErrUsernameTaken)

	users, err := st.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1, "conflict creates no record")
}

// txCountingStore delegates to the real store while counting transactional
// scopes, so tests can pin writes to the transaction path.
type txCountingStore struct {
	store.Store
	txCalls int
}

func (s *txCountingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.txCalls++
	return s.Store.WithTx(ctx, fn)
}

func TestRegisterWritesTransactionally(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	rec := &txCountingStore{Store: st}
	svc := &RegisterService{Store: rec, Audit: &AuditService{Store: st}}

	_, err := svc.Register(ctx, validRegistration(), "127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, 1, rec.txCalls, "lookup and insert share one transaction")

	// The duplicate is caught inside the transaction and rolled back.
	_, err = svc.Register(ctx, validRegistration(), "127.0.0.1")
	require.ErrorIs(t, err, ErrUsernameTaken)
	require.Equal(t, 2, rec.txCalls)

	users, err := st.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestRegisterUsernameIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &RegisterService{Store: st, Audit: &AuditService{Store: st}}

	_, err := svc.Register(ctx, validRegistration(), "127.0.0.1")
	require.NoError(t, err)

	upper := validRegistration()
	upper.Username = "Alice@test.com"
	_, err = svc.Register(ctx, upper, "127.0.0.1")
	require.NoError(t, err, "differently-cased usernames are distinct login keys")
}
