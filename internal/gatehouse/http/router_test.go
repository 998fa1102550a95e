package http

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/service"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/session"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store/drivers/sqlite"
	"github.com/lockdownlabs/gatehouse/pkg/cryptox"
	"github.com/lockdownlabs/gatehouse/pkg/gatesdk"
	"github.com/lockdownlabs/gatehouse/pkg/idx"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
	"github.com/lockdownlabs/gatehouse/pkg/totpx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "gatehouse-http-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

// newTestServer wires a full router over an in-memory store. Handlers run
// with a skew of one step so live-generated codes can't race a step
// boundary.
func newTestServer(t *testing.T, resetToken string) (*httptest.Server, *sqlite.Store) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slogx.New(slogx.Config{Level: "error", Format: "text"})

	sessions := &session.Manager{Secret: []byte("test-session-secret-0123456789ab")}
	attempts := session.NewAttemptStore(0)
	lockout := service.NewLockoutPolicy(service.LockoutAdvisory, service.DefaultAttemptLimit)

	audit := &service.AuditService{Store: st}

	router := NewRouter(st, sessions, attempts, "test", false, logger)
	router.AuditService = audit
	router.Lockout = lockout
	router.LoginService = &service.LoginService{
		Store:    st,
		Audit:    audit,
		Lockout:  lockout,
		TOTPSkew: 1,
	}
	router.RegisterService = &service.RegisterService{Store: st, Audit: audit}
	router.AdminService = &service.AdminService{
		Store:        st,
		ResetToken:   resetToken,
		SeedUsername: "user1@test.com",
		SeedPassword: "mysecretpassword",
		Issuer:       "gatehouse",
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, st
}

func newTestClient(t *testing.T, srv *httptest.Server) *gatesdk.Client {
	t.Helper()
	c, err := gatesdk.NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

// seedAccount creates a user directly in the store and returns its TOTP
// secret for generating live codes.
func seedAccount(t *testing.T, st *sqlite.Store, username, password string, role domain.Role) string {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	secret, err := totpx.GenerateSecret("gatehouse-test", username)
	require.NoError(t, err)

	require.NoError(t, st.Users().CreateUser(context.Background(), domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		TOTPSecret:   secret,
		Role:         role,
	}))
	return secret
}

func liveCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, time.Now(), totp.ValidateOpts{
		Period:    totpx.Period,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestLoginFlow(t *testing.T) {
	srv, st := newTestServer(t, "")
	client := newTestClient(t, srv)
	ctx := context.Background()

	secret := seedAccount(t, st, "alice@test.com", "GoodPass1", domain.RoleUser)

	login, err := client.Login(ctx, "alice@test.com", "GoodPass1", liveCode(t, secret))
	require.NoError(t, err)
	require.Equal(t, "alice@test.com", login.Username)
	require.Equal(t, "user", login.Role)
	require.Equal(t, "/", login.RedirectTo)

	sess, err := client.CurrentSession(ctx)
	require.NoError(t, err)
	require.Equal(t, login.UserID, sess.UserID)

	// Regular users are kept out of the admin surface.
	_, err = client.ListUsers(ctx)
	require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeForbidden))

	require.NoError(t, client.Logout(ctx))

	_, err = client.CurrentSession(ctx)
	require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeUnauthorized))
}

func TestLoginFailureMessages(t *testing.T) {
	srv, st := newTestServer(t, "")
	client := newTestClient(t, srv)
	ctx := context.Background()

	secret := seedAccount(t, st, "alice@test.com", "GoodPass1", domain.RoleUser)

	// A fresh browsing session has nothing to warn about.
	prompt, err := client.LoginPrompt(ctx)
	require.NoError(t, err)
	require.False(t, prompt.Exceeded)

	// Wrong password: generic message plus a remaining-attempt count.
	_, err = client.Login(ctx, "alice@test.com", "WrongPass1", liveCode(t, secret))
	require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeInvalidCredentials))
	require.Contains(t, err.Error(), "2 login attempts remaining")

	// Unknown username: byte-identical failure.
	_, err = client.Login(ctx, "nobody@test.com", "GoodPass1", liveCode(t, secret))
	require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeInvalidCredentials))
	require.Contains(t, err.Error(), "1 login attempt remaining")

	// Malformed PIN is rejected up front and never consumes an attempt.
	_, err = client.Login(ctx, "alice@test.com", "GoodPass1", "12345")
	require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeInvalidTOTP))
	apiErr := err.(*gatesdk.APIError)
	require.Equal(t, 400, apiErr.StatusCode)
	require.Equal(t, "You have supplied an invalid 2FA token!", apiErr.Description)

	// Third real failure crosses the limit.
	_, err = client.Login(ctx, "alice@test.com", "WrongPass1", liveCode(t, secret))
	require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeInvalidCredentials))
	require.Contains(t, err.Error(), "Number of incorrect logins exceeded")

	// The prompt now carries the banner for this browsing session.
	prompt, err = client.LoginPrompt(ctx)
	require.NoError(t, err)
	require.True(t, prompt.Exceeded)
	require.Equal(t, "Number of incorrect logins exceeded", prompt.Message)
}

func TestAdminSurface(t *testing.T) {
	srv, st := newTestServer(t, "wipe-it")
	client := newTestClient(t, srv)
	ctx := context.Background()

	adminSecret := seedAccount(t, st, "root@test.com", "AdminPass1", domain.RoleAdmin)
	seedAccount(t, st, "alice@test.com", "GoodPass1", domain.RoleUser)

	login, err := client.Login(ctx, "root@test.com", "AdminPass1", liveCode(t, adminSecret))
	require.NoError(t, err)
	require.Equal(t, "/admin", login.RedirectTo, "admins land on the admin page")

	users, err := client.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		require.NotEmpty(t, u.Username)
	}

	events, err := client.RecentEvents(ctx, 0)
	require.NoError(t, err)
	require.NotEmpty(t, events, "the admin's own login is in the audit log")
	require.Equal(t, "login", events[0].Kind)

	t.Run("reset requires the configured token", func(t *testing.T) {
		_, err := client.ResetStore(ctx, "guess")
		require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeForbidden))

		reset, err := client.ResetStore(ctx, "wipe-it")
		require.NoError(t, err)
		require.Equal(t, "user1@test.com", reset.SeedUsername)
		require.Len(t, reset.SeedSecret, totpx.SecretLength)

		remaining, err := st.Users().ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
	})
}

func TestRegisterEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")
	client := newTestClient(t, srv)
	ctx := context.Background()

	reg, err := client.Register(ctx, "bob@test.com", "GoodPass1", "GoodPass1", strings.Repeat("A", 32))
	require.NoError(t, err)
	require.Equal(t, "bob@test.com", reg.Username)

	// Registration never authenticates.
	_, err = client.CurrentSession(ctx)
	require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeUnauthorized))

	_, err = client.Register(ctx, "bob@test.com", "OtherPass1", "OtherPass1", strings.Repeat("B", 32))
	require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeUsernameTaken))

	_, err = client.Register(ctx, "not-an-email", "GoodPass1", "GoodPass1", strings.Repeat("A", 32))
	require.True(t, gatesdk.IsCode(err, gatesdk.ErrorCodeValidationError))
}
