package session

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return &Manager{Secret: []byte("test-secret-test-secret-test-sec"), TTL: time.Hour}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	m := testManager()
	id := domain.Identity{UserID: "01ABC", Username: "alice@test.com", Role: domain.RoleAdmin}

	token, err := m.Issue(id, time.Now())
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	m := testManager()
	token, err := m.Issue(domain.Identity{UserID: "u1"}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	t.Parallel()

	m := testManager()
	other := &Manager{Secret: []byte("a-different-secret-entirely!!!!!"), TTL: time.Hour}

	token, err := other.Issue(domain.Identity{UserID: "u1"}, time.Now())
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestActivateDeactivateCookieLifecycle(t *testing.T) {
	t.Parallel()

	m := testManager()
	id := domain.Identity{UserID: "u1", Username: "alice@test.com", Role: domain.RoleUser}

	rec := httptest.NewRecorder()
	require.NoError(t, m.Activate(rec, id))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, IdentityCookie, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	// Round-trip the cookie back through Current.
	req := httptest.NewRequest("GET", "/v1/session", nil)
	req.AddCookie(cookies[0])
	got, err := m.Current(req)
	require.NoError(t, err)
	require.Equal(t, id, got)

	rec = httptest.NewRecorder()
	m.Deactivate(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Empty(t, cleared[0].Value)
	require.Negative(t, cleared[0].MaxAge)
}

func TestCurrentWithoutCookie(t *testing.T) {
	t.Parallel()

	m := testManager()
	req := httptest.NewRequest("GET", "/v1/session", nil)
	_, err := m.Current(req)
	require.ErrorIs(t, err, ErrNoIdentity)
}

func TestAttemptStoreScopesCountersBySession(t *testing.T) {
	t.Parallel()

	store := NewAttemptStore(time.Minute)

	a := store.Get("sid-a")
	a.FailedAttempts = 2
	b := store.Get("sid-b")
	require.Zero(t, b.FailedAttempts)

	// Same sid returns the same counter.
	require.Equal(t, 2, store.Get("sid-a").FailedAttempts)

	store.Drop("sid-a")
	require.Zero(t, store.Get("sid-a").FailedAttempts)
}

func TestAttemptStorePruneExpired(t *testing.T) {
	t.Parallel()

	store := NewAttemptStore(time.Minute)
	store.Get("old")
	store.Get("new")

	dropped := store.PruneExpired(time.Now().Add(2 * time.Minute))
	require.Equal(t, 2, dropped)
}
