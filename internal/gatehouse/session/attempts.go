package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/pkg/idx"
)

const (
	// BrowsingCookie identifies a browsing session before authentication. It
	// exists only to scope the failed-attempt counter.
	BrowsingCookie = "gatehouse_sid"

	// DefaultAttemptTTL is how long an idle login session is kept before the
	// housekeeping sweep drops it (and with it, its counter).
	DefaultAttemptTTL = 30 * time.Minute
)

type attemptEntry struct {
	sess     *domain.LoginSession
	lastSeen time.Time
}

// AttemptStore holds the per-browsing-session login state in memory, keyed by
// the browsing-session cookie. Counters are single-writer per session; the
// mutex only protects the map across sessions.
type AttemptStore struct {
	TTL time.Duration

	mu       sync.Mutex
	sessions map[string]*attemptEntry
}

func NewAttemptStore(ttl time.Duration) *AttemptStore {
	if ttl <= 0 {
		ttl = DefaultAttemptTTL
	}
	return &AttemptStore{
		TTL:      ttl,
		sessions: make(map[string]*attemptEntry),
	}
}

// Get returns the login session for sid, creating a fresh one (counter at
// zero) on first reference.
func (s *AttemptStore) Get(sid string) *domain.LoginSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[sid]; ok {
		e.lastSeen = time.Now()
		return e.sess
	}

	e := &attemptEntry{sess: &domain.LoginSession{}, lastSeen: time.Now()}
	s.sessions[sid] = e
	return e.sess
}

// Drop removes a browsing session outright, e.g. after a successful login.
func (s *AttemptStore) Drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
}

// PruneExpired removes sessions idle past the TTL and returns how many were
// dropped. Called from housekeeping.
func (s *AttemptStore) PruneExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped int
	for sid, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.TTL {
			delete(s.sessions, sid)
			dropped++
		}
	}
	return dropped
}

// EnsureSID returns the request's browsing-session id, minting and setting a
// new one when the cookie is absent.
func EnsureSID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if cookie, err := r.Cookie(BrowsingCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	sid := idx.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     BrowsingCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}
