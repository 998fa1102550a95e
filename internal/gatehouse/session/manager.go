// Package session owns the two kinds of browser-facing session state: the
// authenticated identity token issued after full two-factor success, and the
// ephemeral login-attempt counters scoped to a browsing session.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
)

const (
	// IdentityCookie carries the signed identity token.
	IdentityCookie = "gatehouse_identity"

	// DefaultTTL bounds how long an authenticated identity stays valid.
	DefaultTTL = 12 * time.Hour
)

var (
	ErrNoIdentity      = errors.New("session: no identity")
	ErrInvalidIdentity = errors.New("session: invalid identity token")
)

type identityClaims struct {
	jwt.RegisteredClaims

	Username string `json:"username"`
	Role     string `json:"role"`
}

// Manager issues and verifies cookie-backed identity tokens. Tokens are
// HS256-signed JWTs; the secret is process-local configuration, there is no
// cross-service verification requirement.
type Manager struct {
	Secret []byte
	TTL    time.Duration
	Secure bool // mark cookies Secure; off only for local dev over http
}

func (m *Manager) ttl() time.Duration {
	if m.TTL <= 0 {
		return DefaultTTL
	}
	return m.TTL
}

// Issue signs an identity token for id.
func (m *Manager) Issue(id domain.Identity, now time.Time) (string, error) {
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl())),
		},
		Username: id.Username,
		Role:     string(id.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", fmt.Errorf("session: failed to sign identity token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a signed identity token.
func (m *Manager) Verify(raw string) (domain.Identity, error) {
	var claims identityClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return m.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Identity{}, ErrInvalidIdentity
	}

	return domain.Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     domain.Role(claims.Role),
	}, nil
}

// Activate issues an identity token and sets it as a cookie on the response.
// Called only after full two-factor success.
func (m *Manager) Activate(w http.ResponseWriter, id domain.Identity) error {
	token, err := m.Issue(id, time.Now())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     IdentityCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl().Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Deactivate clears the identity cookie. Called on explicit logout.
func (m *Manager) Deactivate(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     IdentityCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Current returns the authenticated identity attached to the request, if any.
func (m *Manager) Current(r *http.Request) (domain.Identity, error) {
	cookie, err := r.Cookie(IdentityCookie)
	if err != nil || cookie.Value == "" {
		return domain.Identity{}, ErrNoIdentity
	}
	return m.Verify(cookie.Value)
}
