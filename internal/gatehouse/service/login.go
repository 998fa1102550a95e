package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store"
	"github.com/lockdownlabs/gatehouse/pkg/cryptox"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
	"github.com/lockdownlabs/gatehouse/pkg/totpx"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. The two are deliberately indistinguishable so a caller can
	// not probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidTOTP reports a shape-valid but wrong or expired 2FA code.
	ErrInvalidTOTP = errors.New("invalid_totp")

	// ErrTooManyAttempts is returned only under the enforcing lockout policy.
	ErrTooManyAttempts = errors.New("too_many_attempts")
)

// InvalidTOTPMessage is the distinct flash message for a failed second factor.
const InvalidTOTPMessage = "You have supplied an invalid 2FA token!"

// Post-login destinations by role.
const (
	RedirectAdmin   = "/admin"
	RedirectDefault = "/"
)

// SessionActivator is the narrow slice of the session manager the login state
// machine needs: activating an authenticated identity. The HTTP layer binds
// it to the in-flight response.
type SessionActivator interface {
	Activate(id domain.Identity) error
}

// LoginService is the login state machine. One Login call takes a submitted
// (username, password, pin) tuple from START through the password check, the
// TOTP check, and on success into the authenticated state: counter reset,
// timestamp rotation, persistence, session activation, audit.
type LoginService struct {
	Store   store.Store
	Audit   *AuditService
	Lockout LockoutPolicy

	// TOTPSkew is the number of 30s steps accepted either side of now.
	// Zero by default: only the exact current step validates.
	TOTPSkew uint

	// AuditFailures also records failed authentication attempts in the audit
	// sink. Off by default to match the legacy behavior of auditing only
	// successes.
	AuditFailures bool

	// Now and VerifyTOTP are injectable for tests. Nil means the real clock
	// and totpx.Verify.
	Now        func() time.Time
	VerifyTOTP func(secret, pin string, at time.Time, skew uint) bool
}

// LoginResult is the outcome of a fully successful two-factor login.
type LoginResult struct {
	User       domain.User
	RedirectTo string
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *LoginService) verifyTOTP(secret, pin string, at time.Time) bool {
	if s.VerifyTOTP != nil {
		return s.VerifyTOTP(secret, pin, at, s.TOTPSkew)
	}
	return totpx.Verify(secret, pin, at, s.TOTPSkew)
}

// Login runs the state machine for one submission. sess carries the
// browsing-session failure counter and is mutated in place. On success the
// counter is reset, the user's login timestamps are rotated and persisted,
// the identity is activated through activate, and a login audit event is
// emitted, strictly in that order.
//
// Failure classes:
//   - ErrTooManyAttempts: enforcing policy gate, counter untouched
//   - ErrInvalidCredentials: unknown user or wrong password, counter bumped
//   - totpx.ErrMalformedPIN: shape violation, counter untouched
//   - ErrInvalidTOTP: wrong second factor, counter bumped
//
// Any other error is a store or activation failure, fatal to the request.
func (s *LoginService) Login(
	ctx context.Context,
	sess *domain.LoginSession,
	username, password, pin, remoteAddr string,
	activate SessionActivator,
) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Enforcing-gate check. Advisory policies always allow.
	if !s.Lockout.Allow(sess) {
		l.Warn("login attempt rejected by lockout policy",
			"username", username, "attempts", sess.FailedAttempts)
		return LoginResult{}, ErrTooManyAttempts
	}

	// 2. User lookup. An unknown username takes the exact same failure path
	// as a wrong password.
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, s.failAttempt(ctx, sess, username, remoteAddr, ErrInvalidCredentials)
		}
		return LoginResult{}, fmt.Errorf("login: user lookup failed: %w", err)
	}

	// 3. First factor. On failure the second factor is never evaluated, so
	// the response can't leak which factor was wrong.
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return LoginResult{}, s.failAttempt(ctx, sess, username, remoteAddr, ErrInvalidCredentials)
		}
		// A stored hash we can't parse is a data problem, not a user error.
		return LoginResult{}, fmt.Errorf("login: password verification failed: %w", err)
	}

	// 4. PIN shape before TOTP derivation. Pure validation: no counter
	// mutation, no audit.
	cleanPIN, err := totpx.NormalizePIN(pin)
	if err != nil {
		return LoginResult{}, err
	}

	// 5. Second factor. Shares the same counter as password failures.
	now := s.now()
	if !s.verifyTOTP(user.TOTPSecret, cleanPIN, now) {
		return LoginResult{}, s.failAttempt(ctx, sess, username, remoteAddr, ErrInvalidTOTP)
	}

	// 6. Authenticated. Reset the counter, rotate timestamps, and persist
	// before anything else observes the new state.
	s.Lockout.Reset(sess)

	previous := user.CurrentLoggedIn
	user.LastLoggedIn = previous
	user.CurrentLoggedIn = &now

	if err := s.Store.Users().UpdateLoginTimestamps(ctx, user.ID, previous, &now); err != nil {
		return LoginResult{}, fmt.Errorf("login: failed to persist login timestamps: %w", err)
	}

	if err := activate.Activate(domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}); err != nil {
		return LoginResult{}, fmt.Errorf("login: failed to activate session: %w", err)
	}

	// Post-commit audit: a failure here loses observability, never the
	// authenticated state.
	if err := s.Audit.Append(ctx, domain.EventLogin, user.ID, user.Username, remoteAddr); err != nil {
		l.Error("failed to append login audit event", "user_id", user.ID, "error", err)
	}

	redirect := RedirectDefault
	if user.Role == domain.RoleAdmin {
		redirect = RedirectAdmin
	}

	return LoginResult{User: user, RedirectTo: redirect}, nil
}

// failAttempt is the shared failure path for both factors: bump the counter,
// optionally audit, and hand back the classification error.
func (s *LoginService) failAttempt(
	ctx context.Context,
	sess *domain.LoginSession,
	username, remoteAddr string,
	cause error,
) error {
	count := s.Lockout.RecordFailure(sess)

	slogx.FromContext(ctx).Warn("login attempt failed",
		"username", username,
		"attempts", count,
		"reason", cause.Error(),
	)

	if s.AuditFailures {
		if err := s.Audit.Append(ctx, domain.EventLoginFailure, "", username, remoteAddr); err != nil {
			slogx.FromContext(ctx).Error("failed to append login failure audit event", "error", err)
		}
	}

	return cause
}
