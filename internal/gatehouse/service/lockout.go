package service

import (
	"fmt"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
)

// DefaultAttemptLimit is the consecutive-failure threshold at which the
// exceeded message (or, in enforcing mode, a hard block) kicks in.
const DefaultAttemptLimit = 3

// Lockout modes selectable via configuration.
const (
	LockoutAdvisory  = "advisory"
	LockoutEnforcing = "enforcing"
)

// ExceededMessage is shown once the failure count reaches the limit, and
// pre-emptively on any later login page view.
const ExceededMessage = "Number of incorrect logins exceeded"

// LockoutPolicy bounds consecutive failed login attempts for one browsing
// session. The advisory variant only changes messaging; the enforcing variant
// also rejects attempts outright once the limit is reached.
type LockoutPolicy interface {
	// Allow reports whether another attempt may be processed at all.
	Allow(sess *domain.LoginSession) bool

	// RecordFailure increments the counter and returns the new count.
	RecordFailure(sess *domain.LoginSession) int

	// Reset zeroes the counter. Only a fully successful two-factor login
	// calls this.
	Reset(sess *domain.LoginSession)

	// Exceeded reports whether the session has reached the limit.
	Exceeded(sess *domain.LoginSession) bool

	// Warning selects the user-facing message for the given (new) count.
	// Empty for a zero count.
	Warning(count int) string
}

// NewLockoutPolicy builds the policy for the configured mode. Unknown modes
// fall back to advisory, the observed legacy behavior.
func NewLockoutPolicy(mode string, limit int) LockoutPolicy {
	if limit <= 0 {
		limit = DefaultAttemptLimit
	}
	if mode == LockoutEnforcing {
		return &EnforcingLockout{Limit: limit}
	}
	return &AdvisoryLockout{Limit: limit}
}

// AdvisoryLockout counts failures and escalates messaging but never blocks
// further attempts. This is a pure policy signal.
type AdvisoryLockout struct {
	Limit int
}

func (p *AdvisoryLockout) Allow(*domain.LoginSession) bool { return true }

func (p *AdvisoryLockout) RecordFailure(sess *domain.LoginSession) int {
	sess.FailedAttempts++
	return sess.FailedAttempts
}

func (p *AdvisoryLockout) Reset(sess *domain.LoginSession) { sess.FailedAttempts = 0 }

func (p *AdvisoryLockout) Exceeded(sess *domain.LoginSession) bool {
	return sess.FailedAttempts >= p.Limit
}

func (p *AdvisoryLockout) Warning(count int) string { return attemptWarning(count, p.Limit) }

// EnforcingLockout behaves like AdvisoryLockout until the limit is reached,
// after which Allow reports false and attempts are rejected without further
// counting.
type EnforcingLockout struct {
	Limit int
}

func (p *EnforcingLockout) Allow(sess *domain.LoginSession) bool {
	return sess.FailedAttempts < p.Limit
}

func (p *EnforcingLockout) RecordFailure(sess *domain.LoginSession) int {
	sess.FailedAttempts++
	return sess.FailedAttempts
}

func (p *EnforcingLockout) Reset(sess *domain.LoginSession) { sess.FailedAttempts = 0 }

func (p *EnforcingLockout) Exceeded(sess *domain.LoginSession) bool {
	return sess.FailedAttempts >= p.Limit
}

func (p *EnforcingLockout) Warning(count int) string { return attemptWarning(count, p.Limit) }

// attemptWarning keys the message on the NEW count after a failure, matching
// the legacy flash messages exactly for the default limit of three.
func attemptWarning(count, limit int) string {
	switch {
	case count <= 0:
		return ""
	case count >= limit:
		return ExceededMessage
	case limit-count == 1:
		return "Please check your login details and try again. 1 login attempt remaining"
	default:
		return fmt.Sprintf("Please check your login details and try again. %d login attempts remaining", limit-count)
	}
}
