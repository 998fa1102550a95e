package domain

// LoginSession is the ephemeral per-browsing-session state of the login state
// machine. It is never persisted to the credential store; the session layer
// owns its lifetime and guarantees single-writer access per session.
type LoginSession struct {
	// FailedAttempts counts consecutive failed password-or-OTP checks. It
	// resets to zero only on a fully successful two-factor login.
	FailedAttempts int
}

// Identity is the authenticated-identity payload handed to the session
// manager after full two-factor success.
type Identity struct {
	UserID   string
	Username string
	Role     Role
}
