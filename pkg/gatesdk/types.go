package gatesdk

import "time"

// ErrorResponse is the standard error envelope every endpoint returns on
// failure. Client code should usually work with the typed APIError from
// errors.go instead.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g. "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// LoginPromptResponse is returned from GET /v1/login. It tells the caller
// whether the browsing session has already exhausted its login attempts so a
// form can show the warning before another submission.
type LoginPromptResponse struct {
	// Exceeded reports that the attempt limit has been reached
	Exceeded bool `json:"exceeded"`

	// Message is the warning banner to show, empty when Exceeded is false
	Message string `json:"message,omitempty"`
}

// LoginResponse is returned from POST /v1/login after a fully successful
// two-factor login. The identity cookie is set on the same response.
type LoginResponse struct {
	// UserID is the authenticated user's id
	UserID string `json:"user_id"`

	// Username is the authenticated user's username
	Username string `json:"username"`

	// Role is the authenticated user's role ("user" or "admin")
	Role string `json:"role"`

	// RedirectTo is where the caller should navigate next, chosen by role
	RedirectTo string `json:"redirect_to"`
}

// RegisterResponse is returned from POST /v1/register.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// SessionResponse describes the identity behind the caller's cookie,
// returned from GET /v1/session.
type SessionResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserSummary is one account in the admin user listing. Password hashes and
// TOTP secrets never leave the service.
type UserSummary struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Role            string     `json:"role"`
	LastLoggedIn    *time.Time `json:"last_logged_in,omitempty"`
	CurrentLoggedIn *time.Time `json:"current_logged_in,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AuditEventSummary is one security event in the admin audit view,
// newest first.
type AuditEventSummary struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	SubjectID  string    `json:"subject_id,omitempty"`
	Username   string    `json:"username"`
	RemoteAddr string    `json:"remote_addr"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResetResponse is returned from the destructive store reset. The TOTP
// secret for the seeded account is disclosed exactly once, here.
type ResetResponse struct {
	SeedUserID   string `json:"seed_user_id"`
	SeedUsername string `json:"seed_username"`
	SeedSecret   string `json:"seed_secret"`
}

// HealthChecks reports per-dependency health in the readiness response.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned from /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
