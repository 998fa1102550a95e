package domain

import "time"

// EventKind classifies a security audit event.
type EventKind string

const (
	EventRegistration EventKind = "registration"
	EventLogin        EventKind = "login"
	EventLoginFailure EventKind = "login_failure"
	EventLogout       EventKind = "logout"
)

// AuditEvent is an append-only security log record: who, what, when, from
// where. The core only writes these; reading belongs to the admin surface.
type AuditEvent struct {
	ID         string
	Kind       EventKind
	SubjectID  string // user id when known, otherwise empty
	Username   string // snapshot at event time
	RemoteAddr string
	CreatedAt  time.Time
}
