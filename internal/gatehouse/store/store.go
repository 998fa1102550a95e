package store

import (
	"context"
	"errors"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable. The core treats the store as a provided dependency; opening and
// closing it belongs to the application shell.
type Store interface {
	Users() Users
	AuditEvents() AuditEvents

	ApplyMigrations() error

	// Reset drops the entire schema and re-applies migrations, leaving an
	// empty store. Destructive and administrative: it must never be reachable
	// from a normal request path.
	Reset(ctx context.Context) error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store scope.
type Tx interface {
	Users() Users
	AuditEvents() AuditEvents
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername looks a user up by their login key. The match is
	// case-sensitive.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateLoginTimestamps rotates the login timestamps on a successful
	// two-factor login and bumps updated_at.
	UpdateLoginTimestamps(ctx context.Context, userID string, last, current *time.Time) error

	// ListUsers returns all users ordered by creation (admin view).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type AuditEvents interface {
	// Append writes one audit event. Append-only; there is no update path.
	Append(ctx context.Context, ev domain.AuditEvent) error

	// ListRecent returns up to limit events, newest first (admin log view).
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error)

	// DeleteOlderThan prunes events created before cutoff. Housekeeping.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}
