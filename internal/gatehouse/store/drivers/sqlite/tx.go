package sqlite

import (
	"database/sql"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store"
)

// Tx wraps a *sql.Tx and exposes the same sub-repositories scoped to it.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Users() store.Users             { return &usersRepo{q: t.tx} }
func (t *Tx) AuditEvents() store.AuditEvents { return &auditEventsRepo{q: t.tx} }

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }
