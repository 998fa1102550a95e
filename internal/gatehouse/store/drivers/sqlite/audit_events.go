package sqlite

import (
	"context"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
)

type auditEventsRepo struct {
	q querier
}

func (r *auditEventsRepo) Append(ctx context.Context, ev domain.AuditEvent) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO audit_events (id, kind, subject_id, username, remote_addr, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Kind), ev.SubjectID, ev.Username, ev.RemoteAddr, ev.CreatedAt.UTC(),
	)
	return err
}

func (r *auditEventsRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, kind, subject_id, username, remote_addr, created_at
		 FROM audit_events
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var (
			ev   domain.AuditEvent
			kind string
		)
		if err := rows.Scan(&ev.ID, &kind, &ev.SubjectID, &ev.Username, &ev.RemoteAddr, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Kind = domain.EventKind(kind)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *auditEventsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM audit_events WHERE created_at < ?`, cutoff.UTC())
	return err
}
