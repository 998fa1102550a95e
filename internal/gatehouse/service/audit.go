package service

import (
	"context"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store"
	"github.com/lockdownlabs/gatehouse/pkg/idx"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
)

// AuditService appends security events to the audit sink and mirrors them as
// SECURITY-marked log lines. Append-only from the core's perspective; the
// admin surface owns the read path.
type AuditService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *AuditService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Append records one audit event. The caller decides whether an append
// failure is fatal; for post-commit writes it is observability loss only.
func (s *AuditService) Append(ctx context.Context, kind domain.EventKind, subjectID, username, remoteAddr string) error {
	ev := domain.AuditEvent{
		ID:         idx.New().String(),
		Kind:       kind,
		SubjectID:  subjectID,
		Username:   username,
		RemoteAddr: remoteAddr,
		CreatedAt:  s.now(),
	}

	slogx.Security(slogx.FromContext(ctx), string(kind),
		"user_id", subjectID,
		"username", username,
		"remote_addr", remoteAddr,
	)

	return s.Store.AuditEvents().Append(ctx, ev)
}
