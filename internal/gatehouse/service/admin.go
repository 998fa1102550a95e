package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store"
	"github.com/lockdownlabs/gatehouse/pkg/cryptox"
	"github.com/lockdownlabs/gatehouse/pkg/idx"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
	"github.com/lockdownlabs/gatehouse/pkg/totpx"
)

// DefaultEventLimit caps the admin event view, matching the legacy log tail.
const DefaultEventLimit = 10

// ErrResetDisabled is returned when no reset token is configured.
var ErrResetDisabled = errors.New("store reset is not enabled")

// ErrResetUnauthorized is returned for a wrong reset token.
var ErrResetUnauthorized = errors.New("unauthorized reset attempt")

// AdminService is the administrative capability surface: user listing, the
// audit log view, and the destructive reset-and-seed operation. It is wired
// to routes only an admin identity can reach, and the reset additionally
// requires a pre-configured token so it is never default-reachable.
type AdminService struct {
	Store store.Store

	// ResetToken enables ResetStore when non-empty.
	ResetToken string

	// Seed account created after a reset.
	SeedUsername string
	SeedPassword string
	Issuer       string
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

func (s *AdminService) RecentEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	return s.Store.AuditEvents().ListRecent(ctx, limit)
}

// SeededAccount describes the account created by a reset. The TOTP secret is
// returned exactly once for provisioning an authenticator.
type SeededAccount struct {
	User       domain.User
	TOTPSecret string
}

// ResetStore drops and recreates the entire store, then seeds one default
// account. Destructive and idempotent: running it twice leaves the same
// single seeded account (with a fresh secret).
func (s *AdminService) ResetStore(ctx context.Context, token string) (SeededAccount, error) {
	l := slogx.FromContext(ctx)

	if s.ResetToken == "" {
		return SeededAccount{}, ErrResetDisabled
	}
	if token != s.ResetToken {
		l.Warn("unauthorized store reset attempt")
		return SeededAccount{}, ErrResetUnauthorized
	}

	if err := s.Store.Reset(ctx); err != nil {
		return SeededAccount{}, fmt.Errorf("admin: store reset failed: %w", err)
	}

	secret, err := totpx.GenerateSecret(s.Issuer, s.SeedUsername)
	if err != nil {
		return SeededAccount{}, fmt.Errorf("admin: failed to generate seed secret: %w", err)
	}

	hash, err := cryptox.HashPassword(s.SeedPassword)
	if err != nil {
		return SeededAccount{}, fmt.Errorf("admin: failed to hash seed password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     s.SeedUsername,
		PasswordHash: hash,
		TOTPSecret:   secret,
		Role:         domain.RoleAdmin,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return SeededAccount{}, fmt.Errorf("admin: failed to seed default account: %w", err)
	}

	l.Warn("store reset and reseeded", "seed_username", s.SeedUsername)

	return SeededAccount{User: user, TOTPSecret: secret}, nil
}
