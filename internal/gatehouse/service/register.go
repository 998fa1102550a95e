package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store"
	"github.com/lockdownlabs/gatehouse/pkg/cryptox"
	"github.com/lockdownlabs/gatehouse/pkg/idx"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
	"github.com/lockdownlabs/gatehouse/pkg/totpx"
)

// ErrUsernameTaken reports a duplicate username at registration.
var ErrUsernameTaken = errors.New("username already exists")

// Password policy bounds.
const (
	passwordMinLength = 8
	passwordMaxLength = 15
)

// excludedChars are forbidden in both passwords and shared secrets.
const excludedChars = "*?"

// Registration is one submitted registration form.
type Registration struct {
	Username        string
	Password        string
	ConfirmPassword string
	PINKey          string // shared TOTP secret, exactly 32 characters
}

// RegisterService creates user accounts: validation, then uniqueness, then
// creation, in that order. New users always get the user role; roles are
// fixed at registration.
type RegisterService struct {
	Store store.Store
	Audit *AuditService
}

// Register validates reg and creates the account. It returns a
// *domain.ValidationError for shape violations, ErrUsernameTaken for a
// duplicate username, or the created user. Registration never authenticates
// the new account.
func (s *RegisterService) Register(ctx context.Context, reg Registration, remoteAddr string) (domain.User, error) {
	if err := validateRegistration(reg); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(reg.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("register: failed to hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     reg.Username,
		PasswordHash: hash,
		TOTPSecret:   reg.PINKey,
		Role:         domain.RoleUser,
	}

	// Lookup and insert share one transaction: the up-front check gives a
	// friendly error, the unique index backs it under concurrent
	// registration, and a conflicting insert rolls back cleanly.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByUsername(ctx, reg.Username)
		switch {
		case err == nil:
			return ErrUsernameTaken
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("username lookup failed: %w", err)
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("register: %w", err)
	}

	if err := s.Audit.Append(ctx, domain.EventRegistration, user.ID, user.Username, remoteAddr); err != nil {
		slogx.FromContext(ctx).Error("failed to append registration audit event",
			"user_id", user.ID, "error", err)
	}

	return user, nil
}

func validateRegistration(reg Registration) error {
	if err := validateUsername(reg.Username); err != nil {
		return err
	}
	if err := validatePassword(reg.Password); err != nil {
		return err
	}
	if reg.ConfirmPassword != reg.Password {
		return &domain.ValidationError{Field: "confirm_password", Reason: "must match password"}
	}
	return validatePINKey(reg.PINKey)
}

func validateUsername(username string) error {
	addr, err := mail.ParseAddress(username)
	// ParseAddress also accepts "Name <user@host>" forms; the login key must
	// be the bare address.
	if err != nil || addr.Address != username {
		return &domain.ValidationError{Field: "username", Reason: "must be a valid email address"}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < passwordMinLength || len(password) > passwordMaxLength {
		return &domain.ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be between %d and %d characters", passwordMinLength, passwordMaxLength),
		}
	}
	if strings.ContainsAny(password, excludedChars) {
		return &domain.ValidationError{Field: "password", Reason: "must not contain * or ?"}
	}

	var hasDigit, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}
	if !hasDigit || !hasUpper {
		return &domain.ValidationError{
			Field:  "password",
			Reason: "must contain at least one digit and one uppercase letter",
		}
	}
	return nil
}

func validatePINKey(pinkey string) error {
	if len(pinkey) != totpx.SecretLength {
		return &domain.ValidationError{
			Field:  "pinkey",
			Reason: fmt.Sprintf("must be exactly %d characters", totpx.SecretLength),
		}
	}
	if strings.ContainsAny(pinkey, excludedChars) {
		return &domain.ValidationError{Field: "pinkey", Reason: "must not contain * or ?"}
	}
	return nil
}
