package domain

import "time"

// Role is a closed enum; it is fixed at registration and drives the
// post-login redirect target.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           string
	Username     string // email-shaped, unique, case-sensitive
	PasswordHash string // argon2id PHC encoded
	TOTPSecret   string // 32-character shared secret, set once at registration
	Role         Role

	// LastLoggedIn always reflects the session before the current one. On a
	// successful login LastLoggedIn takes the previous CurrentLoggedIn value
	// and CurrentLoggedIn becomes now.
	LastLoggedIn    *time.Time
	CurrentLoggedIn *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
