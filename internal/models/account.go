// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import "time"

// Role is an account's permission level. The administrator is a runtime
// identity configured through the environment and is never persisted;
// only staff and lecturer accounts live in the database.
type Role int

const (
	RoleAdmin    Role = 0
	RoleStaff    Role = 1
	RoleLecturer Role = 2
)

// Valid reports whether the role may be stored on an account.
func (r Role) Valid() bool {
	return r == RoleStaff || r == RoleLecturer
}

// Account represents a staff or lecturer login.
// Identities are allocated by the account store, never by the database.
type Account struct {
	ID           int16     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	TOTPSecret   *string   `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Virtual field populated by list queries.
	ArticleCount int `json:"article_count"`
}

// IsAdmin reports whether this is the runtime administrator identity.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
