package types

import "time"

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Email is the user's email address. It is unique across accounts
	// and is the login identifier.
	Email string `json:"email" db:"email"`

	// Roles lists the authorization roles held by the user.
	// Every user holds the baseline "USER" role; it cannot be revoked.
	Roles []string `json:"roles" db:"roles"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// IsActive reports whether the account is usable. Deactivation is
	// terminal; rows are never deleted.
	IsActive bool `json:"is_active" db:"is_active"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the user's display name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Sanitized returns a copy of the user with the password hash cleared.
// Services return sanitized copies so a hash can never leak through a
// response payload, independent of JSON tags.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
