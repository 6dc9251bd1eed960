package models

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an identity record. PasswordHash is nil for a user that exists
// without a usable password (mid-invite); such a user cannot log in.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Role         Role
	CreatedAt    time.Time
}
