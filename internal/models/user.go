package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the privilege level of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Hidden from JSON responses
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Principal is the authenticated identity attached to a request
type Principal struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PrincipalFor builds the principal for a freshly loaded user
func PrincipalFor(u *User) Principal {
	return Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
