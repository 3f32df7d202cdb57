package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes ordinary accounts from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a gateway account.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	PersonalMobile string    `json:"personalMobile,omitempty"` // empty when the user has no dedicated number
	Role           Role      `json:"role"`
	Credits        int       `json:"credits"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a User with defaults applied. ID is generated by the caller.
func NewUser(id uuid.UUID, username, hashedPassword, personalMobile string, role Role, credits int) *User {
	now := time.Now().UTC()
	if !role.Valid() {
		role = RoleUser
	}
	return &User{
		ID:             id,
		Username:       username,
		HashedPassword: hashedPassword,
		PersonalMobile: personalMobile,
		Role:           role,
		Credits:        credits,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
