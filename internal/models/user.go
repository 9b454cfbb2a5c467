package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role is the single role an actor holds.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// User is an account known to the identity directory.
// The password hash is never part of the session copy.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Role         Role      `json:"role"`
	CommunityID  string    `json:"communityId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	Verified     bool      `json:"verified"`
}

// HasRole reports whether the user holds any of roles. A nil user holds none.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	return slices.Contains(roles, u.Role)
}

// IsAdmin requires the admin role exactly.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// IsStaff is satisfied by staff and admins.
func (u *User) IsStaff() bool {
	return u.HasRole(RoleStaff, RoleAdmin)
}

// Public returns the user without credential material.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// NewID generates a prefixed identifier such as "comp_<uuid>".
func NewID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}
