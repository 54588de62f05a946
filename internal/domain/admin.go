package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the privilege level carried by a session token
type Role string

const (
	// RoleUser is a competing team
	RoleUser Role = "user"
	// RoleSudo is an administrator
	RoleSudo Role = "sudo"
)

// Satisfies reports whether a token with role r may perform an operation
// requiring the given role. Sudo is a superset of user.
func (r Role) Satisfies(required Role) bool {
	if r == required {
		return true
	}
	return r == RoleSudo && required == RoleUser
}

// Admin is an administrative account. Admins are provisioned out of band
// (ctf-admin CLI), never through the public API.
type Admin struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         Role      `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// NewAdminID creates a new admin document ID
func NewAdminID() string {
	return uuid.New().String()
}

// AdminLoginRequest is the admin login payload
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
