package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProfessional Role = "professional"
	RoleStudent      Role = "student"
)

// Valid reports whether the role is one of the three known roles.
// Anything else is treated as unauthenticated by the permission deriver.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessional, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
