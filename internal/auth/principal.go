package auth

import (
	"github.com/google/uuid"

	"github.com/blinkedin/backend/internal/models"
)

// Principal is the authenticated identity attached to a request. Core
// operations receive it explicitly; nothing reads ambient session state.
type Principal struct {
	AccountID  uuid.UUID
	Name       string
	Role       models.Role
	City       string
	Profession string
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }
