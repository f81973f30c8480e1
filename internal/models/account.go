package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account role. Admin accounts exist only via the offline
// bootstrap command; the serving surface registers customers and pros.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleProfessional Role = "pro"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProfessional, RoleAdmin:
		return true
	}
	return false
}

// DefaultWalletBalance is credited to every account at signup.
const DefaultWalletBalance = 1000

type Account struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	Profession    string    `json:"profession,omitempty"` // set only for RoleProfessional
	City          string    `json:"city"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	Phone         string    `json:"phone"`
	WalletBalance int       `json:"wallet_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
