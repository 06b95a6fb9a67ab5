package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role attached to a user. It is stored as a
// string but treated as a closed enumeration in authorization checks.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User is identified externally by phone number. The phone number is
// immutable once verified by OTP; email is optional and unique only among
// non-null values.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	PhoneNumber   string    `gorm:"size:20;not null;uniqueIndex" json:"phone_number"`
	PhoneVerified bool      `gorm:"not null;default:false" json:"phone_verified"`
	Email         *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	Image         string    `gorm:"type:text" json:"image,omitempty"`
	Role          Role      `gorm:"size:20;not null;default:'buyer'" json:"role"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
