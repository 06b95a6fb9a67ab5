package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPPurpose scopes an OTP to a single use case. At most one unverified
// record may exist per (phone number, purpose) pair.
type OTPPurpose string

const (
	OTPPurposeSignup            OTPPurpose = "signup"
	OTPPurposeSignin            OTPPurpose = "signin"
	OTPPurposePhoneVerification OTPPurpose = "phone_verification"
	OTPPurposePasswordReset     OTPPurpose = "password_reset"
)

func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPPurposeSignup, OTPPurposeSignin, OTPPurposePhoneVerification, OTPPurposePasswordReset:
		return true
	}
	return false
}

// OTPVerification holds a one-time code issued for a phone number. A record
// is never reused after it is verified or after the attempt cap is reached.
type OTPVerification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PhoneNumber string     `gorm:"size:20;not null;index:idx_otp_phone_purpose" json:"phone_number"`
	Purpose     OTPPurpose `gorm:"size:30;not null;index:idx_otp_phone_purpose" json:"purpose"`
	Code        string     `gorm:"size:6;not null" json:"-"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	Verified    bool       `gorm:"not null;default:false" json:"verified"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (o *OTPVerification) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}
