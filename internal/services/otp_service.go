package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/sokonihq/sokoni-backend/internal/config"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrOTPNotFound         = errors.New("no OTP request found")
	ErrOTPExpired          = errors.New("OTP has expired")
	ErrOTPAttemptsExceeded = errors.New("maximum attempts exceeded")
	ErrOTPMismatch         = errors.New("invalid OTP")
)

type OTPService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewOTPService(db *gorm.DB, cfg *config.Config) *OTPService {
	return &OTPService{db: db, cfg: cfg}
}

// generateCode returns a uniformly random 6-digit decimal code in
// [100000, 999999].
func (s *OTPService) generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue creates a fresh code for the (phone, purpose) pair. Any prior
// unverified record for the pair is deleted in the same transaction, so at
// most one unverified record exists per pair at any time. The plaintext code
// is returned for out-of-band delivery.
func (s *OTPService) Issue(phoneNumber string, purpose models.OTPPurpose) (string, *models.OTPVerification, error) {
	code, err := s.generateCode()
	if err != nil {
		return "", nil, err
	}

	record := &models.OTPVerification{
		ID:          uuid.New(),
		PhoneNumber: phoneNumber,
		Purpose:     purpose,
		Code:        code,
		ExpiresAt:   time.Now().Add(s.cfg.OTPExpiry),
		Verified:    false,
		Attempts:    0,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phone_number = ? AND purpose = ? AND verified = ?", phoneNumber, purpose, false).
			Delete(&models.OTPVerification{}).Error; err != nil {
			return fmt.Errorf("failed to delete existing OTPs: %w", err)
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create OTP record: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	return code, record, nil
}

// Verify checks the supplied code against the most recent unverified record
// for the pair. The attempt counter is incremented and persisted before the
// code comparison, so even the successful call consumes an attempt; with a
// cap of 5 that allows 5 total tries including the winning one. The
// increment deliberately stays outside any surrounding transaction so a
// mismatch never rolls it back.
func (s *OTPService) Verify(phoneNumber, code string, purpose models.OTPPurpose) error {
	var record models.OTPVerification
	err := s.db.Where("phone_number = ? AND purpose = ? AND verified = ?", phoneNumber, purpose, false).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find OTP record: %w", err)
	}

	if record.IsExpired() {
		return ErrOTPExpired
	}
	if record.Attempts >= s.cfg.OTPMaxAttempts {
		return ErrOTPAttemptsExceeded
	}

	// Charge the attempt before comparing.
	record.Attempts++
	if err := s.db.Model(&record).Update("attempts", record.Attempts).Error; err != nil {
		return fmt.Errorf("failed to update attempts: %w", err)
	}

	if record.Code != code {
		return ErrOTPMismatch
	}

	if err := s.db.Model(&record).Update("verified", true).Error; err != nil {
		return fmt.Errorf("failed to mark OTP verified: %w", err)
	}
	return nil
}
