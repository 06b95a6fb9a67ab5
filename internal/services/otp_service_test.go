package services

import (
	"testing"
	"time"

	"github.com/sokonihq/sokoni-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhone = "+255712345678"

func TestIssueKeepsSingleUnverifiedRecord(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOTPService(db, testConfig())

	first, _, err := svc.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)

	second, _, err := svc.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)

	var count int64
	db.Model(&models.OTPVerification{}).
		Where("phone_number = ? AND purpose = ? AND verified = ?", testPhone, models.OTPPurposeSignup, false).
		Count(&count)
	assert.Equal(t, int64(1), count)

	// The surviving record holds the newest code
	var record models.OTPVerification
	require.NoError(t, db.Where("phone_number = ?", testPhone).First(&record).Error)
	assert.Equal(t, second, record.Code)
	assert.Len(t, first, 6)
	assert.Len(t, second, 6)
}

func TestIssueScopedByPurpose(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOTPService(db, testConfig())

	_, _, err := svc.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)
	_, _, err = svc.Issue(testPhone, models.OTPPurposeSignin)
	require.NoError(t, err)

	var count int64
	db.Model(&models.OTPVerification{}).Where("phone_number = ?", testPhone).Count(&count)
	assert.Equal(t, int64(2), count, "different purposes keep independent records")
}

func TestVerifySucceedsExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOTPService(db, testConfig())

	code, record, err := svc.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(testPhone, code, models.OTPPurposeSignup))

	var stored models.OTPVerification
	require.NoError(t, db.First(&stored, "id = ?", record.ID).Error)
	assert.True(t, stored.Verified)
	assert.Equal(t, 1, stored.Attempts, "the winning attempt is charged too")

	// No unverified record remains for the pair
	err = svc.Verify(testPhone, code, models.OTPPurposeSignup)
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestVerifyMismatchChargesAttempt(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOTPService(db, testConfig())

	_, record, err := svc.Issue(testPhone, models.OTPPurposeSignin)
	require.NoError(t, err)

	err = svc.Verify(testPhone, "000000", models.OTPPurposeSignin)
	assert.ErrorIs(t, err, ErrOTPMismatch)

	var stored models.OTPVerification
	require.NoError(t, db.First(&stored, "id = ?", record.ID).Error)
	assert.Equal(t, 1, stored.Attempts)
	assert.False(t, stored.Verified)
}

func TestVerifyAttemptCap(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOTPService(db, testConfig())

	code, _, err := svc.Issue(testPhone, models.OTPPurposeSignin)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		err = svc.Verify(testPhone, "000000", models.OTPPurposeSignin)
		assert.ErrorIs(t, err, ErrOTPMismatch)
	}

	// Sixth try fails regardless of correctness
	err = svc.Verify(testPhone, code, models.OTPPurposeSignin)
	assert.ErrorIs(t, err, ErrOTPAttemptsExceeded)
}

func TestVerifyCorrectCodeAfterFourFailures(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOTPService(db, testConfig())

	code, _, err := svc.Issue(testPhone, models.OTPPurposeSignin)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.ErrorIs(t, svc.Verify(testPhone, "000000", models.OTPPurposeSignin), ErrOTPMismatch)
	}

	// Fifth total try, still within the cap
	assert.NoError(t, svc.Verify(testPhone, code, models.OTPPurposeSignin))
}

func TestVerifyExpired(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOTPService(db, testConfig())

	code, record, err := svc.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.OTPVerification{}).
		Where("id = ?", record.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err = svc.Verify(testPhone, code, models.OTPPurposeSignup)
	assert.ErrorIs(t, err, ErrOTPExpired)
}
