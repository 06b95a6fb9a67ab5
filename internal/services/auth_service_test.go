package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sokonihq/sokoni-backend/internal/dto"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) (*AuthService, *OTPService) {
	cfg := testConfig()
	otp := NewOTPService(db, cfg)
	sms := NewSMSService(cfg)
	audit := NewAuditService(db)
	return NewAuthService(db, cfg, otp, sms, audit), otp
}

func TestSignupCreatesVerifiedBuyerWithSession(t *testing.T) {
	db := setupTestDB(t)
	svc, otp := newAuthService(db)

	code, _, err := otp.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)

	user, session, err := svc.Signup("Asha Mushi", testPhone, code, SessionMeta{IPAddress: "127.0.0.1", UserAgent: "go-test"})
	require.NoError(t, err)

	assert.Equal(t, models.RoleBuyer, user.Role)
	assert.True(t, user.PhoneVerified)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), session.ExpiresAt, time.Minute)

	resolved, err := svc.ValidateSession(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestSignupConflictCreatesNoSession(t *testing.T) {
	db := setupTestDB(t)
	svc, otp := newAuthService(db)

	require.NoError(t, db.Create(&models.User{
		ID:          uuid.New(),
		Name:        "Existing",
		PhoneNumber: testPhone,
		Role:        models.RoleBuyer,
		IsActive:    true,
	}).Error)

	code, _, err := otp.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)

	_, _, err = svc.Signup("Asha Mushi", testPhone, code, SessionMeta{})
	assert.ErrorIs(t, err, ErrPhoneTaken)

	var sessions int64
	db.Model(&models.Session{}).Count(&sessions)
	assert.Equal(t, int64(0), sessions)
}

func TestSigninUnknownPhone(t *testing.T) {
	db := setupTestDB(t)
	svc, otp := newAuthService(db)

	code, _, err := otp.Issue(testPhone, models.OTPPurposeSignin)
	require.NoError(t, err)

	_, _, err = svc.Signin(testPhone, code, SessionMeta{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSigninInactiveAccount(t *testing.T) {
	db := setupTestDB(t)
	svc, otp := newAuthService(db)

	require.NoError(t, db.Create(&models.User{
		ID:          uuid.New(),
		Name:        "Dormant",
		PhoneNumber: testPhone,
		Role:        models.RoleBuyer,
		IsActive:    false,
	}).Error)

	code, _, err := otp.Issue(testPhone, models.OTPPurposeSignin)
	require.NoError(t, err)

	_, _, err = svc.Signin(testPhone, code, SessionMeta{})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestValidateSessionExpiredAndDeactivated(t *testing.T) {
	db := setupTestDB(t)
	svc, otp := newAuthService(db)

	code, _, err := otp.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)
	user, session, err := svc.Signup("Asha Mushi", testPhone, code, SessionMeta{})
	require.NoError(t, err)

	// Expired session is rejected even though the row exists
	require.NoError(t, db.Model(&models.Session{}).
		Where("id = ?", session.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)
	_, err = svc.ValidateSession(session.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	// Deactivation invalidates every session on next validation
	fresh, err := svc.IssueSession(user, SessionMeta{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.ValidateSession(fresh.Token)
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestSignOutRevokesSession(t *testing.T) {
	db := setupTestDB(t)
	svc, otp := newAuthService(db)

	code, _, err := otp.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)
	_, session, err := svc.Signup("Asha Mushi", testPhone, code, SessionMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(session.Token))

	_, err = svc.ValidateSession(session.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestUpdateProfileEmailResetsVerification(t *testing.T) {
	db := setupTestDB(t)
	svc, otp := newAuthService(db)

	code, _, err := otp.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)
	user, _, err := svc.Signup("Asha Mushi", testPhone, code, SessionMeta{})
	require.NoError(t, err)

	// Pretend a previous flow verified some email
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("email_verified", true).Error)

	email := "asha@example.com"
	updated, err := svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{Email: &email})
	require.NoError(t, err)
	require.NotNil(t, updated.Email)
	assert.Equal(t, email, *updated.Email)
	assert.False(t, updated.EmailVerified, "new email starts unverified")
}

func TestUpdateRoleIsAudited(t *testing.T) {
	db := setupTestDB(t)
	svc, otp := newAuthService(db)

	code, _, err := otp.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)
	user, _, err := svc.Signup("Asha Mushi", testPhone, code, SessionMeta{})
	require.NoError(t, err)

	admin := uuid.New()
	updated, err := svc.UpdateRole(admin, user.ID, models.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, updated.Role)

	var events int64
	db.Model(&models.AuditEvent{}).Where("action = ?", "user.role_changed").Count(&events)
	assert.Equal(t, int64(1), events)
}

func TestDeleteAccountRemovesSessions(t *testing.T) {
	db := setupTestDB(t)
	svc, otp := newAuthService(db)

	code, _, err := otp.Issue(testPhone, models.OTPPurposeSignup)
	require.NoError(t, err)
	user, _, err := svc.Signup("Asha Mushi", testPhone, code, SessionMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(user.ID))

	var users, sessions int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Session{}).Count(&sessions)
	assert.Equal(t, int64(0), users)
	assert.Equal(t, int64(0), sessions)
}
