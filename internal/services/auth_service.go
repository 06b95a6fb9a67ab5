package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sokonihq/sokoni-backend/internal/config"
	"github.com/sokonihq/sokoni-backend/internal/dto"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPhoneTaken      = errors.New("user with this phone number already exists")
	ErrEmailTaken      = errors.New("email already in use")
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountInactive = errors.New("account is inactive")
	ErrSessionInvalid  = errors.New("invalid or expired session")
)

// SessionMeta carries per-request creation metadata stored on new sessions.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	otp   *OTPService
	sms   *SMSService
	audit *AuditService
}

func NewAuthService(db *gorm.DB, cfg *config.Config, otp *OTPService, sms *SMSService, audit *AuditService) *AuthService {
	return &AuthService{db: db, cfg: cfg, otp: otp, sms: sms, audit: audit}
}

// RequestOTP issues a fresh code for the pair and hands it to the SMS
// gateway. Delivery is best-effort and never fails the call.
func (s *AuthService) RequestOTP(phoneNumber string, purpose models.OTPPurpose) (*SMSResult, error) {
	code, _, err := s.otp.Issue(phoneNumber, purpose)
	if err != nil {
		return nil, err
	}
	return s.sms.SendOTP(phoneNumber, code), nil
}

// Signup verifies the signup OTP, creates the user with a verified phone and
// the buyer role, then issues a session in the same call (auto-login).
func (s *AuthService) Signup(name, phoneNumber, code string, meta SessionMeta) (*models.User, *models.Session, error) {
	if err := s.otp.Verify(phoneNumber, code, models.OTPPurposeSignup); err != nil {
		return nil, nil, err
	}

	var existing models.User
	if err := s.db.Where("phone_number = ?", phoneNumber).First(&existing).Error; err == nil {
		return nil, nil, ErrPhoneTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user := models.User{
		ID:            uuid.New(),
		Name:          name,
		PhoneNumber:   phoneNumber,
		PhoneVerified: true,
		Role:          models.RoleBuyer,
		IsActive:      true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.IssueSession(&user, meta)
	if err != nil {
		return nil, nil, err
	}

	s.audit.Record(&user.ID, "user.signup", "user", user.ID.String(), map[string]string{"phone_number": phoneNumber})
	return &user, session, nil
}

// Signin verifies the signin OTP and issues a session for the active user
// owning the phone number.
func (s *AuthService) Signin(phoneNumber, code string, meta SessionMeta) (*models.User, *models.Session, error) {
	if err := s.otp.Verify(phoneNumber, code, models.OTPPurposeSignin); err != nil {
		return nil, nil, err
	}

	var user models.User
	err := s.db.Where("phone_number = ?", phoneNumber).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}

	session, err := s.IssueSession(&user, meta)
	if err != nil {
		return nil, nil, err
	}
	return &user, session, nil
}

// IssueSession creates an opaque unguessable bearer token with the
// configured TTL.
func (s *AuthService) IssueSession(user *models.User, meta SessionMeta) (*models.Session, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     base64.URLEncoding.EncodeToString(raw),
		ExpiresAt: time.Now().Add(s.cfg.SessionTTL),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &session, nil
}

// ValidateSession resolves a bearer token to its owning user. It fails with
// ErrSessionInvalid when the token is unknown or expired and with
// ErrAccountInactive when the user has been deactivated; deactivation
// invalidates all of a user's sessions on their next validation.
func (s *AuthService) ValidateSession(token string) (*models.User, error) {
	var session models.Session
	err := s.db.Preload("User").
		Where("token = ? AND expires_at > ?", token, time.Now()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if !session.User.IsActive {
		return nil, ErrAccountInactive
	}
	return &session.User, nil
}

// SignOut revokes the presenting session.
func (s *AuthService) SignOut(token string) error {
	return s.db.Where("token = ?", token).Delete(&models.Session{}).Error
}

func (s *AuthService) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies a partial update of name/email/image. Setting an
// email forces emailVerified back to false until a separate flow confirms
// it.
func (s *AuthService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Image != nil {
		user.Image = *req.Image
	}
	if req.Email != nil {
		var existing models.User
		err := s.db.Where("email = ? AND id <> ?", *req.Email, userID).First(&existing).Error
		if err == nil {
			return nil, ErrEmailTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		user.Email = req.Email
		user.EmailVerified = false
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateRole changes a user's role. Admin-only at the route layer; the
// change is audited.
func (s *AuthService) UpdateRole(actorID, userID uuid.UUID, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	previous := user.Role
	user.Role = role
	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.audit.Record(&actorID, "user.role_changed", "user", userID.String(), map[string]string{
		"from": string(previous),
		"to":   string(role),
	})
	return user, nil
}

// DeleteAccount hard-deletes a user and their sessions. Normal flows
// soft-deactivate via IsActive instead.
func (s *AuthService) DeleteAccount(userID uuid.UUID) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	slog.Info("account deleted", "user_id", userID.String())
	return nil
}
