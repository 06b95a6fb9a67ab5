package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sokonihq/sokoni-backend/internal/config"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"github.com/sokonihq/sokoni-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupGate(t *testing.T) (*fiber.App, *gorm.DB, *services.AuthService) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}, &models.OTPVerification{}, &models.AuditEvent{}))

	cfg := &config.Config{SessionTTL: time.Hour, OTPExpiry: 10 * time.Minute, OTPMaxAttempts: 5}
	otp := services.NewOTPService(db, cfg)
	sms := services.NewSMSService(cfg)
	audit := services.NewAuditService(db)
	auth := services.NewAuthService(db, cfg, otp, sms, audit)

	app := fiber.New()
	app.Get("/protected", Protected(auth), func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": user.ID})
	})
	app.Get("/admin", Protected(auth), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/verified", Protected(auth), RequirePhoneVerified(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, db, auth
}

func createUserWithSession(t *testing.T, db *gorm.DB, auth *services.AuthService, role models.Role, phoneVerified, active bool) (*models.User, string) {
	t.Helper()
	user := &models.User{
		ID:            uuid.New(),
		Name:          "Test User",
		PhoneNumber:   "+2557" + uuid.NewString()[:8],
		PhoneVerified: phoneVerified,
		Role:          role,
		IsActive:      true,
	}
	require.NoError(t, db.Create(user).Error)
	session, err := auth.IssueSession(user, services.SessionMeta{})
	require.NoError(t, err)
	if !active {
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	}
	return user, session.Token
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestProtectedMissingOrMalformedHeader(t *testing.T) {
	app, _, _ := setupGate(t)

	resp := doRequest(t, app, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, "/protected", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedUnknownToken(t *testing.T) {
	app, _, _ := setupGate(t)

	resp := doRequest(t, app, "/protected", "Bearer not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedExpiredSession(t *testing.T) {
	app, db, auth := setupGate(t)
	_, token := createUserWithSession(t, db, auth, models.RoleBuyer, true, true)

	require.NoError(t, db.Model(&models.Session{}).
		Where("token = ?", token).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	resp := doRequest(t, app, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedInactiveAccount(t *testing.T) {
	app, db, auth := setupGate(t)
	_, token := createUserWithSession(t, db, auth, models.RoleBuyer, true, false)

	resp := doRequest(t, app, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProtectedValidSession(t *testing.T) {
	app, db, auth := setupGate(t)
	_, token := createUserWithSession(t, db, auth, models.RoleBuyer, true, true)

	resp := doRequest(t, app, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app, db, auth := setupGate(t)

	_, buyerToken := createUserWithSession(t, db, auth, models.RoleBuyer, true, true)
	resp := doRequest(t, app, "/admin", "Bearer "+buyerToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, adminToken := createUserWithSession(t, db, auth, models.RoleAdmin, true, true)
	resp = doRequest(t, app, "/admin", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequirePhoneVerified(t *testing.T) {
	app, db, auth := setupGate(t)

	_, unverifiedToken := createUserWithSession(t, db, auth, models.RoleBuyer, false, true)
	resp := doRequest(t, app, "/verified", "Bearer "+unverifiedToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, verifiedToken := createUserWithSession(t, db, auth, models.RoleBuyer, true, true)
	resp = doRequest(t, app, "/verified", "Bearer "+verifiedToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
