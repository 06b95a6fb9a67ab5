package services

import (
	"testing"
	"time"

	"github.com/sokonihq/sokoni-backend/internal/config"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.OTPVerification{},
		&models.SellerRequest{},
		&models.SellerRequestDocument{},
		&models.AuditEvent{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SessionTTL:     168 * time.Hour,
		OTPExpiry:      10 * time.Minute,
		OTPMaxAttempts: 5,
		PhonePattern:   `^(\+255|0)[67]\d{8}$`,
		SMSCountryCode: "255",
		AppEnv:         "test",
	}
}
