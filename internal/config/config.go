package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Sessions
	SessionTTL time.Duration

	// OTP policy
	OTPExpiry      time.Duration
	OTPMaxAttempts int
	PhonePattern   string

	// Beem Africa SMS gateway
	BeemAPIKey     string
	BeemSecretKey  string
	BeemSourceAddr string
	BeemAPIURL     string
	SMSCountryCode string

	// Server
	AppEnv      string
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "sokoni_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SessionTTL: parseDuration(getEnv("SESSION_TTL", "168h"), 168*time.Hour),

		OTPExpiry:      parseDuration(getEnv("OTP_EXPIRY", "10m"), 10*time.Minute),
		OTPMaxAttempts: parseInt(getEnv("OTP_MAX_ATTEMPTS", "5"), 5),
		// Tanzania: +255 or leading 0, then 6 or 7 and eight more digits
		PhonePattern: getEnv("PHONE_PATTERN", `^(\+255|0)[67]\d{8}$`),

		BeemAPIKey:     getEnv("BEEM_API_KEY", ""),
		BeemSecretKey:  getEnv("BEEM_SECRET_KEY", ""),
		BeemSourceAddr: getEnv("BEEM_SOURCE_ADDR", "INFO"),
		BeemAPIURL:     getEnv("BEEM_API_URL", "https://apisms.beem.africa/v1/send"),
		SMSCountryCode: getEnv("SMS_COUNTRY_CODE", "255"),

		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// IsProduction reports whether the server runs in production mode. Plaintext
// OTP codes are only echoed in API responses outside production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
