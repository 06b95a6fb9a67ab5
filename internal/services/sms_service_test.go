package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	svc := NewSMSService(testConfig())

	assert.Equal(t, "255712345678", svc.NormalizePhone("+255712345678"))
	assert.Equal(t, "255712345678", svc.NormalizePhone("0712345678"))
	assert.Equal(t, "255712345678", svc.NormalizePhone("0712 345 678"))
}

func TestSendOTPWithoutCredentials(t *testing.T) {
	svc := NewSMSService(testConfig())

	result := svc.SendOTP("+255712345678", "123456")
	assert.False(t, result.Delivered)
	assert.True(t, result.DevMode)
	assert.Equal(t, "123456", result.Code, "code stays observable in dev mode")
}

func TestSendOTPProviderErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"successful":false,"message":"provider down"}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.BeemAPIKey = "key"
	cfg.BeemSecretKey = "secret"
	cfg.BeemAPIURL = server.URL
	svc := NewSMSService(cfg)

	result := svc.SendOTP("+255712345678", "123456")
	assert.False(t, result.Delivered)
	assert.True(t, result.Fallback)
	assert.Equal(t, "123456", result.Code)
}

func TestSendOTPSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"successful":true,"request_id":42,"message":"queued"}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.BeemAPIKey = "key"
	cfg.BeemSecretKey = "secret"
	cfg.BeemAPIURL = server.URL
	svc := NewSMSService(cfg)

	result := svc.SendOTP("0712345678", "123456")
	assert.True(t, result.Delivered)
	assert.Equal(t, "42", result.RequestID)
}
