package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sokonihq/sokoni-backend/internal/config"
)

// SMSResult describes a delivery attempt. Delivery is best-effort: a
// provider error or missing credentials yields a fallback result, never an
// error, so account creation is never blocked on SMS. The code is carried in
// the result for local/test observability.
type SMSResult struct {
	Delivered bool   `json:"delivered"`
	DevMode   bool   `json:"dev_mode"`
	Fallback  bool   `json:"fallback"`
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"-"`
	Message   string `json:"message"`
}

// SMSService delivers OTP codes through the Beem Africa SMS API.
type SMSService struct {
	httpClient *http.Client
	cfg        *config.Config
}

func NewSMSService(cfg *config.Config) *SMSService {
	return &SMSService{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cfg:        cfg,
	}
}

type beemRecipient struct {
	RecipientID string `json:"recipient_id"`
	DestAddr    string `json:"dest_addr"`
}

type beemPayload struct {
	SourceAddr   string          `json:"source_addr"`
	Encoding     int             `json:"encoding"`
	ScheduleTime string          `json:"schedule_time"`
	Message      string          `json:"message"`
	Recipients   []beemRecipient `json:"recipients"`
}

type beemResponse struct {
	Successful bool   `json:"successful"`
	RequestID  int64  `json:"request_id"`
	Message    string `json:"message"`
}

// NormalizePhone converts a national number to the canonical international
// form the provider expects: leading "+" stripped, leading trunk "0"
// replaced with the country code.
func (s *SMSService) NormalizePhone(phoneNumber string) string {
	p := strings.ReplaceAll(phoneNumber, " ", "")
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "0") {
		p = s.cfg.SMSCountryCode + p[1:]
	}
	return p
}

// SendOTP delivers the code to the phone number. It never returns an error.
func (s *SMSService) SendOTP(phoneNumber, code string) *SMSResult {
	if s.cfg.BeemAPIKey == "" || s.cfg.BeemSecretKey == "" {
		slog.Warn("beem credentials not configured, OTP not sent", "phone", phoneNumber)
		return &SMSResult{
			Delivered: false,
			DevMode:   true,
			Code:      code,
			Message:   "OTP logged only (SMS credentials not configured)",
		}
	}

	payload := beemPayload{
		SourceAddr:   s.cfg.BeemSourceAddr,
		Encoding:     0,
		ScheduleTime: "",
		Message:      fmt.Sprintf("Your verification code is: %s. Valid for %d minutes. Do not share this code with anyone.", code, int(s.cfg.OTPExpiry.Minutes())),
		Recipients: []beemRecipient{
			{RecipientID: "1", DestAddr: s.NormalizePhone(phoneNumber)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return s.fallback(phoneNumber, code, err)
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.BeemAPIURL, bytes.NewBuffer(body))
	if err != nil {
		return s.fallback(phoneNumber, code, err)
	}
	req.Header.Set("Content-Type", "application/json")
	auth := base64.StdEncoding.EncodeToString([]byte(s.cfg.BeemAPIKey + ":" + s.cfg.BeemSecretKey))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return s.fallback(phoneNumber, code, err)
	}
	defer resp.Body.Close()

	var result beemResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return s.fallback(phoneNumber, code, err)
	}
	if resp.StatusCode >= 400 || !result.Successful {
		return s.fallback(phoneNumber, code, fmt.Errorf("beem returned status %d: %s", resp.StatusCode, result.Message))
	}

	slog.Info("OTP sent via SMS", "phone", phoneNumber, "request_id", result.RequestID)
	return &SMSResult{
		Delivered: true,
		RequestID: fmt.Sprintf("%d", result.RequestID),
		Code:      code,
		Message:   "OTP sent successfully",
	}
}

func (s *SMSService) fallback(phoneNumber, code string, err error) *SMSResult {
	slog.Error("SMS delivery failed, falling back", "phone", phoneNumber, "error", err)
	return &SMSResult{
		Delivered: false,
		Fallback:  true,
		Code:      code,
		Message:   "SMS sending failed - OTP available for fallback delivery",
	}
}
