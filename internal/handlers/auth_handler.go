package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sokonihq/sokoni-backend/internal/config"
	"github.com/sokonihq/sokoni-backend/internal/dto"
	"github.com/sokonihq/sokoni-backend/internal/middleware"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"github.com/sokonihq/sokoni-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
	validate    *validator.Validate
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, validate: validate}
}

func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req dto.RequestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid phone number or purpose",
		})
	}

	result, err := h.authService.RequestOTP(req.PhoneNumber, models.OTPPurpose(req.Purpose))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to send OTP",
		})
	}

	resp := dto.OTPResponse{Success: true, Message: "OTP sent successfully"}
	if !h.cfg.IsProduction() {
		resp.OTP = result.Code
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signup payload",
		})
	}

	user, session, err := h.authService.Signup(req.Name, req.PhoneNumber, req.OTP, sessionMeta(c))
	if err != nil {
		if errors.Is(err, services.ErrPhoneTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if otpFailure(err) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		User:  dto.NewUserResponse(user),
		Token: session.Token,
	})
}

func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signin payload",
		})
	}

	user, session, err := h.authService.Signin(req.PhoneNumber, req.OTP, sessionMeta(c))
	if err != nil {
		if errors.Is(err, services.ErrAccountInactive) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrUserNotFound) || otpFailure(err) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to sign in",
		})
	}

	return c.JSON(dto.AuthResponse{
		User:  dto.NewUserResponse(user),
		Token: session.Token,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid profile payload",
		})
	}

	updated, err := h.authService.UpdateProfile(user.ID, &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update profile",
		})
	}
	return c.JSON(dto.NewUserResponse(updated))
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token := ""
	if len(header) > 7 {
		token = header[7:]
	}
	if err := h.authService.SignOut(token); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to sign out",
		})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Signed out successfully"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	if err := h.authService.DeleteAccount(user.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete account",
		})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Account deleted"})
}

func sessionMeta(c *fiber.Ctx) services.SessionMeta {
	return services.SessionMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

// otpFailure reports whether the error is one of the OTP verification
// failures surfaced to clients as business errors.
func otpFailure(err error) bool {
	return errors.Is(err, services.ErrOTPNotFound) ||
		errors.Is(err, services.ErrOTPExpired) ||
		errors.Is(err, services.ErrOTPAttemptsExceeded) ||
		errors.Is(err, services.ErrOTPMismatch)
}
