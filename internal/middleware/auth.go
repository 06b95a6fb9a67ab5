package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sokonihq/sokoni-backend/internal/dto"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"github.com/sokonihq/sokoni-backend/internal/services"
)

const currentUserKey = "currentUser"

// Protected resolves the bearer token to an authenticated user and attaches
// it to the request context. 401 for a missing/invalid/expired session, 403
// for a deactivated account.
func Protected(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Missing or invalid authorization header",
			})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		user, err := auth.ValidateSession(token)
		if err != nil {
			if errors.Is(err, services.ErrAccountInactive) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Message: "Account is inactive",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired session",
			})
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// RequireRole enforces a role whitelist. Must run after Protected.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Insufficient permissions",
		})
	}
}

// RequirePhoneVerified enforces the phone-verified flag. Must run after
// Protected.
func RequirePhoneVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if !user.PhoneVerified {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Phone number not verified",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the identity attached by Protected.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(currentUserKey).(*models.User)
	if !ok || user == nil {
		return nil, errors.New("no authenticated user in context")
	}
	return user, nil
}
