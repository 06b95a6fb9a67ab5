package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sokonihq/sokoni-backend/internal/dto"
	"github.com/sokonihq/sokoni-backend/internal/middleware"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"github.com/sokonihq/sokoni-backend/internal/services"
)

type AdminHandler struct {
	sellerService *services.SellerService
	authService   *services.AuthService
	validate      *validator.Validate
}

func NewAdminHandler(sellerService *services.SellerService, authService *services.AuthService, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{sellerService: sellerService, authService: authService, validate: validate}
}

func (h *AdminHandler) ListSellerRequests(c *fiber.Ctx) error {
	status := models.SellerRequestStatus(c.Query("status"))
	requests, err := h.sellerService.ListByStatus(status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list seller requests",
		})
	}
	return c.JSON(requests)
}

func (h *AdminHandler) ReviewSellerRequest(c *fiber.Ctx) error {
	reviewer, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request id",
		})
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid review payload",
		})
	}

	request, err := h.sellerService.Review(reviewer.ID, requestID, req.Action, req.Reason)
	if err != nil {
		return sellerError(c, err)
	}
	return c.JSON(request)
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid role",
		})
	}

	user, err := h.authService.UpdateRole(actor.ID, userID, models.Role(req.Role))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update role",
		})
	}
	return c.JSON(dto.NewUserResponse(user))
}
