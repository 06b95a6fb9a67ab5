package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sokonihq/sokoni-backend/internal/dto"
	"github.com/sokonihq/sokoni-backend/internal/middleware"
	"github.com/sokonihq/sokoni-backend/internal/services"
)

type SellerHandler struct {
	sellerService *services.SellerService
	validate      *validator.Validate
}

func NewSellerHandler(sellerService *services.SellerService, validate *validator.Validate) *SellerHandler {
	return &SellerHandler{sellerService: sellerService, validate: validate}
}

func (h *SellerHandler) Submit(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateSellerRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid seller request payload",
		})
	}

	request, err := h.sellerService.Submit(user.ID, &req)
	if err != nil {
		return sellerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

func (h *SellerHandler) MyRequests(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	requests, err := h.sellerService.ListByUser(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list seller requests",
		})
	}
	return c.JSON(requests)
}

func (h *SellerHandler) Resubmit(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
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

	var req dto.CreateSellerRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid seller request payload",
		})
	}

	request, err := h.sellerService.Resubmit(user.ID, requestID, &req)
	if err != nil {
		return sellerError(c, err)
	}
	return c.JSON(request)
}

func sellerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrTINTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNoDocuments), errors.Is(err, services.ErrTermsNotAgreed),
		errors.Is(err, services.ErrReasonRequired), errors.Is(err, services.ErrUnknownReviewAction):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrRequestNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotRequestOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
