package dto

import (
	"github.com/google/uuid"
	"github.com/sokonihq/sokoni-backend/internal/models"
)

type RequestOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	Purpose     string `json:"purpose" validate:"required,oneof=signup signin phone_verification"`
}

type SignupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
}

type SigninRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Image *string `json:"image" validate:"omitempty,url"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=buyer seller admin"`
}

type OTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// OTP is only populated outside production for local inspection.
	OTP string `json:"otp,omitempty"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type UserResponse struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	PhoneNumber   string      `json:"phone_number"`
	PhoneVerified bool        `json:"phone_verified"`
	Email         *string     `json:"email,omitempty"`
	EmailVerified bool        `json:"email_verified"`
	Image         string      `json:"image,omitempty"`
	Role          models.Role `json:"role"`
	IsActive      bool        `json:"is_active"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		PhoneNumber:   u.PhoneNumber,
		PhoneVerified: u.PhoneVerified,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Image:         u.Image,
		Role:          u.Role,
		IsActive:      u.IsActive,
	}
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}
