package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,personname"`
	Email    string `json:"email" validate:"required,emailshape"`
	Phone    string `json:"phone" validate:"required,phone10"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterDoctorRequest struct {
	Name      string `json:"name" validate:"required,personname"`
	Email     string `json:"email" validate:"required,emailshape"`
	Specialty string `json:"specialty" validate:"required,max=100"`
	License   string `json:"license" validate:"required,license"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,emailshape"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"omitempty"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in"`
	Session      *SessionResponse `json:"session"`
}

// SessionResponse tells the client which root screens to show.
type SessionResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsDoctor  bool      `json:"is_doctor"`
	RootStack string    `json:"root_stack"`
}

type UserResponse struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	PasswordStrength string    `json:"password_strength,omitempty"`
	CreatedAt        int64     `json:"created_at"`
}
