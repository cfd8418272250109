package dto

import "github.com/google/uuid"

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,personname"`
	Phone string `json:"phone" validate:"omitempty,phone10"`
}

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	UpdatedAt int64     `json:"updated_at"`
}
