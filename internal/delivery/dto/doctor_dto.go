package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// UpdateDoctorProfileRequest only touches the fields that are present.
type UpdateDoctorProfileRequest struct {
	About      *string `json:"about" validate:"omitempty,max=2000"`
	Fees       *string `json:"fees" validate:"omitempty"`
	Experience *int    `json:"experience" validate:"omitempty,gte=0,lte=80"`
}

// Response DTOs

type DoctorResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Specialty  string          `json:"specialty"`
	Rating     float64         `json:"rating"`
	Reviews    int             `json:"reviews"`
	About      string          `json:"about"`
	Experience int             `json:"experience"`
	Fees       decimal.Decimal `json:"fees"`
	CreatedAt  int64           `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
