package dto

import (
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/pkg/validator"
)

// NewValidator returns the request validator with the booking tags bound to the domain rules.
func NewValidator() *validator.CustomValidator {
	return validator.NewValidator(
		validator.WithRule("slot", entity.IsValidTimeSlot),
	)
}
