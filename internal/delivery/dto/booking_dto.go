package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// Missing selections are left to the booking usecase, which reports them per field.

type CheckoutPreviewRequest struct {
	DoctorID string `json:"doctor_id" validate:"omitempty,uuid"`
	Date     string `json:"date" validate:"omitempty,isodate"`
	Time     string `json:"time" validate:"omitempty,slot"`
}

type CreateBookingRequest struct {
	DoctorID string `json:"doctor_id" validate:"omitempty,uuid"`
	Date     string `json:"date" validate:"omitempty,isodate"`
	Time     string `json:"time" validate:"omitempty,slot"`
}

type CancelBookingRequest struct {
	Confirm bool `json:"confirm"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
}

// Response DTOs

type BookingOptionsResponse struct {
	Dates     []string `json:"dates"`
	TimeSlots []string `json:"time_slots"`
}

type CheckoutSummaryResponse struct {
	DoctorID        uuid.UUID       `json:"doctor_id"`
	DoctorName      string          `json:"doctor_name"`
	Specialty       string          `json:"specialty"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	Total           decimal.Decimal `json:"total"`
}

type PaymentSheetResponse struct {
	PaymentIntent  string          `json:"payment_intent"`
	EphemeralKey   string          `json:"ephemeral_key"`
	Customer       string          `json:"customer"`
	PublishableKey string          `json:"publishable_key"`
	Amount         decimal.Decimal `json:"amount"`
}

type BookingResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	DoctorID   uuid.UUID `json:"doctor_id"`
	DoctorName string    `json:"doctor_name"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Status     string    `json:"status"`
	CreatedAt  int64     `json:"created_at"`
	UpdatedAt  int64     `json:"updated_at"`
}

type CreateBookingResponse struct {
	Booking BookingResponse       `json:"booking"`
	Payment *PaymentSheetResponse `json:"payment,omitempty"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
