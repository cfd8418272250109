package converter

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/service"
	"go-medical-booking/pkg/validator"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	return &dto.BookingResponse{
		ID:         booking.ID,
		UserID:     booking.UserID,
		DoctorID:   booking.DoctorID,
		DoctorName: booking.DoctorName,
		Date:       booking.Date.Format(validator.DateLayout),
		Time:       booking.Time,
		Status:     string(booking.Status),
		CreatedAt:  booking.CreatedAt,
		UpdatedAt:  booking.UpdatedAt,
	}
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}

func BookingsToListResponse(bookings []entity.Booking) *dto.BookingListResponse {
	return &dto.BookingListResponse{
		Bookings: BookingsToResponses(bookings),
		Total:    len(bookings),
	}
}

func PaymentSheetToResponse(sheet *service.PaymentSheet) *dto.PaymentSheetResponse {
	if sheet == nil {
		return nil
	}

	return &dto.PaymentSheetResponse{
		PaymentIntent:  sheet.PaymentIntent,
		EphemeralKey:   sheet.EphemeralKey,
		Customer:       sheet.Customer,
		PublishableKey: sheet.PublishableKey,
		Amount:         sheet.Amount,
	}
}
