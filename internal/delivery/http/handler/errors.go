package handler

import (
	"errors"
	"net/http"

	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/response"
)

// writeError maps usecase errors to responses. Anything unrecognised is a 500 with fallback.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		response.ValidationError(w, validationErr.Fields())
		return
	}

	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "")
	case errors.Is(err, usecase.ErrNotADoctor):
		response.Forbidden(w, "Only doctors can access this resource")
	case errors.Is(err, usecase.ErrNotAPatient):
		response.Forbidden(w, "Only patients can access this resource")
	case errors.Is(err, usecase.ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrProfileNotFound):
		response.NotFound(w, "Profile not found")
	case errors.Is(err, usecase.ErrCancelNotConfirmed):
		response.BadRequest(w, usecase.CancelPrompt)
	case errors.Is(err, usecase.ErrSelfBooking):
		response.BadRequest(w, "You cannot book an appointment with yourself")
	case errors.Is(err, usecase.ErrInvalidStatus):
		response.BadRequest(w, "Status must be confirmed or cancelled")
	case errors.Is(err, usecase.ErrInvalidTransition):
		response.Conflict(w, "Booking cannot move to the requested status")
	case errors.Is(err, usecase.ErrPaymentFailed):
		response.InternalServerError(w, "Payment could not be prepared")
	default:
		response.InternalServerError(w, fallback)
	}
}

// writeAuthError shows auth failures with the message the user is meant to read.
func writeAuthError(w http.ResponseWriter, err error) {
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		response.ValidationError(w, validationErr.Fields())
		return
	}

	message := usecase.AuthErrorMessage(err)
	switch {
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		response.Conflict(w, message)
	case errors.Is(err, usecase.ErrWeakPassword):
		response.BadRequest(w, message)
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrAccountNotFound),
		errors.Is(err, usecase.ErrNotADoctor),
		errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenRevoked),
		errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, message)
	default:
		response.InternalServerError(w, message)
	}
}
