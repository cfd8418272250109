package repository

import (
	"context"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingOwner scopes a booking query or mutation to one side of the booking.
type BookingOwner struct {
	Role entity.Role
	ID   uuid.UUID
}

type BookingRepository interface {
	Create(ctx context.Context, db *gorm.DB, booking *entity.Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindByOwner(ctx context.Context, db *gorm.DB, owner BookingOwner) ([]entity.Booking, error)
	// TransitionStatus moves the booking to next only when it belongs to owner and its
	// current status is a legal source for next. It returns the number of rows changed.
	TransitionStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, owner BookingOwner, next entity.BookingStatus) (int64, error)
}
