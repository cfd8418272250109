package repository

import (
	"context"
	"errors"
	"time"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errUnknownBookingOwner = errors.New("unknown booking owner role")

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(ctx context.Context, db *gorm.DB, booking *entity.Booking) error {
	return db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindByOwner filters on one equality column only and sorts the result in memory.
func (r *bookingRepository) FindByOwner(ctx context.Context, db *gorm.DB, owner domainRepo.BookingOwner) ([]entity.Booking, error) {
	column, err := ownerColumn(owner)
	if err != nil {
		return nil, err
	}

	var bookings []entity.Booking
	err = db.WithContext(ctx).
		Where(column+" = ?", owner.ID).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	entity.SortBookingsNewestFirst(bookings)
	return bookings, nil
}

// TransitionStatus is a conditional update: it only touches a row owned by owner whose
// current status may legally move to next. 0 affected rows means the guard rejected it.
func (r *bookingRepository) TransitionStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, owner domainRepo.BookingOwner, next entity.BookingStatus) (int64, error) {
	column, err := ownerColumn(owner)
	if err != nil {
		return 0, err
	}

	sources := entity.TransitionSources(next)
	if len(sources) == 0 {
		return 0, nil
	}

	result := db.WithContext(ctx).Model(&entity.Booking{}).
		Where("id = ? AND "+column+" = ? AND status IN ?", id, owner.ID, sources).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": time.Now().UnixMilli(),
		})
	return result.RowsAffected, result.Error
}

func ownerColumn(owner domainRepo.BookingOwner) (string, error) {
	switch owner.Role {
	case entity.RolePatient:
		return "user_id", nil
	case entity.RoleDoctor:
		return "doctor_id", nil
	default:
		return "", errUnknownBookingOwner
	}
}
