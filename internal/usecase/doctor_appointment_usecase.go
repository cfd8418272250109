package usecase

import (
	"context"
	"errors"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/observability/metrics"
	"go-medical-booking/internal/realtime"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidStatus = errors.New("status must be confirmed or cancelled")

type DoctorAppointmentUsecase interface {
	GetAppointments(ctx context.Context) (*dto.BookingListResponse, error)
	UpdateAppointmentStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) (*dto.BookingResponse, error)
	SubscribeAppointments(ctx context.Context, sink realtime.Sink[*dto.BookingListResponse]) (*realtime.Subscription, error)
}

type doctorAppointmentUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	auditService service.AuditService
	broker       realtime.Broker
	notifier     *realtime.Notifier
	metrics      *metrics.BookingMetrics
}

func NewDoctorAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	auditService service.AuditService,
	broker realtime.Broker,
	notifier *realtime.Notifier,
	metrics *metrics.BookingMetrics,
) DoctorAppointmentUsecase {
	return &doctorAppointmentUsecase{
		db:           db,
		log:          log,
		bookingRepo:  bookingRepo,
		auditService: auditService,
		broker:       broker,
		notifier:     notifier,
		metrics:      metrics,
	}
}

// GetAppointments returns the bookings made with the logged-in doctor, newest first
func (u *doctorAppointmentUsecase) GetAppointments(ctx context.Context) (*dto.BookingListResponse, error) {
	sess, err := doctorSession(ctx)
	if err != nil {
		return nil, err
	}

	bookings, err := u.bookingRepo.FindByOwner(ctx, u.db, doctorOwner(sess.UserID))
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", sess.UserID, err)
		return nil, err
	}

	return converter.BookingsToListResponse(bookings), nil
}

// UpdateAppointmentStatus accepts or rejects a booking. The ownership and transition checks
// are part of the update itself, so a booking of another doctor or a cancelled booking is
// never written, whatever the client showed. Once the update lands nothing else is read.
func (u *doctorAppointmentUsecase) UpdateAppointmentStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) (*dto.BookingResponse, error) {
	sess, err := doctorSession(ctx)
	if err != nil {
		return nil, err
	}

	if status != entity.BookingStatusConfirmed && status != entity.BookingStatusCancelled {
		return nil, ErrInvalidStatus
	}

	actor := string(entity.RoleDoctor)
	booking, err := u.bookingRepo.FindByID(ctx, u.db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil || booking.DoctorID != sess.UserID {
		u.metrics.ObserveTransition(actor, string(status), "not_found")
		return nil, ErrBookingNotFound
	}

	affected, err := u.bookingRepo.TransitionStatus(ctx, u.db, bookingID, doctorOwner(sess.UserID), status)
	if err != nil {
		u.log.Warnf("Failed to update booking %s to %s: %+v", bookingID, status, err)
		u.metrics.ObserveTransition(actor, string(status), "error")
		return nil, err
	}

	if affected == 0 {
		current, err := u.bookingRepo.FindByID(ctx, u.db, bookingID)
		if err != nil {
			u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
			return nil, err
		}
		if current == nil {
			return nil, ErrBookingNotFound
		}
		if current.Status == status {
			return converter.BookingToResponse(current), nil
		}
		u.metrics.ObserveTransition(actor, string(status), "rejected")
		return nil, ErrInvalidTransition
	}

	// Committed: owners never change, so the earlier read is enough to notify both sides.
	booking.Status = status

	action := entity.AuditActionBookingConfirm
	if status == entity.BookingStatusCancelled {
		action = entity.AuditActionBookingCancel
	}

	u.notifier.BookingChanged(ctx, booking)
	_ = u.auditService.LogUpdate(ctx, &sess.UserID, action, "booking", booking.ID.String(),
		nil, map[string]interface{}{"status": booking.Status})
	u.metrics.ObserveTransition(actor, string(status), "success")

	return converter.BookingToResponse(booking), nil
}

// SubscribeAppointments opens a snapshot stream of the doctor's bookings.
func (u *doctorAppointmentUsecase) SubscribeAppointments(ctx context.Context, sink realtime.Sink[*dto.BookingListResponse]) (*realtime.Subscription, error) {
	sess, err := doctorSession(ctx)
	if err != nil {
		return nil, err
	}

	owner := doctorOwner(sess.UserID)
	fetch := func(ctx context.Context) (*dto.BookingListResponse, error) {
		bookings, err := u.bookingRepo.FindByOwner(ctx, u.db, owner)
		if err != nil {
			u.log.Warnf("Failed to refresh appointments for doctor %s: %+v", sess.UserID, err)
			return nil, err
		}
		return converter.BookingsToListResponse(bookings), nil
	}

	return realtime.Open(ctx, u.broker, realtime.DoctorBookingsTopic(sess.UserID), fetch, sink), nil
}
