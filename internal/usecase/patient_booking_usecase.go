package usecase

import (
	"context"
	"errors"
	"time"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/observability/metrics"
	"go-medical-booking/internal/realtime"
	"go-medical-booking/internal/service"
	"go-medical-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CancelPrompt is the question a patient must answer before a cancellation is issued.
const CancelPrompt = "Are you sure you want to cancel this appointment?"

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrDoctorNotFound     = errors.New("doctor not found")
	ErrSelfBooking        = errors.New("doctors cannot book an appointment with themselves")
	ErrCancelNotConfirmed = errors.New(CancelPrompt)
	ErrInvalidTransition  = errors.New("booking cannot move to the requested status")
	ErrPaymentFailed      = errors.New("payment could not be prepared")

	ErrDateRequired    = invalidField("date", "Please select a date")
	ErrInvalidDate     = invalidField("date", "Date must be in YYYY-MM-DD format")
	ErrDatePast        = invalidField("date", "Please select a valid future date")
	ErrSlotRequired    = invalidField("time", "Please select a time slot")
	ErrInvalidSlot     = invalidField("time", "Please select one of the available time slots")
	ErrInvalidDoctorID = invalidField("doctor_id", "Please select a doctor")
)

type PatientBookingUsecase interface {
	BookingOptions(ctx context.Context) *dto.BookingOptionsResponse
	PreviewCheckout(ctx context.Context, req *dto.CheckoutPreviewRequest) (*dto.CheckoutSummaryResponse, error)
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error)
	GetMyBookings(ctx context.Context) (*dto.BookingListResponse, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID, confirmed bool) error
	SubscribeMyBookings(ctx context.Context, sink realtime.Sink[*dto.BookingListResponse]) (*realtime.Subscription, error)
}

type patientBookingUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	bookingRepo    repository.BookingRepository
	doctorRepo     repository.DoctorRepository
	paymentService service.PaymentService
	auditService   service.AuditService
	broker         realtime.Broker
	notifier       *realtime.Notifier
	metrics        *metrics.BookingMetrics
	now            func() time.Time
}

func NewPatientBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	doctorRepo repository.DoctorRepository,
	paymentService service.PaymentService,
	auditService service.AuditService,
	broker realtime.Broker,
	notifier *realtime.Notifier,
	metrics *metrics.BookingMetrics,
	now func() time.Time,
) PatientBookingUsecase {
	if now == nil {
		now = time.Now
	}
	return &patientBookingUsecase{
		db:             db,
		log:            log,
		bookingRepo:    bookingRepo,
		doctorRepo:     doctorRepo,
		paymentService: paymentService,
		auditService:   auditService,
		broker:         broker,
		notifier:       notifier,
		metrics:        metrics,
		now:            now,
	}
}

// BookingOptions lists the selectable dates, today first, and the fixed time slots.
func (u *patientBookingUsecase) BookingOptions(ctx context.Context) *dto.BookingOptionsResponse {
	today := validator.StartOfDay(u.now())

	dates := make([]string, 0, entity.BookingWindowDays)
	for i := 0; i < entity.BookingWindowDays; i++ {
		dates = append(dates, today.AddDate(0, 0, i).Format(validator.DateLayout))
	}

	slots := make([]string, len(entity.TimeSlots))
	copy(slots, entity.TimeSlots)

	return &dto.BookingOptionsResponse{
		Dates:     dates,
		TimeSlots: slots,
	}
}

// PreviewCheckout validates the selection and prices it. Nothing is written.
func (u *patientBookingUsecase) PreviewCheckout(ctx context.Context, req *dto.CheckoutPreviewRequest) (*dto.CheckoutSummaryResponse, error) {
	sess, err := patientSession(ctx)
	if err != nil {
		return nil, err
	}

	doctorID, date, err := u.validateSelection(req.DoctorID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	doctor, err := u.bookableDoctor(ctx, doctorID, sess.UserID)
	if err != nil {
		return nil, err
	}

	fee := doctor.ConsultationFee()
	return &dto.CheckoutSummaryResponse{
		DoctorID:        doctor.ID,
		DoctorName:      doctor.Name,
		Specialty:       doctor.Specialty,
		Date:            date.Format(validator.DateLayout),
		Time:            req.Time,
		ConsultationFee: fee,
		Total:           fee,
	}, nil
}

// CreateBooking re-checks the selection against the clock at submit time, so a date picked
// before midnight is rejected after it. The new booking always starts pending.
func (u *patientBookingUsecase) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	sess, err := patientSession(ctx)
	if err != nil {
		u.metrics.ObserveCreate("forbidden")
		return nil, err
	}

	doctorID, date, err := u.validateSelection(req.DoctorID, req.Date, req.Time)
	if err != nil {
		u.metrics.ObserveCreate("invalid")
		return nil, err
	}

	doctor, err := u.bookableDoctor(ctx, doctorID, sess.UserID)
	if err != nil {
		u.metrics.ObserveCreate("rejected")
		return nil, err
	}

	sheet, err := u.paymentService.PrepareSheet(ctx, doctor.ConsultationFee())
	if err != nil {
		u.log.Warnf("Failed to prepare payment for doctor %s: %+v", doctor.ID, err)
		u.metrics.ObserveCreate("payment_failed")
		return nil, ErrPaymentFailed
	}

	createdAt := u.now().UnixMilli()
	booking := &entity.Booking{
		ID:         uuid.New(),
		UserID:     sess.UserID,
		DoctorID:   doctor.ID,
		DoctorName: doctor.Name,
		Date:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Time:       req.Time,
		Status:     entity.BookingStatusPending,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	if err := u.bookingRepo.Create(ctx, u.db, booking); err != nil {
		u.log.Warnf("Failed to create booking: %+v", err)
		u.metrics.ObserveCreate("error")
		return nil, err
	}

	u.notifier.BookingChanged(ctx, booking)
	_ = u.auditService.LogCreate(ctx, &sess.UserID, entity.AuditActionBookingCreate, "booking", booking.ID.String(), converter.BookingToResponse(booking))
	u.metrics.ObserveCreate("success")

	return &dto.CreateBookingResponse{
		Booking: *converter.BookingToResponse(booking),
		Payment: converter.PaymentSheetToResponse(sheet),
	}, nil
}

// GetBooking returns a booking only to its patient or its doctor.
func (u *patientBookingUsecase) GetBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	booking, err := u.bookingRepo.FindByID(ctx, u.db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil || (booking.UserID != sess.UserID && booking.DoctorID != sess.UserID) {
		return nil, ErrBookingNotFound
	}

	return converter.BookingToResponse(booking), nil
}

// GetMyBookings returns all bookings for the logged-in patient, newest first
func (u *patientBookingUsecase) GetMyBookings(ctx context.Context) (*dto.BookingListResponse, error) {
	sess, err := patientSession(ctx)
	if err != nil {
		return nil, err
	}

	bookings, err := u.bookingRepo.FindByOwner(ctx, u.db, patientOwner(sess.UserID))
	if err != nil {
		u.log.Warnf("Failed to find bookings for patient %s: %+v", sess.UserID, err)
		return nil, err
	}

	return converter.BookingsToListResponse(bookings), nil
}

// CancelBooking is the patient's self-service cancellation. It is only issued once the
// patient has confirmed the prompt, and cancelling a cancelled booking succeeds.
func (u *patientBookingUsecase) CancelBooking(ctx context.Context, bookingID uuid.UUID, confirmed bool) error {
	sess, err := patientSession(ctx)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrCancelNotConfirmed
	}

	booking, err := u.bookingRepo.FindByID(ctx, u.db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return err
	}
	if booking == nil || booking.UserID != sess.UserID {
		return ErrBookingNotFound
	}

	affected, err := u.bookingRepo.TransitionStatus(ctx, u.db, bookingID, patientOwner(sess.UserID), entity.BookingStatusCancelled)
	if err != nil {
		u.log.Warnf("Failed to cancel booking %s: %+v", bookingID, err)
		u.metrics.ObserveTransition(string(entity.RolePatient), string(entity.BookingStatusCancelled), "error")
		return err
	}

	if affected == 0 {
		current, err := u.bookingRepo.FindByID(ctx, u.db, bookingID)
		if err != nil {
			u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
			return err
		}
		if current == nil {
			return ErrBookingNotFound
		}
		if current.IsCancelled() {
			return nil
		}
		u.metrics.ObserveTransition(string(entity.RolePatient), string(entity.BookingStatusCancelled), "rejected")
		return ErrInvalidTransition
	}

	booking.Status = entity.BookingStatusCancelled

	u.notifier.BookingChanged(ctx, booking)
	_ = u.auditService.LogUpdate(ctx, &sess.UserID, entity.AuditActionBookingCancel, "booking", booking.ID.String(),
		nil, map[string]interface{}{"status": booking.Status})
	u.metrics.ObserveTransition(string(entity.RolePatient), string(entity.BookingStatusCancelled), "success")

	return nil
}

// SubscribeMyBookings opens a snapshot stream of the patient's bookings.
func (u *patientBookingUsecase) SubscribeMyBookings(ctx context.Context, sink realtime.Sink[*dto.BookingListResponse]) (*realtime.Subscription, error) {
	sess, err := patientSession(ctx)
	if err != nil {
		return nil, err
	}

	owner := patientOwner(sess.UserID)
	fetch := func(ctx context.Context) (*dto.BookingListResponse, error) {
		bookings, err := u.bookingRepo.FindByOwner(ctx, u.db, owner)
		if err != nil {
			u.log.Warnf("Failed to refresh bookings for patient %s: %+v", sess.UserID, err)
			return nil, err
		}
		return converter.BookingsToListResponse(bookings), nil
	}

	return realtime.Open(ctx, u.broker, realtime.PatientBookingsTopic(sess.UserID), fetch, sink), nil
}

// validateSelection runs the checks that need no store access. Missing or malformed input
// never reaches the database.
func (u *patientBookingUsecase) validateSelection(doctorID, date, slot string) (uuid.UUID, time.Time, error) {
	id, err := uuid.Parse(doctorID)
	if err != nil {
		return uuid.Nil, time.Time{}, ErrInvalidDoctorID
	}

	if date == "" {
		return uuid.Nil, time.Time{}, ErrDateRequired
	}
	now := u.now()
	day, err := time.ParseInLocation(validator.DateLayout, date, now.Location())
	if err != nil {
		return uuid.Nil, time.Time{}, ErrInvalidDate
	}
	if !validator.IsValidFutureDate(day, now) {
		return uuid.Nil, time.Time{}, ErrDatePast
	}

	if slot == "" {
		return uuid.Nil, time.Time{}, ErrSlotRequired
	}
	if !entity.IsValidTimeSlot(slot) {
		return uuid.Nil, time.Time{}, ErrInvalidSlot
	}

	return id, day, nil
}

func (u *patientBookingUsecase) bookableDoctor(ctx context.Context, doctorID, patientID uuid.UUID) (*entity.Doctor, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if doctor.ID == patientID {
		return nil, ErrSelfBooking
	}
	return doctor, nil
}

func patientOwner(id uuid.UUID) repository.BookingOwner {
	return repository.BookingOwner{Role: entity.RolePatient, ID: id}
}

func doctorOwner(id uuid.UUID) repository.BookingOwner {
	return repository.BookingOwner{Role: entity.RoleDoctor, ID: id}
}
