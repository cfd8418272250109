package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/realtime"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	usecase  PatientBookingUsecase
	bookings *memBookingRepo
	doctors  *memDoctorRepo
	audit    *recordingAudit
	broker   *recordingBroker
	clock    *fixedClock
	doctor   entity.Doctor
	patient  uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	f := &bookingFixture{
		bookings: newMemBookingRepo(),
		audit:    &recordingAudit{},
		broker:   &recordingBroker{},
		clock:    &fixedClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)},
		doctor: entity.Doctor{
			ID:        uuid.New(),
			Name:      "Dr. Sarah Johnson",
			Specialty: "Cardiologist",
			Fees:      decimal.NewFromInt(150),
		},
		patient: uuid.New(),
	}
	f.doctors = newMemDoctorRepo(f.doctor)

	log := testLogger()
	f.usecase = NewPatientBookingUsecase(nil, log, f.bookings, f.doctors,
		service.NewMockPaymentService(log), f.audit, f.broker, realtime.NewNotifier(f.broker, log), nil, f.clock.Now)
	return f
}

func (f *bookingFixture) request(date, slot string) *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{DoctorID: f.doctor.ID.String(), Date: date, Time: slot}
}

func TestBookingOptions_FourteenDaysFromToday(t *testing.T) {
	f := newBookingFixture(t)

	opts := f.usecase.BookingOptions(context.Background())

	require.Len(t, opts.Dates, entity.BookingWindowDays)
	assert.Equal(t, "2026-03-10", opts.Dates[0])
	assert.Equal(t, "2026-03-23", opts.Dates[13])
	assert.Equal(t, entity.TimeSlots, opts.TimeSlots)
}

func TestPreviewCheckout_UsesDoctorFeeOrDefault(t *testing.T) {
	f := newBookingFixture(t)
	ctx := patientCtx(f.patient)

	summary, err := f.usecase.PreviewCheckout(ctx, &dto.CheckoutPreviewRequest{
		DoctorID: f.doctor.ID.String(), Date: "2026-03-12", Time: "10:00 AM",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sarah Johnson", summary.DoctorName)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(150)))

	unpriced := entity.Doctor{ID: uuid.New(), Name: "Dr. Michael Chen", Specialty: "Dermatologist"}
	f.doctors.doctors[unpriced.ID] = unpriced
	summary, err = f.usecase.PreviewCheckout(ctx, &dto.CheckoutPreviewRequest{
		DoctorID: unpriced.ID.String(), Date: "2026-03-12", Time: "10:00 AM",
	})
	require.NoError(t, err)
	assert.True(t, summary.ConsultationFee.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, f.bookings.bookings)
}

func TestCreateBooking_StartsPending(t *testing.T) {
	f := newBookingFixture(t)

	resp, err := f.usecase.CreateBooking(patientCtx(f.patient), f.request("2026-03-12", "10:00 AM"))
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Booking.Status)
	assert.Equal(t, f.patient, resp.Booking.UserID)
	assert.Equal(t, f.doctor.ID, resp.Booking.DoctorID)
	assert.Equal(t, "Dr. Sarah Johnson", resp.Booking.DoctorName)
	assert.Equal(t, "2026-03-12", resp.Booking.Date)
	assert.Equal(t, f.clock.Now().UnixMilli(), resp.Booking.CreatedAt)
	assert.Equal(t, "pi_mock_123", resp.Payment.PaymentIntent)
	assert.True(t, resp.Payment.Amount.Equal(decimal.NewFromInt(150)))

	assert.Equal(t, entity.BookingStatusPending, f.bookings.status(resp.Booking.ID))
	assert.ElementsMatch(t, []string{
		realtime.PatientBookingsTopic(f.patient),
		realtime.DoctorBookingsTopic(f.doctor.ID),
	}, f.broker.published())
	assert.Equal(t, []string{entity.AuditActionBookingCreate}, f.audit.actions())
}

func TestCreateBooking_TodayIsAccepted(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.usecase.CreateBooking(patientCtx(f.patient), f.request("2026-03-10", "05:00 PM"))
	assert.NoError(t, err)
}

func TestCreateBooking_Rejections(t *testing.T) {
	f := newBookingFixture(t)
	ctx := patientCtx(f.patient)

	tests := []struct {
		name string
		ctx  context.Context
		req  *dto.CreateBookingRequest
		want error
	}{
		{"no session", context.Background(), f.request("2026-03-12", "10:00 AM"), ErrUnauthenticated},
		{"no slot with valid date", ctx, f.request("2026-03-12", ""), ErrSlotRequired},
		{"unknown slot", ctx, f.request("2026-03-12", "01:00 PM"), ErrInvalidSlot},
		{"no date", ctx, f.request("", "10:00 AM"), ErrDateRequired},
		{"malformed date", ctx, f.request("12/03/2026", "10:00 AM"), ErrInvalidDate},
		{"yesterday", ctx, f.request("2026-03-09", "10:00 AM"), ErrDatePast},
		{"bad doctor id", ctx, &dto.CreateBookingRequest{DoctorID: "nope", Date: "2026-03-12", Time: "10:00 AM"}, ErrInvalidDoctorID},
		{"unknown doctor", ctx, &dto.CreateBookingRequest{DoctorID: uuid.NewString(), Date: "2026-03-12", Time: "10:00 AM"}, ErrDoctorNotFound},
		{"doctor books self", patientCtx(f.doctor.ID), f.request("2026-03-12", "10:00 AM"), ErrSelfBooking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.usecase.CreateBooking(tt.ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, f.bookings.bookings)
	assert.Empty(t, f.broker.published())
}

func TestCreateBooking_ValidationErrorsCarryField(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.usecase.CreateBooking(patientCtx(f.patient), f.request("2026-03-12", ""))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, map[string]string{"time": "Please select a time slot"}, ve.Fields())
}

func TestCreateBooking_DateRecheckedAtSubmit(t *testing.T) {
	f := newBookingFixture(t)
	ctx := patientCtx(f.patient)

	f.clock.Set(time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC))
	summary, err := f.usecase.PreviewCheckout(ctx, &dto.CheckoutPreviewRequest{
		DoctorID: f.doctor.ID.String(), Date: "2026-03-10", Time: "05:00 PM",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", summary.Date)

	// midnight passes between selection and submit
	f.clock.Set(time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC))
	_, err = f.usecase.CreateBooking(ctx, f.request("2026-03-10", "05:00 PM"))
	assert.ErrorIs(t, err, ErrDatePast)
	assert.Empty(t, f.bookings.bookings)
}

func TestCreateBooking_StoreErrorIsReturned(t *testing.T) {
	f := newBookingFixture(t)
	f.bookings.err = errors.New("connection refused")

	_, err := f.usecase.CreateBooking(patientCtx(f.patient), f.request("2026-03-12", "10:00 AM"))
	assert.EqualError(t, err, "connection refused")
	assert.Empty(t, f.broker.published())
}

func TestCancelBooking_RequiresConfirmation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := patientCtx(f.patient)
	resp, err := f.usecase.CreateBooking(ctx, f.request("2026-03-12", "10:00 AM"))
	require.NoError(t, err)

	err = f.usecase.CancelBooking(ctx, resp.Booking.ID, false)
	assert.ErrorIs(t, err, ErrCancelNotConfirmed)
	assert.Equal(t, CancelPrompt, err.Error())
	assert.Equal(t, entity.BookingStatusPending, f.bookings.status(resp.Booking.ID))
}

func TestCancelBooking_IsIdempotent(t *testing.T) {
	f := newBookingFixture(t)
	ctx := patientCtx(f.patient)
	resp, err := f.usecase.CreateBooking(ctx, f.request("2026-03-12", "10:00 AM"))
	require.NoError(t, err)

	require.NoError(t, f.usecase.CancelBooking(ctx, resp.Booking.ID, true))
	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.status(resp.Booking.ID))

	require.NoError(t, f.usecase.CancelBooking(ctx, resp.Booking.ID, true))
	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.status(resp.Booking.ID))

	assert.Equal(t, []string{entity.AuditActionBookingCreate, entity.AuditActionBookingCancel}, f.audit.actions())
}

func TestCancelBooking_ConfirmedCanStillBeCancelled(t *testing.T) {
	f := newBookingFixture(t)
	ctx := patientCtx(f.patient)
	resp, err := f.usecase.CreateBooking(ctx, f.request("2026-03-12", "10:00 AM"))
	require.NoError(t, err)
	f.bookings.bookings[resp.Booking.ID] = withStatus(f.bookings.bookings[resp.Booking.ID], entity.BookingStatusConfirmed)

	require.NoError(t, f.usecase.CancelBooking(ctx, resp.Booking.ID, true))
	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.status(resp.Booking.ID))
}

func TestCancelBooking_OtherPatientsBookingIsNotFound(t *testing.T) {
	f := newBookingFixture(t)
	resp, err := f.usecase.CreateBooking(patientCtx(f.patient), f.request("2026-03-12", "10:00 AM"))
	require.NoError(t, err)

	err = f.usecase.CancelBooking(patientCtx(uuid.New()), resp.Booking.ID, true)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.Equal(t, entity.BookingStatusPending, f.bookings.status(resp.Booking.ID))

	err = f.usecase.CancelBooking(patientCtx(f.patient), uuid.New(), true)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetBooking_ScopedToPatientAndDoctor(t *testing.T) {
	f := newBookingFixture(t)
	resp, err := f.usecase.CreateBooking(patientCtx(f.patient), f.request("2026-03-12", "10:00 AM"))
	require.NoError(t, err)

	got, err := f.usecase.GetBooking(patientCtx(f.patient), resp.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Booking.ID, got.ID)

	_, err = f.usecase.GetBooking(doctorCtx(f.doctor.ID), resp.Booking.ID)
	assert.NoError(t, err)

	_, err = f.usecase.GetBooking(patientCtx(uuid.New()), resp.Booking.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetMyBookings_NewestFirst(t *testing.T) {
	f := newBookingFixture(t)
	ctx := patientCtx(f.patient)

	first, err := f.usecase.CreateBooking(ctx, f.request("2026-03-12", "10:00 AM"))
	require.NoError(t, err)
	f.clock.Set(f.clock.Now().Add(time.Minute))
	second, err := f.usecase.CreateBooking(ctx, f.request("2026-03-13", "11:00 AM"))
	require.NoError(t, err)

	// someone else's booking must not leak into the list
	_, err = f.usecase.CreateBooking(patientCtx(uuid.New()), f.request("2026-03-13", "11:00 AM"))
	require.NoError(t, err)

	list, err := f.usecase.GetMyBookings(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, second.Booking.ID, list.Bookings[0].ID)
	assert.Equal(t, first.Booking.ID, list.Bookings[1].ID)
}

func withStatus(b entity.Booking, status entity.BookingStatus) entity.Booking {
	b.Status = status
	return b
}

func TestCancelBooking_CommittedChangeIsPublishedWithoutRereading(t *testing.T) {
	f := newBookingFixture(t)
	ctx := patientCtx(f.patient)
	resp, err := f.usecase.CreateBooking(ctx, f.request("2026-03-12", "10:00 AM"))
	require.NoError(t, err)
	f.bookings.readErrAfterWrite = errors.New("connection reset")
	before := len(f.broker.published())

	require.NoError(t, f.usecase.CancelBooking(ctx, resp.Booking.ID, true))
	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.status(resp.Booking.ID))
	assert.ElementsMatch(t, []string{
		realtime.PatientBookingsTopic(f.patient),
		realtime.DoctorBookingsTopic(f.doctor.ID),
	}, f.broker.published()[before:])
}

func TestPatientOperations_RejectDoctorSessions(t *testing.T) {
	f := newBookingFixture(t)
	ctx := doctorCtx(uuid.New())

	_, err := f.usecase.CreateBooking(ctx, f.request("2026-03-12", "10:00 AM"))
	assert.ErrorIs(t, err, ErrNotAPatient)
	assert.Empty(t, f.bookings.bookings)

	_, err = f.usecase.PreviewCheckout(ctx, &dto.CheckoutPreviewRequest{DoctorID: f.doctor.ID.String(), Date: "2026-03-12", Time: "10:00 AM"})
	assert.ErrorIs(t, err, ErrNotAPatient)

	_, err = f.usecase.GetMyBookings(ctx)
	assert.ErrorIs(t, err, ErrNotAPatient)

	assert.ErrorIs(t, f.usecase.CancelBooking(ctx, uuid.New(), true), ErrNotAPatient)

	_, err = f.usecase.SubscribeMyBookings(ctx, realtime.Sink[*dto.BookingListResponse]{})
	assert.ErrorIs(t, err, ErrNotAPatient)
}
