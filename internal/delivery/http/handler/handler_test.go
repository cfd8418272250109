package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/realtime"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/response"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookingUsecase struct {
	usecase.PatientBookingUsecase
	cancelErr   error
	cancelCalls int
	confirmed   bool
	broker      realtime.Broker
	topic       string
	fetches     atomic.Int32
}

func (f *fakeBookingUsecase) CancelBooking(ctx context.Context, bookingID uuid.UUID, confirmed bool) error {
	f.cancelCalls++
	f.confirmed = confirmed
	if !confirmed {
		return usecase.ErrCancelNotConfirmed
	}
	return f.cancelErr
}

func (f *fakeBookingUsecase) SubscribeMyBookings(ctx context.Context, sink realtime.Sink[*dto.BookingListResponse]) (*realtime.Subscription, error) {
	fetch := func(ctx context.Context) (*dto.BookingListResponse, error) {
		n := int(f.fetches.Add(1))
		return &dto.BookingListResponse{Total: n, Bookings: make([]dto.BookingResponse, n)}, nil
	}
	return realtime.Open(ctx, f.broker, f.topic, fetch, sink), nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", usecase.ErrDatePast, http.StatusBadRequest, "Validation failed"},
		{"unauthenticated", usecase.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
		{"not a doctor", usecase.ErrNotADoctor, http.StatusForbidden, "Only doctors can access this resource"},
		{"not a patient", usecase.ErrNotAPatient, http.StatusForbidden, "Only patients can access this resource"},
		{"booking not found", usecase.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
		{"cancel prompt", usecase.ErrCancelNotConfirmed, http.StatusBadRequest, usecase.CancelPrompt},
		{"invalid transition", usecase.ErrInvalidTransition, http.StatusConflict, "Booking cannot move to the requested status"},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError, "Failed to do it"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err, "Failed to do it")

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestWriteError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, usecase.ErrSlotRequired, "unused")

	body := decodeBody(t, rec)
	assert.Equal(t, map[string]interface{}{"time": "Please select a time slot"}, body.Error)
}

func TestWriteAuthError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{usecase.ErrEmailAlreadyExists, http.StatusConflict},
		{usecase.ErrWeakPassword, http.StatusBadRequest},
		{usecase.ErrInvalidCredentials, http.StatusUnauthorized},
		{usecase.ErrNotADoctor, http.StatusUnauthorized},
		{usecase.ErrTokenRevoked, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeAuthError(rec, tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.Equal(t, usecase.AuthErrorMessage(tt.err), decodeBody(t, rec).Message)
	}
}

func TestBookingHandler_CancelNeedsConfirmation(t *testing.T) {
	fake := &fakeBookingUsecase{}
	h := NewBookingHandler(fake, dto.NewValidator())
	router := mux.NewRouter()
	router.HandleFunc("/bookings/{id}/cancel", h.CancelBooking).Methods(http.MethodPost)
	id := uuid.New()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings/"+id.String()+"/cancel", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.CancelPrompt, decodeBody(t, rec).Message)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings/"+id.String()+"/cancel", strings.NewReader(`{"confirm": true}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fake.confirmed)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings/not-a-uuid/cancel", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, fake.cancelCalls)
}

func TestStreamHandler_SendsSnapshotPerChange(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	broker := realtime.NewRedisBroker(client)

	patientID := uuid.New()
	fake := &fakeBookingUsecase{broker: broker, topic: realtime.PatientBookingsTopic(patientID)}
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	h := NewStreamHandler(fake, nil, nil, nil, log)

	server := httptest.NewServer(http.HandlerFunc(h.MyBookings))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	readFrame := func() (string, dto.BookingListResponse) {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame struct {
			Type string                  `json:"type"`
			Data dto.BookingListResponse `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		return frame.Type, frame.Data
	}

	frameType, list := readFrame()
	assert.Equal(t, dto.StreamFrameSnapshot, frameType)
	assert.Equal(t, 1, list.Total)

	require.NoError(t, broker.Publish(context.Background(), fake.topic))

	frameType, list = readFrame()
	assert.Equal(t, dto.StreamFrameSnapshot, frameType)
	assert.Equal(t, 2, list.Total)
}
