package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/observability/metrics"
	"go-medical-booking/internal/realtime"
	"go-medical-booking/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512

	streamBookings     = "bookings"
	streamAppointments = "appointments"
	streamDoctors      = "doctors"
)

// StreamHandler serves snapshot subscriptions over websockets. Each frame carries the
// full current list; clients replace what they show instead of merging.
type StreamHandler struct {
	bookingUsecase     usecase.PatientBookingUsecase
	appointmentUsecase usecase.DoctorAppointmentUsecase
	doctorUsecase      usecase.DoctorDirectoryUsecase
	metrics            *metrics.BookingMetrics
	log                *logrus.Logger
	upgrader           websocket.Upgrader
}

func NewStreamHandler(
	bookingUsecase usecase.PatientBookingUsecase,
	appointmentUsecase usecase.DoctorAppointmentUsecase,
	doctorUsecase usecase.DoctorDirectoryUsecase,
	metrics *metrics.BookingMetrics,
	log *logrus.Logger,
) *StreamHandler {
	return &StreamHandler{
		bookingUsecase:     bookingUsecase,
		appointmentUsecase: appointmentUsecase,
		doctorUsecase:      doctorUsecase,
		metrics:            metrics,
		log:                log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin; the access token authenticates the socket.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *StreamHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	serveStream(h, w, r, streamBookings, h.bookingUsecase.SubscribeMyBookings)
}

func (h *StreamHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	serveStream(h, w, r, streamAppointments, h.appointmentUsecase.SubscribeAppointments)
}

func (h *StreamHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	serveStream(h, w, r, streamDoctors, func(ctx context.Context, sink realtime.Sink[*dto.DoctorListResponse]) (*realtime.Subscription, error) {
		return h.doctorUsecase.SubscribeDoctors(ctx, sink), nil
	})
}

type openFunc[T any] func(ctx context.Context, sink realtime.Sink[T]) (*realtime.Subscription, error)

// serveStream keeps one subscription per socket. Frames are only written from the
// subscription goroutine; the handler goroutine only reads, to notice the client leaving.
func serveStream[T any](h *StreamHandler, w http.ResponseWriter, r *http.Request, stream string, open openFunc[T]) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("Failed to upgrade %s stream: %+v", stream, err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := open(ctx, realtime.Sink[T]{
		OnSnapshot: func(snapshot T) {
			h.metrics.ObserveSnapshot(stream)
			if err := writeFrame(conn, dto.StreamFrame{Type: dto.StreamFrameSnapshot, Data: snapshot}); err != nil {
				h.log.Debugf("Failed to write %s snapshot: %+v", stream, err)
				cancel()
			}
		},
		OnError: func(err error) {
			h.log.Warnf("Failed to refresh %s stream: %+v", stream, err)
			_ = writeFrame(conn, dto.StreamFrame{Type: dto.StreamFrameError, Message: "Failed to load data. Please try again."})
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""), time.Now().Add(writeWait))
		},
	})
	if err != nil {
		_ = writeFrame(conn, dto.StreamFrame{Type: dto.StreamFrameError, Message: streamOpenMessage(err)})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""), time.Now().Add(writeWait))
		return
	}
	defer sub.Close()

	h.metrics.SubscriptionOpened(stream)
	defer h.metrics.SubscriptionClosed(stream)

	go func() {
		select {
		case <-sub.Done():
		case <-ctx.Done():
		}
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, frame dto.StreamFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

func streamOpenMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		return "Unauthorized"
	case errors.Is(err, usecase.ErrNotADoctor):
		return "Only doctors can access this resource"
	case errors.Is(err, usecase.ErrNotAPatient):
		return "Only patients can access this resource"
	default:
		return "Failed to open stream"
	}
}
