package realtime

import (
	"context"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DoctorsTopic = "doctors"

func PatientBookingsTopic(userID uuid.UUID) string {
	return "bookings:patient:" + userID.String()
}

func DoctorBookingsTopic(doctorID uuid.UUID) string {
	return "bookings:doctor:" + doctorID.String()
}

// Notifier announces store writes to the topics whose views they affect.
type Notifier struct {
	broker Broker
	log    *logrus.Logger
}

func NewNotifier(broker Broker, log *logrus.Logger) *Notifier {
	return &Notifier{broker: broker, log: log}
}

// BookingChanged wakes both the patient's and the doctor's booking views.
// Publish failures are logged only; the write itself already succeeded.
func (n *Notifier) BookingChanged(ctx context.Context, booking *entity.Booking) {
	n.publish(ctx, PatientBookingsTopic(booking.UserID))
	n.publish(ctx, DoctorBookingsTopic(booking.DoctorID))
}

func (n *Notifier) DoctorsChanged(ctx context.Context) {
	n.publish(ctx, DoctorsTopic)
}

func (n *Notifier) publish(ctx context.Context, topic string) {
	if n == nil || n.broker == nil {
		return
	}
	if err := n.broker.Publish(ctx, topic); err != nil {
		n.log.Warnf("Failed to publish change on %s: %+v", topic, err)
	}
}
