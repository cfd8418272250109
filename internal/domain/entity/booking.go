package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// bookingTransitions lists, per target status, the statuses a booking may move from.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusConfirmed: {BookingStatusPending},
	BookingStatusCancelled: {BookingStatusPending, BookingStatusConfirmed},
}

// Booking represents a patient appointment with a doctor
type Booking struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID     `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	DoctorID   uuid.UUID     `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctorId"`
	DoctorName string        `gorm:"column:doctor_name;type:varchar(255)" json:"doctorName,omitempty"`
	Date       time.Time     `gorm:"type:date;not null" json:"date"`
	Time       string        `gorm:"column:time;type:varchar(16);not null" json:"time"`
	Status     BookingStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt  int64         `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt  int64         `gorm:"column:updated_at;autoUpdateTime:milli" json:"updatedAt"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsPending checks if booking is in pending status
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsConfirmed checks if booking is confirmed
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsCancelled checks if booking is cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, from := range bookingTransitions[next] {
		if from == s {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// TransitionSources returns the statuses from which a booking may move to next.
// Pending is never a target, so it yields nil.
func TransitionSources(next BookingStatus) []BookingStatus {
	sources, ok := bookingTransitions[next]
	if !ok {
		return nil
	}
	return append([]BookingStatus(nil), sources...)
}

// SortBookingsNewestFirst orders a snapshot by creation time, newest first.
// Owner-filtered queries cannot also be ordered by the store, so every list is sorted here.
func SortBookingsNewestFirst(bookings []Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt > bookings[j].CreatedAt
	})
}
