package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog represents a system audit trail entry, stored as a mongo document
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID   string             `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	Action    string             `bson:"action" json:"action"`
	Entity    string             `bson:"entity" json:"entity"`
	EntityID  string             `bson:"entity_id" json:"entity_id"`
	OldValue  interface{}        `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue  interface{}        `bson:"new_value,omitempty" json:"new_value,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Common audit actions
const (
	AuditActionUserSignUp     = "user.signup"
	AuditActionUserLogin      = "user.login"
	AuditActionUserLogout     = "user.logout"
	AuditActionBookingCreate  = "booking.create"
	AuditActionBookingConfirm = "booking.confirm"
	AuditActionBookingCancel  = "booking.cancel"
	AuditActionProfileUpdate  = "profile.update"
	AuditActionDoctorRegister = "doctor.register"
	AuditActionDoctorUpdate   = "doctor.update"
)
