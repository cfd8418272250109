package session

import (
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// Session is the authenticated state shared read-only by every request made with one
// access token. Only Manager creates or removes it.
type Session struct {
	UserID    uuid.UUID   `json:"user_id"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	TokenID   string      `json:"token_id"`
	CreatedAt time.Time   `json:"created_at"`
}

func (s *Session) IsDoctor() bool {
	return s != nil && s.Role == entity.RoleDoctor
}

func (s *Session) IsPatient() bool {
	return s != nil && s.Role == entity.RolePatient
}

// Stack names the set of root screens a client shows.
type Stack string

const (
	StackAuth    Stack = "auth"
	StackPatient Stack = "patient"
	StackDoctor  Stack = "doctor"
)

// RootStack is a pure function of the session flags.
func RootStack(authenticated, isDoctor bool) Stack {
	switch {
	case !authenticated:
		return StackAuth
	case isDoctor:
		return StackDoctor
	default:
		return StackPatient
	}
}
