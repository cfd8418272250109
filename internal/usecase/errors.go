package usecase

import (
	"context"
	"errors"
	"strings"

	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/session"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrNotADoctor      = errors.New("account is not registered as a doctor")
	ErrNotAPatient     = errors.New("only patients can book appointments")
	ErrValidation      = errors.New("validation failed")
)

// ValidationError is a field-level rejection raised before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Fields renders the error the way handlers present inline form errors.
func (e *ValidationError) Fields() map[string]string {
	return map[string]string{e.Field: e.Message}
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

func doctorSession(ctx context.Context) (*session.Session, error) {
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if !sess.IsDoctor() {
		return nil, ErrNotADoctor
	}
	return sess, nil
}

// patientSession rejects doctor sessions; doctors never get the patient booking stack.
func patientSession(ctx context.Context) (*session.Session, error) {
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if !sess.IsPatient() {
		return nil, ErrNotAPatient
	}
	return sess, nil
}
