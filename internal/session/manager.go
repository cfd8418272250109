package session

import (
	"context"
	"errors"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

type ChangeKind int

const (
	SignedIn ChangeKind = iota
	Refreshed
	SignedOut
)

// Change is one auth-state transition as reported by the auth usecase.
type Change struct {
	Kind     ChangeKind
	Identity entity.Identity
	TokenID  string
	TTL      time.Duration
}

var ErrMissingTokenID = errors.New("auth state change without token id")

// Manager owns the session lifecycle. The role is derived once per transition and reused
// by every request until the next one.
type Manager struct {
	deriver *Deriver
	store   Store
	log     *logrus.Logger
	now     func() time.Time
}

func NewManager(deriver *Deriver, store Store, log *logrus.Logger) *Manager {
	return &Manager{
		deriver: deriver,
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// OnAuthStateChanged returns the new session, or nil after a sign-out.
func (m *Manager) OnAuthStateChanged(ctx context.Context, change Change) (*Session, error) {
	if change.TokenID == "" {
		return nil, ErrMissingTokenID
	}

	if change.Kind == SignedOut {
		if err := m.store.Delete(ctx, change.TokenID); err != nil {
			m.log.Warnf("Failed to delete session: %+v", err)
			return nil, err
		}
		return nil, nil
	}

	session := &Session{
		UserID:    change.Identity.ID,
		Email:     change.Identity.Email,
		Role:      m.deriver.Derive(ctx, change.Identity),
		TokenID:   change.TokenID,
		CreatedAt: m.now(),
	}

	if err := m.store.Save(ctx, session, change.TTL); err != nil {
		m.log.Warnf("Failed to save session: %+v", err)
		return nil, err
	}

	return session, nil
}

// Current returns the session stored for an access token, nil if it was signed out or expired.
func (m *Manager) Current(ctx context.Context, tokenID string) (*Session, error) {
	return m.store.Get(ctx, tokenID)
}
