package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/realtime"
	"go-medical-booking/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func patientCtx(id uuid.UUID) context.Context {
	return middleware.WithSession(context.Background(), &session.Session{UserID: id, Role: entity.RolePatient, TokenID: "patient-token"})
}

func doctorCtx(id uuid.UUID) context.Context {
	return middleware.WithSession(context.Background(), &session.Session{UserID: id, Role: entity.RoleDoctor, TokenID: "doctor-token"})
}

// fixedClock returns a settable clock.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func newTestBroker(t *testing.T) *realtime.RedisBroker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return realtime.NewRedisBroker(client)
}

// memBookingRepo applies the same owner and transition guards as the SQL implementation.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]entity.Booking
	err      error
	// readErrAfterWrite fails every FindByID once a transition has been applied.
	readErrAfterWrite error
	written           bool
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: map[uuid.UUID]entity.Booking{}}
}

func (r *memBookingRepo) Create(ctx context.Context, db *gorm.DB, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookingRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.written && r.readErrAfterWrite != nil {
		return nil, r.readErrAfterWrite
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memBookingRepo) FindByOwner(ctx context.Context, db *gorm.DB, owner repository.BookingOwner) ([]entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []entity.Booking
	for _, b := range r.bookings {
		if ownedBy(b, owner) {
			out = append(out, b)
		}
	}
	entity.SortBookingsNewestFirst(out)
	return out, nil
}

func (r *memBookingRepo) TransitionStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, owner repository.BookingOwner, next entity.BookingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	b, ok := r.bookings[id]
	if !ok || !ownedBy(b, owner) || !b.Status.CanTransitionTo(next) {
		return 0, nil
	}
	b.Status = next
	r.bookings[id] = b
	r.written = true
	return 1, nil
}

func (r *memBookingRepo) status(id uuid.UUID) entity.BookingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id].Status
}

func ownedBy(b entity.Booking, owner repository.BookingOwner) bool {
	switch owner.Role {
	case entity.RolePatient:
		return b.UserID == owner.ID
	case entity.RoleDoctor:
		return b.DoctorID == owner.ID
	}
	return false
}

type memDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]entity.Doctor
	created []entity.Doctor
	err     error
}

func newMemDoctorRepo(doctors ...entity.Doctor) *memDoctorRepo {
	r := &memDoctorRepo{doctors: map[uuid.UUID]entity.Doctor{}}
	for _, d := range doctors {
		r.doctors[d.ID] = d
	}
	return r
}

func (r *memDoctorRepo) Create(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doctors[doctor.ID] = *doctor
	r.created = append(r.created, *doctor)
	return nil
}

func (r *memDoctorRepo) Save(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error {
	return r.Create(ctx, db, doctor)
}

func (r *memDoctorRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	d, ok := r.doctors[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *memDoctorRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]entity.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (r *memDoctorRepo) UpdateFields(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "about":
			d.About = v.(string)
		case "experience":
			d.Experience = v.(int)
		case "fees":
			d.Fees = v.(decimal.Decimal)
		case "updated_at":
			d.UpdatedAt = v.(int64)
		}
	}
	r.doctors[id] = d
	return 1, nil
}

type memProfileRepo struct {
	profiles map[uuid.UUID]entity.UserProfile
}

func newMemProfileRepo(profiles ...entity.UserProfile) *memProfileRepo {
	r := &memProfileRepo{profiles: map[uuid.UUID]entity.UserProfile{}}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *memProfileRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error {
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *memProfileRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.UserProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memProfileRepo) UpdateFields(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	p, ok := r.profiles[id]
	if !ok {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "phone":
			p.Phone = v.(string)
		case "email":
			p.Email = v.(string)
		case "updated_at":
			p.UpdatedAt = v.(int64)
		}
	}
	r.profiles[id] = p
	return 1, nil
}

type memAccountRepo struct {
	accounts  map[string]entity.Account
	createErr error
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: map[string]entity.Account{}}
}

func (r *memAccountRepo) Create(ctx context.Context, db *gorm.DB, account *entity.Account) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.accounts[account.Email] = *account
	return nil
}

func (r *memAccountRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Account, error) {
	a, ok := r.accounts[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memAccountRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

type auditEntry struct {
	action   string
	entityID string
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAudit) LogCreate(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, entityID: entityID})
	return nil
}

func (a *recordingAudit) LogUpdate(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return a.LogCreate(ctx, actorID, action, entityName, entityID, newValue)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.action
	}
	return out
}

// recordingBroker remembers published topics and never delivers anything.
type recordingBroker struct {
	mu     sync.Mutex
	topics []string
}

func (b *recordingBroker) Publish(ctx context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	return nil
}

func (b *recordingBroker) Listen(ctx context.Context, topic string) (realtime.Listener, error) {
	return nil, errors.New("recording broker cannot listen")
}

func (b *recordingBroker) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.topics...)
}
