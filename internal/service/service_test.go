package service

import (
	"context"
	"errors"
	"testing"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditRepo struct {
	logs []*entity.AuditLog
	err  error
}

func (f *fakeAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeAuditRepo) FindByEntity(ctx context.Context, entityName, entityID string) ([]entity.AuditLog, error) {
	return nil, nil
}

func TestAuditService_LogUpdate(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(logrus.New(), repo)
	actor := uuid.New()

	err := svc.LogUpdate(context.Background(), &actor, entity.AuditActionBookingConfirm, "booking", "b-1",
		map[string]interface{}{"status": "pending"}, map[string]interface{}{"status": "confirmed"})
	require.NoError(t, err)

	require.Len(t, repo.logs, 1)
	got := repo.logs[0]
	assert.Equal(t, actor.String(), got.ActorID)
	assert.Equal(t, "booking.confirm", got.Action)
	assert.Equal(t, "b-1", got.EntityID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAuditService_ReturnsRepositoryError(t *testing.T) {
	svc := NewAuditService(logrus.New(), &fakeAuditRepo{err: errors.New("mongo down")})

	err := svc.LogCreate(context.Background(), nil, entity.AuditActionUserSignUp, "user", "u-1", nil)
	assert.Error(t, err)
}

func TestMockPaymentService_PrepareSheet(t *testing.T) {
	svc := NewMockPaymentService(logrus.New())

	sheet, err := svc.PrepareSheet(context.Background(), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "pi_mock_123", sheet.PaymentIntent)
	assert.True(t, sheet.Amount.Equal(decimal.NewFromInt(100)))

	_, err = svc.PrepareSheet(context.Background(), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
