package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentSheet carries what a client needs to present a payment sheet.
type PaymentSheet struct {
	PaymentIntent  string          `json:"payment_intent"`
	EphemeralKey   string          `json:"ephemeral_key"`
	Customer       string          `json:"customer"`
	PublishableKey string          `json:"publishable_key"`
	Amount         decimal.Decimal `json:"amount"`
}

var ErrInvalidAmount = errors.New("payment amount must be positive")

type PaymentService interface {
	PrepareSheet(ctx context.Context, amount decimal.Decimal) (*PaymentSheet, error)
}

// mockPaymentService never charges anyone; checkout only simulates payment.
type mockPaymentService struct {
	log *logrus.Logger
}

func NewMockPaymentService(log *logrus.Logger) PaymentService {
	return &mockPaymentService{log: log}
}

func (s *mockPaymentService) PrepareSheet(ctx context.Context, amount decimal.Decimal) (*PaymentSheet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	s.log.WithField("amount", amount.StringFixed(2)).Info("Preparing mock payment sheet")

	return &PaymentSheet{
		PaymentIntent:  "pi_mock_123",
		EphemeralKey:   "ek_mock_123",
		Customer:       "cus_mock_123",
		PublishableKey: "pk_test_mock",
		Amount:         amount,
	}, nil
}
