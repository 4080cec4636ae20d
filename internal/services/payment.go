package services

import (
	"context"

	"github.com/diaglab/apiserver/types"
)

// PaymentRepository defines persistence operations for payment records.
type PaymentRepository interface {
	ListByEmail(ctx context.Context, email string) ([]types.Payment, error)
	Create(ctx context.Context, payment types.Payment) (types.Payment, error)
}

// PaymentService encapsulates payment-record use-cases.
type PaymentService struct {
	repo PaymentRepository
}

func NewPaymentService(repo PaymentRepository) *PaymentService {
	return &PaymentService{repo: repo}
}

func (s *PaymentService) ListByEmail(ctx context.Context, email string) ([]types.Payment, error) {
	return s.repo.ListByEmail(ctx, email)
}

func (s *PaymentService) Create(ctx context.Context, payment types.Payment) (types.Payment, error) {
	return s.repo.Create(ctx, payment)
}
