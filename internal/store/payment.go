package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/diaglab/apiserver/types"
)

// PaymentRepository handles persistence for payment records.
type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ListByEmail(ctx context.Context, email string) ([]types.Payment, error) {
	const query = `
		SELECT id, email, reservation_id, amount, currency, transaction_id, status, created_at
		FROM payments
		WHERE email = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]types.Payment, 0)
	for rows.Next() {
		var payment types.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.Email,
			&payment.ReservationID,
			&payment.Amount,
			&payment.Currency,
			&payment.TransactionID,
			&payment.Status,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepository) Create(ctx context.Context, payment types.Payment) (types.Payment, error) {
	payment.CreatedAt = time.Now()
	if payment.Status == "" {
		payment.Status = "recorded"
	}
	if payment.Currency == "" {
		payment.Currency = "usd"
	}

	const query = `
		INSERT INTO payments (email, reservation_id, amount, currency, transaction_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		payment.Email,
		payment.ReservationID,
		payment.Amount,
		payment.Currency,
		payment.TransactionID,
		payment.Status,
		payment.CreatedAt,
	).Scan(&payment.ID); err != nil {
		return types.Payment{}, err
	}
	return payment, nil
}
