package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/diaglab/apiserver/types"
)

// ReservationRepository handles persistence for reservations.
type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) List(ctx context.Context) ([]types.Reservation, error) {
	return r.listWhere(ctx, "", nil)
}

func (r *ReservationRepository) ListByEmail(ctx context.Context, email string) ([]types.Reservation, error) {
	return r.listWhere(ctx, "WHERE email = $1", []any{email})
}

func (r *ReservationRepository) ListByTestName(ctx context.Context, testName string) ([]types.Reservation, error) {
	return r.listWhere(ctx, "WHERE test_name = $1", []any{testName})
}

func (r *ReservationRepository) Get(ctx context.Context, id int) (types.Reservation, error) {
	const query = `
		SELECT id, email, test_id, test_name, fee, scheduled_on, status, created_at
		FROM reservations
		WHERE id = $1`
	var reservation types.Reservation
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.Email,
		&reservation.TestID,
		&reservation.TestName,
		&reservation.Fee,
		&reservation.Date,
		&reservation.Status,
		&reservation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Reservation{}, ErrNotFound
		}
		return types.Reservation{}, err
	}
	return reservation, nil
}

func (r *ReservationRepository) Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	reservation.CreatedAt = time.Now()
	if reservation.Status == "" {
		reservation.Status = "pending"
	}

	const query = `
		INSERT INTO reservations (email, test_id, test_name, fee, scheduled_on, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		reservation.Email,
		reservation.TestID,
		reservation.TestName,
		reservation.Fee,
		reservation.Date,
		reservation.Status,
		reservation.CreatedAt,
	).Scan(&reservation.ID); err != nil {
		return types.Reservation{}, err
	}
	return reservation, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *ReservationRepository) listWhere(ctx context.Context, where string, args []any) ([]types.Reservation, error) {
	query := `
		SELECT id, email, test_id, test_name, fee, scheduled_on, status, created_at
		FROM reservations ` + where + `
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]types.Reservation, 0)
	for rows.Next() {
		var reservation types.Reservation
		if err := rows.Scan(
			&reservation.ID,
			&reservation.Email,
			&reservation.TestID,
			&reservation.TestName,
			&reservation.Fee,
			&reservation.Date,
			&reservation.Status,
			&reservation.CreatedAt,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}
