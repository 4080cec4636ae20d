package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/diaglab/apiserver/types"
)

// ResultRepository handles persistence for test results.
type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) List(ctx context.Context) ([]types.Result, error) {
	return r.listWhere(ctx, "", nil)
}

func (r *ResultRepository) ListByEmail(ctx context.Context, email string) ([]types.Result, error) {
	return r.listWhere(ctx, "WHERE email = $1", []any{email})
}

func (r *ResultRepository) Get(ctx context.Context, id int) (types.Result, error) {
	const query = `
		SELECT id, reservation_id, email, test_name, summary, report_key, created_at
		FROM results
		WHERE id = $1`
	var result types.Result
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&result.ID,
		&result.ReservationID,
		&result.Email,
		&result.TestName,
		&result.Summary,
		&result.ReportKey,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Result{}, ErrNotFound
		}
		return types.Result{}, err
	}
	return result, nil
}

func (r *ResultRepository) Create(ctx context.Context, result types.Result) (types.Result, error) {
	result.CreatedAt = time.Now()

	const query = `
		INSERT INTO results (reservation_id, email, test_name, summary, report_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		result.ReservationID,
		result.Email,
		result.TestName,
		result.Summary,
		result.ReportKey,
		result.CreatedAt,
	).Scan(&result.ID); err != nil {
		return types.Result{}, err
	}
	return result, nil
}

// SetReportKey records the blob-storage key of the uploaded report.
func (r *ResultRepository) SetReportKey(ctx context.Context, id int, key string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE results SET report_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *ResultRepository) listWhere(ctx context.Context, where string, args []any) ([]types.Result, error) {
	query := `
		SELECT id, reservation_id, email, test_name, summary, report_key, created_at
		FROM results ` + where + `
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]types.Result, 0)
	for rows.Next() {
		var result types.Result
		if err := rows.Scan(
			&result.ID,
			&result.ReservationID,
			&result.Email,
			&result.TestName,
			&result.Summary,
			&result.ReportKey,
			&result.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
