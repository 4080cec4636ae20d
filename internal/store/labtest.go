package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/diaglab/apiserver/types"
)

// LabTestRepository handles persistence for lab tests.
type LabTestRepository struct {
	db *sql.DB
}

func NewLabTestRepository(db *sql.DB) *LabTestRepository {
	return &LabTestRepository{db: db}
}

func (r *LabTestRepository) List(ctx context.Context) ([]types.LabTest, error) {
	const query = `
		SELECT id, name, fee, image, slots, scheduled_on, description, created_at, updated_at
		FROM lab_tests
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tests := make([]types.LabTest, 0)
	for rows.Next() {
		var test types.LabTest
		if err := rows.Scan(
			&test.ID,
			&test.Name,
			&test.Fee,
			&test.Image,
			&test.Slots,
			&test.Date,
			&test.Description,
			&test.CreatedAt,
			&test.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tests = append(tests, test)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *LabTestRepository) Get(ctx context.Context, id int) (types.LabTest, error) {
	const query = `
		SELECT id, name, fee, image, slots, scheduled_on, description, created_at, updated_at
		FROM lab_tests
		WHERE id = $1`
	var test types.LabTest
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&test.ID,
		&test.Name,
		&test.Fee,
		&test.Image,
		&test.Slots,
		&test.Date,
		&test.Description,
		&test.CreatedAt,
		&test.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.LabTest{}, ErrNotFound
		}
		return types.LabTest{}, err
	}
	return test, nil
}

func (r *LabTestRepository) Create(ctx context.Context, test types.LabTest) (types.LabTest, error) {
	now := time.Now()
	test.CreatedAt = now
	test.UpdatedAt = now

	const query = `
		INSERT INTO lab_tests (name, fee, image, slots, scheduled_on, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		test.Name,
		test.Fee,
		test.Image,
		test.Slots,
		test.Date,
		test.Description,
		test.CreatedAt,
		test.UpdatedAt,
	).Scan(&test.ID); err != nil {
		return types.LabTest{}, err
	}
	return test, nil
}

func (r *LabTestRepository) Update(ctx context.Context, test types.LabTest) (types.LabTest, error) {
	test.UpdatedAt = time.Now()

	const query = `
		UPDATE lab_tests
		SET name = $1,
			fee = $2,
			image = $3,
			slots = $4,
			scheduled_on = $5,
			description = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		test.Name,
		test.Fee,
		test.Image,
		test.Slots,
		test.Date,
		test.Description,
		test.UpdatedAt,
		test.ID,
	)
	if err != nil {
		return types.LabTest{}, err
	}
	if err := requireAffected(result); err != nil {
		return types.LabTest{}, err
	}
	return test, nil
}

func (r *LabTestRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lab_tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// BookSlot takes one slot from the test in a single conditional
// update, so two concurrent bookings can never both consume the last
// slot. Returns ErrNoSlots when no slot remains.
func (r *LabTestRepository) BookSlot(ctx context.Context, id int) error {
	const query = `
		UPDATE lab_tests
		SET slots = slots - 1, updated_at = $1
		WHERE id = $2 AND slots > 0`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return ErrNoSlots
}
