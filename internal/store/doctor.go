package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/diaglab/apiserver/types"
)

// DoctorRepository handles persistence for doctors.
type DoctorRepository struct {
	db *sql.DB
}

func NewDoctorRepository(db *sql.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) List(ctx context.Context) ([]types.Doctor, error) {
	const query = `
		SELECT id, name, specialty, photo, bio, created_at
		FROM doctors
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := make([]types.Doctor, 0)
	for rows.Next() {
		var doctor types.Doctor
		if err := rows.Scan(
			&doctor.ID,
			&doctor.Name,
			&doctor.Specialty,
			&doctor.Photo,
			&doctor.Bio,
			&doctor.CreatedAt,
		); err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *DoctorRepository) Get(ctx context.Context, id int) (types.Doctor, error) {
	const query = `
		SELECT id, name, specialty, photo, bio, created_at
		FROM doctors
		WHERE id = $1`
	var doctor types.Doctor
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doctor.ID,
		&doctor.Name,
		&doctor.Specialty,
		&doctor.Photo,
		&doctor.Bio,
		&doctor.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Doctor{}, ErrNotFound
		}
		return types.Doctor{}, err
	}
	return doctor, nil
}

func (r *DoctorRepository) Create(ctx context.Context, doctor types.Doctor) (types.Doctor, error) {
	doctor.CreatedAt = time.Now()

	const query = `
		INSERT INTO doctors (name, specialty, photo, bio, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		doctor.Name,
		doctor.Specialty,
		doctor.Photo,
		doctor.Bio,
		doctor.CreatedAt,
	).Scan(&doctor.ID); err != nil {
		return types.Doctor{}, err
	}
	return doctor, nil
}
