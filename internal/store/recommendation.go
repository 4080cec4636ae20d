package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/diaglab/apiserver/types"
)

// RecommendationRepository handles persistence for recommendations.
type RecommendationRepository struct {
	db *sql.DB
}

func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

func (r *RecommendationRepository) List(ctx context.Context) ([]types.Recommendation, error) {
	const query = `
		SELECT id, title, body, author, created_at
		FROM recommendations
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recommendations := make([]types.Recommendation, 0)
	for rows.Next() {
		var rec types.Recommendation
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Body, &rec.Author, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recommendations = append(recommendations, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recommendations, nil
}

func (r *RecommendationRepository) Create(ctx context.Context, rec types.Recommendation) (types.Recommendation, error) {
	rec.CreatedAt = time.Now()

	const query = `
		INSERT INTO recommendations (title, body, author, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		rec.Title,
		rec.Body,
		rec.Author,
		rec.CreatedAt,
	).Scan(&rec.ID); err != nil {
		return types.Recommendation{}, err
	}
	return rec, nil
}
