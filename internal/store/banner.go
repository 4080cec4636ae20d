package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/diaglab/apiserver/types"
)

// BannerRepository handles persistence for banners.
type BannerRepository struct {
	db *sql.DB
}

func NewBannerRepository(db *sql.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

func (r *BannerRepository) List(ctx context.Context) ([]types.Banner, error) {
	const query = `
		SELECT id, title, image, text, coupon_code, discount_pct, is_active, created_at
		FROM banners
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	banners := make([]types.Banner, 0)
	for rows.Next() {
		var banner types.Banner
		if err := rows.Scan(
			&banner.ID,
			&banner.Title,
			&banner.Image,
			&banner.Text,
			&banner.CouponCode,
			&banner.DiscountPct,
			&banner.IsActive,
			&banner.CreatedAt,
		); err != nil {
			return nil, err
		}
		banners = append(banners, banner)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return banners, nil
}

func (r *BannerRepository) GetActive(ctx context.Context) (types.Banner, error) {
	const query = `
		SELECT id, title, image, text, coupon_code, discount_pct, is_active, created_at
		FROM banners
		WHERE is_active
		LIMIT 1`
	var banner types.Banner
	err := r.db.QueryRowContext(ctx, query).Scan(
		&banner.ID,
		&banner.Title,
		&banner.Image,
		&banner.Text,
		&banner.CouponCode,
		&banner.DiscountPct,
		&banner.IsActive,
		&banner.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Banner{}, ErrNotFound
		}
		return types.Banner{}, err
	}
	return banner, nil
}

func (r *BannerRepository) Create(ctx context.Context, banner types.Banner) (types.Banner, error) {
	banner.CreatedAt = time.Now()

	const query = `
		INSERT INTO banners (title, image, text, coupon_code, discount_pct, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		banner.Title,
		banner.Image,
		banner.Text,
		banner.CouponCode,
		banner.DiscountPct,
		banner.IsActive,
		banner.CreatedAt,
	).Scan(&banner.ID); err != nil {
		return types.Banner{}, err
	}
	return banner, nil
}

// Activate marks the given banner active and every other banner
// inactive. Both updates run in one transaction so readers never see
// zero or two active banners.
func (r *BannerRepository) Activate(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `UPDATE banners SET is_active = FALSE WHERE id <> $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `UPDATE banners SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *BannerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}
