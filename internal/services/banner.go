package services

import (
	"context"

	"github.com/diaglab/apiserver/types"
)

// BannerRepository defines persistence operations for banners.
type BannerRepository interface {
	List(ctx context.Context) ([]types.Banner, error)
	GetActive(ctx context.Context) (types.Banner, error)
	Create(ctx context.Context, banner types.Banner) (types.Banner, error)
	Activate(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

// BannerService encapsulates banner use-cases.
type BannerService struct {
	repo BannerRepository
}

func NewBannerService(repo BannerRepository) *BannerService {
	return &BannerService{repo: repo}
}

func (s *BannerService) List(ctx context.Context) ([]types.Banner, error) {
	return s.repo.List(ctx)
}

func (s *BannerService) GetActive(ctx context.Context) (types.Banner, error) {
	return s.repo.GetActive(ctx)
}

func (s *BannerService) Create(ctx context.Context, banner types.Banner) (types.Banner, error) {
	// Activation goes through Activate so the single-active
	// invariant holds from the moment a banner exists.
	banner.IsActive = false
	return s.repo.Create(ctx, banner)
}

func (s *BannerService) Activate(ctx context.Context, id int) error {
	return s.repo.Activate(ctx, id)
}

func (s *BannerService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
