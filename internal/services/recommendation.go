package services

import (
	"context"

	"github.com/diaglab/apiserver/types"
)

// RecommendationRepository defines persistence operations for recommendations.
type RecommendationRepository interface {
	List(ctx context.Context) ([]types.Recommendation, error)
	Create(ctx context.Context, rec types.Recommendation) (types.Recommendation, error)
}

// RecommendationService encapsulates recommendation use-cases.
type RecommendationService struct {
	repo RecommendationRepository
}

func NewRecommendationService(repo RecommendationRepository) *RecommendationService {
	return &RecommendationService{repo: repo}
}

func (s *RecommendationService) List(ctx context.Context) ([]types.Recommendation, error) {
	return s.repo.List(ctx)
}

func (s *RecommendationService) Create(ctx context.Context, rec types.Recommendation) (types.Recommendation, error) {
	return s.repo.Create(ctx, rec)
}
