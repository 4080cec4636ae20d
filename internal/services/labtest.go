package services

import (
	"context"

	"github.com/diaglab/apiserver/types"
)

// LabTestRepository defines persistence operations for lab tests.
type LabTestRepository interface {
	List(ctx context.Context) ([]types.LabTest, error)
	Get(ctx context.Context, id int) (types.LabTest, error)
	Create(ctx context.Context, test types.LabTest) (types.LabTest, error)
	Update(ctx context.Context, test types.LabTest) (types.LabTest, error)
	Delete(ctx context.Context, id int) error
	BookSlot(ctx context.Context, id int) error
}

// LabTestService encapsulates lab-test use-cases.
type LabTestService struct {
	repo LabTestRepository
}

func NewLabTestService(repo LabTestRepository) *LabTestService {
	return &LabTestService{repo: repo}
}

func (s *LabTestService) List(ctx context.Context) ([]types.LabTest, error) {
	return s.repo.List(ctx)
}

func (s *LabTestService) Get(ctx context.Context, id int) (types.LabTest, error) {
	return s.repo.Get(ctx, id)
}

func (s *LabTestService) Create(ctx context.Context, test types.LabTest) (types.LabTest, error) {
	return s.repo.Create(ctx, test)
}

func (s *LabTestService) Update(ctx context.Context, test types.LabTest) (types.LabTest, error) {
	return s.repo.Update(ctx, test)
}

func (s *LabTestService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *LabTestService) BookSlot(ctx context.Context, id int) error {
	return s.repo.BookSlot(ctx, id)
}
