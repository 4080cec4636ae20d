package services

import (
	"context"

	"github.com/diaglab/apiserver/types"
)

// DoctorRepository defines persistence operations for doctors.
type DoctorRepository interface {
	List(ctx context.Context) ([]types.Doctor, error)
	Get(ctx context.Context, id int) (types.Doctor, error)
	Create(ctx context.Context, doctor types.Doctor) (types.Doctor, error)
}

// DoctorService encapsulates doctor use-cases.
type DoctorService struct {
	repo DoctorRepository
}

func NewDoctorService(repo DoctorRepository) *DoctorService {
	return &DoctorService{repo: repo}
}

func (s *DoctorService) List(ctx context.Context) ([]types.Doctor, error) {
	return s.repo.List(ctx)
}

func (s *DoctorService) Get(ctx context.Context, id int) (types.Doctor, error) {
	return s.repo.Get(ctx, id)
}

func (s *DoctorService) Create(ctx context.Context, doctor types.Doctor) (types.Doctor, error) {
	return s.repo.Create(ctx, doctor)
}
