package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/diaglab/apiserver/types"
)

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	List(ctx context.Context) ([]types.Reservation, error)
	ListByEmail(ctx context.Context, email string) ([]types.Reservation, error)
	ListByTestName(ctx context.Context, testName string) ([]types.Reservation, error)
	Get(ctx context.Context, id int) (types.Reservation, error)
	Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error)
	Delete(ctx context.Context, id int) error
}

// ReservationService encapsulates reservation use-cases.
type ReservationService struct {
	repo     ReservationRepository
	notifier Notifier
}

func NewReservationService(repo ReservationRepository, notifier Notifier) *ReservationService {
	return &ReservationService{repo: repo, notifier: notifier}
}

func (s *ReservationService) List(ctx context.Context) ([]types.Reservation, error) {
	return s.repo.List(ctx)
}

func (s *ReservationService) ListByEmail(ctx context.Context, email string) ([]types.Reservation, error) {
	return s.repo.ListByEmail(ctx, email)
}

func (s *ReservationService) ListByTestName(ctx context.Context, testName string) ([]types.Reservation, error) {
	return s.repo.ListByTestName(ctx, testName)
}

func (s *ReservationService) Get(ctx context.Context, id int) (types.Reservation, error) {
	return s.repo.Get(ctx, id)
}

// Create stores the reservation and publishes a reservation.created
// event. Publishing is best-effort; a broker failure never fails the
// booking.
func (s *ReservationService) Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	created, err := s.repo.Create(ctx, reservation)
	if err != nil {
		return types.Reservation{}, err
	}

	if s.notifier != nil {
		payload, _ := json.Marshal(created)
		attrs := map[string]string{"email": created.Email}
		if _, err := s.notifier.Publish(ctx, ChannelReservationCreated, payload, attrs); err != nil {
			log.Printf("publish %s for reservation %d: %v", ChannelReservationCreated, created.ID, err)
		}
	}
	return created, nil
}

func (s *ReservationService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
