package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/diaglab/apiserver/internal/metrics"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/internal/store"
	"github.com/diaglab/apiserver/types"
)

// ReservationHandler provides HTTP handlers for reservations.
type ReservationHandler struct {
	reservationService *services.ReservationService
	collector          *metrics.Collector
}

// NewReservationHandler constructs a handler with the provided dependencies.
func NewReservationHandler(reservationService *services.ReservationService, collector *metrics.Collector) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService, collector: collector}
}

// ReservationRouter registers reservation routes on the given router.
func ReservationRouter(r chi.Router, reservationService *services.ReservationService, collector *metrics.Collector, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	handler := NewReservationHandler(reservationService, collector)

	r.Get("/", handler.List)
	r.With(requireAuth).Post("/", handler.Create)
	r.Get("/forResult/{id}", handler.Get)
	r.With(requireAuth, requireAdmin).Get("/forAdmin/{testName}", handler.ListByTestName)
	// Shared {email} placeholder: GET carries an email, DELETE a
	// numeric id. chi allows one wildcard name per segment.
	r.With(requireAuth).Get("/{email}", handler.ListByEmail)
	r.With(requireAuth).Delete("/{email}", handler.Delete)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

// Create books a reservation for the authenticated caller. The email
// always comes from the verified token, never from the body.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var reservation types.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	reservation.Email = identity.Email

	reservation.TestName = strings.TrimSpace(reservation.TestName)
	if reservation.TestName == "" {
		writeError(w, http.StatusBadRequest, "test name is required")
		return
	}

	created, err := h.reservationService.Create(r.Context(), reservation)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create reservation")
		return
	}

	h.collector.RecordReservationCreated()
	writeJSON(w, http.StatusCreated, created)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reservation, err := h.reservationService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "reservation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch reservation")
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	reservations, err := h.reservationService.ListByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *ReservationHandler) ListByTestName(w http.ResponseWriter, r *http.Request) {
	testName := chi.URLParam(r, "testName")

	reservations, err := h.reservationService.ListByTestName(r.Context(), testName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "email")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reservationService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "reservation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete reservation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
