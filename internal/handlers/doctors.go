package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/internal/store"
	"github.com/diaglab/apiserver/types"
)

// DoctorHandler provides HTTP handlers for doctors.
type DoctorHandler struct {
	doctorService *services.DoctorService
}

// NewDoctorHandler constructs a handler with the provided service.
func NewDoctorHandler(doctorService *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

// DoctorRouter registers doctor routes on the given router.
func DoctorRouter(r chi.Router, doctorService *services.DoctorService, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	handler := NewDoctorHandler(doctorService)

	r.Get("/", handler.List)
	r.With(requireAuth, requireAdmin).Post("/", handler.Create)
	r.Get("/{id}", handler.Get)
}

func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctorService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list doctors")
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (h *DoctorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doctor, err := h.doctorService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "doctor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch doctor")
		return
	}
	writeJSON(w, http.StatusOK, doctor)
}

func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var doctor types.Doctor
	if err := json.NewDecoder(r.Body).Decode(&doctor); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	doctor.Name = strings.TrimSpace(doctor.Name)
	if doctor.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.doctorService.Create(r.Context(), doctor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create doctor")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
