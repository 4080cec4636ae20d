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

// LabTestHandler provides HTTP handlers for the lab-test catalog.
type LabTestHandler struct {
	testService *services.LabTestService
	collector   *metrics.Collector
}

// NewLabTestHandler constructs a handler with the provided dependencies.
func NewLabTestHandler(testService *services.LabTestService, collector *metrics.Collector) *LabTestHandler {
	return &LabTestHandler{testService: testService, collector: collector}
}

// LabTestRouter registers lab-test routes on the given router.
func LabTestRouter(r chi.Router, testService *services.LabTestService, collector *metrics.Collector, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	handler := NewLabTestHandler(testService, collector)

	r.Get("/", handler.List)
	r.With(requireAuth, requireAdmin).Post("/", handler.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(requireAuth, requireAdmin).Patch("/", handler.Update)
		r.With(requireAuth, requireAdmin).Delete("/", handler.Delete)
		r.With(requireAuth).Put("/", handler.Book)
	})
}

func (h *LabTestHandler) List(w http.ResponseWriter, r *http.Request) {
	tests, err := h.testService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tests")
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

func (h *LabTestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	test, err := h.testService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "test not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch test")
		return
	}
	writeJSON(w, http.StatusOK, test)
}

func (h *LabTestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var test types.LabTest
	if err := json.NewDecoder(r.Body).Decode(&test); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	test.Name = strings.TrimSpace(test.Name)
	if test.Name == "" {
		writeError(w, http.StatusBadRequest, "test name is required")
		return
	}
	if test.Slots < 0 {
		writeError(w, http.StatusBadRequest, "slots must not be negative")
		return
	}

	created, err := h.testService.Create(r.Context(), test)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create test")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *LabTestHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var test types.LabTest
	if err := json.NewDecoder(r.Body).Decode(&test); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	test.ID = id

	updated, err := h.testService.Update(r.Context(), test)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "test not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update test")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *LabTestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.testService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "test not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete test")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Book consumes one appointment slot. The decrement is a single
// conditional update in the store, so an exhausted test answers 409
// instead of going negative.
func (h *LabTestHandler) Book(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.testService.BookSlot(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "test not found")
		case errors.Is(err, store.ErrNoSlots):
			h.collector.RecordSlotsExhausted()
			writeError(w, http.StatusConflict, "no slots available")
		default:
			writeError(w, http.StatusInternalServerError, "failed to book test")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"booked": true})
}
