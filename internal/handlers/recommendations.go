package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/types"
)

// RecommendationHandler provides HTTP handlers for the public
// recommendation feed.
type RecommendationHandler struct {
	recommendationService *services.RecommendationService
}

// NewRecommendationHandler constructs a handler with the provided service.
func NewRecommendationHandler(recommendationService *services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// RecommendationRouter registers recommendation routes on the given router.
func RecommendationRouter(r chi.Router, recommendationService *services.RecommendationService) {
	handler := NewRecommendationHandler(recommendationService)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
}

func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	recommendations, err := h.recommendationService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list recommendations")
		return
	}
	writeJSON(w, http.StatusOK, recommendations)
}

func (h *RecommendationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rec types.Recommendation
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := h.recommendationService.Create(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create recommendation")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
