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

// BannerHandler provides HTTP handlers for banners.
type BannerHandler struct {
	bannerService *services.BannerService
}

// NewBannerHandler constructs a handler with the provided service.
func NewBannerHandler(bannerService *services.BannerService) *BannerHandler {
	return &BannerHandler{bannerService: bannerService}
}

// BannerRouter registers banner routes on the given router.
func BannerRouter(r chi.Router, bannerService *services.BannerService, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	handler := NewBannerHandler(bannerService)

	r.Get("/", handler.List)
	r.Get("/active", handler.GetActive)
	r.With(requireAuth, requireAdmin).Post("/", handler.Create)
	r.With(requireAuth, requireAdmin).Patch("/active/{id}", handler.Activate)
	r.With(requireAuth, requireAdmin).Delete("/{id}", handler.Delete)
}

func (h *BannerHandler) List(w http.ResponseWriter, r *http.Request) {
	banners, err := h.bannerService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list banners")
		return
	}
	writeJSON(w, http.StatusOK, banners)
}

func (h *BannerHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	banner, err := h.bannerService.GetActive(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no active banner")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch banner")
		return
	}
	writeJSON(w, http.StatusOK, banner)
}

func (h *BannerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var banner types.Banner
	if err := json.NewDecoder(r.Body).Decode(&banner); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	banner.Title = strings.TrimSpace(banner.Title)
	if banner.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := h.bannerService.Create(r.Context(), banner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create banner")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Activate makes the named banner the single active one.
func (h *BannerHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.bannerService.Activate(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "banner not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to activate banner")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"activated": true})
}

func (h *BannerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.bannerService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "banner not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete banner")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
