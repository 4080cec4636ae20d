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

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.With(requireAuth, requireAdmin).Get("/", handler.List)
	r.Post("/", handler.Create)
	r.With(requireAuth).Get("/admin/{email}", handler.AdminStatus)
	r.With(requireAuth, requireAdmin).Patch("/admin/{email}", handler.PromoteAdmin)
	r.Get("/singleUser/{id}", handler.GetByID)
	// chi allows one wildcard name per segment, so the GET (email)
	// and PATCH (numeric id) share the {email} placeholder.
	r.With(requireAuth).Get("/{email}", handler.GetByEmail)
	r.Patch("/{email}", handler.UpdateProfile)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Create registers a user keyed by email. The route is open because
// the front end syncs every sign-up through it before a token exists.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var user types.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if user.Role == "" {
		user.Role = "user"
	}

	created, err := h.userService.Create(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// AdminStatus reports whether the caller is an admin. The path email
// must match the token email; asking about anyone else is forbidden.
func (h *UserHandler) AdminStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	email := chi.URLParam(r, "email")
	if email != identity.Email {
		writeError(w, http.StatusForbidden, "unauthorized access")
		return
	}

	admin := false
	user, err := h.userService.GetByEmail(r.Context(), email)
	switch {
	case err == nil:
		admin = user.Role == adminRole
	case errors.Is(err, store.ErrNotFound):
		// No record yet: not an admin.
	default:
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, AdminStatusResponse{Admin: admin})
}

// AdminStatusResponse reports the caller's admin standing.
type AdminStatusResponse struct {
	Admin bool `json:"admin"`
}

func (h *UserHandler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "email")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.SetRole(r.Context(), id, adminRole); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.userService.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "email")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user types.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.userService.UpdateProfile(r.Context(), id, user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}
