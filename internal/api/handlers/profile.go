package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biomente/biomente/internal/api"
	"github.com/biomente/biomente/internal/domain"
)

type ProfileStore interface {
	CreateProfile(ctx context.Context, name string) (domain.Profile, error)
	SelectProfile(ctx context.Context, id string) error
	Logout(ctx context.Context)
}

// SessionResetter evicts all live chat sessions when the profile context changes.
type SessionResetter interface {
	Reset()
}

type ProfileHandler struct {
	store    ProfileStore
	sessions SessionResetter
}

func NewProfileHandler(store ProfileStore, sessions SessionResetter) *ProfileHandler {
	return &ProfileHandler{store: store, sessions: sessions}
}

type CreateProfileRequest struct {
	Name string `json:"name"`
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	profile, err := h.store.CreateProfile(r.Context(), req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, profile)
}

func (h *ProfileHandler) Select(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.store.SelectProfile(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}
	h.sessions.Reset()

	api.Success(w, http.StatusOK, map[string]string{"active_profile_id": id})
}

func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout(r.Context())
	h.sessions.Reset()
	api.Success(w, http.StatusOK, map[string]string{"status": "logged out"})
}
