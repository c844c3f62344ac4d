package handlers

import (
	"net/http"

	"github.com/biomente/biomente/internal/api"
	"github.com/biomente/biomente/internal/state"
)

type StateStore interface {
	Snapshot() state.Snapshot
}

type StateHandler struct {
	store StateStore
}

func NewStateHandler(store StateStore) *StateHandler {
	return &StateHandler{store: store}
}

// Get returns a consistent snapshot of the profile hierarchy and view state.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.store.Snapshot())
}
