package handlers

import (
	"context"
	"net/http"

	"github.com/biomente/biomente/internal/api"
	"github.com/biomente/biomente/internal/state"
)

type ComparisonService interface {
	StartComparison(ctx context.Context) error
	ClearComparison()
}

type ComparisonViewStore interface {
	View() state.View
}

type ComparisonHandler struct {
	svc   ComparisonService
	store ComparisonViewStore
}

func NewComparisonHandler(svc ComparisonService, store ComparisonViewStore) *ComparisonHandler {
	return &ComparisonHandler{svc: svc, store: store}
}

// Start generates a comparative analysis over the currently marked articles.
func (h *ComparisonHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.StartComparison(r.Context()); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, h.store.View().ComparisonResult)
}

// Get returns the current comparison result, if any.
func (h *ComparisonHandler) Get(w http.ResponseWriter, r *http.Request) {
	result := h.store.View().ComparisonResult
	if result == nil {
		api.Error(w, http.StatusNotFound, "no comparison available")
		return
	}

	api.Success(w, http.StatusOK, result)
}

// Clear discards the current comparison result.
func (h *ComparisonHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearComparison()
	api.Success(w, http.StatusOK, map[string]string{"status": "cleared"})
}
