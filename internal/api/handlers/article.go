package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biomente/biomente/internal/api"
)

type ArticleService interface {
	ToggleSave(ctx context.Context, doi string) error
	ToggleCompare(doi string)
}

type ArticleHandler struct {
	svc ArticleService
}

func NewArticleHandler(svc ArticleService) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

type SaveArticleRequest struct {
	DOI string `json:"doi"`
}

// Save flips the saved status of the identified article.
func (h *ArticleHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DOI == "" {
		api.Error(w, http.StatusBadRequest, "doi is required")
		return
	}

	if err := h.svc.ToggleSave(r.Context(), req.DOI); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"doi": req.DOI})
}

// MarkCompare flips the comparison mark on the identified article.
func (h *ArticleHandler) MarkCompare(w http.ResponseWriter, r *http.Request) {
	doi := chi.URLParam(r, "doi")
	if doi == "" {
		api.Error(w, http.StatusBadRequest, "doi is required")
		return
	}

	h.svc.ToggleCompare(doi)
	api.Success(w, http.StatusOK, map[string]string{"doi": doi})
}
