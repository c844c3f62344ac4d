package handlers

import (
	"context"
	"net/http"

	"github.com/biomente/biomente/internal/api"
)

type BibliographyService interface {
	ExportBibliography(ctx context.Context) (string, error)
}

type BibliographyHandler struct {
	svc BibliographyService
}

func NewBibliographyHandler(svc BibliographyService) *BibliographyHandler {
	return &BibliographyHandler{svc: svc}
}

type BibliographyResponse struct {
	Bibliography string `json:"bibliography"`
}

// Export generates an APA 7 bibliography from the active project's saved articles.
func (h *BibliographyHandler) Export(w http.ResponseWriter, r *http.Request) {
	bibliography, err := h.svc.ExportBibliography(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, BibliographyResponse{Bibliography: bibliography})
}
