package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/biomente/biomente/internal/api"
	"github.com/biomente/biomente/internal/state"
)

type SearchService interface {
	Search(ctx context.Context, query string) error
	SearchFromFragment(ctx context.Context, fragment string) error
	LoadMore(ctx context.Context) error
}

type SearchViewStore interface {
	View() state.View
	SetUseKnowledgeBase(enabled bool)
}

type SearchHandler struct {
	svc   SearchService
	store SearchViewStore
}

func NewSearchHandler(svc SearchService, store SearchViewStore) *SearchHandler {
	return &SearchHandler{svc: svc, store: store}
}

type SearchRequest struct {
	Query string `json:"query"`
	// UseKnowledgeBase, when present, sets the knowledge-base toggle before searching.
	UseKnowledgeBase *bool `json:"use_knowledge_base,omitempty"`
}

type FragmentSearchRequest struct {
	Fragment string `json:"fragment"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UseKnowledgeBase != nil {
		h.store.SetUseKnowledgeBase(*req.UseKnowledgeBase)
	}

	if err := h.svc.Search(r.Context(), req.Query); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, h.store.View())
}

func (h *SearchHandler) SearchFragment(w http.ResponseWriter, r *http.Request) {
	var req FragmentSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SearchFromFragment(r.Context(), req.Fragment); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, h.store.View())
}

func (h *SearchHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LoadMore(r.Context()); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, h.store.View())
}
