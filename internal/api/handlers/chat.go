package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biomente/biomente/internal/api"
	"github.com/biomente/biomente/internal/domain"
)

type ChatService interface {
	ChatMessage(ctx context.Context, doi, message string, history []domain.ChatMessage) (string, error)
	EndChat(doi string)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	DOI     string `json:"doi"`
	Message string `json:"message"`
	// History replays a prior transcript when the daemon has no live session for the
	// article, e.g. after a restart.
	History []domain.ChatMessage `json:"history,omitempty"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// Message sends one user message in the conversation about an article.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DOI == "" {
		api.Error(w, http.StatusBadRequest, "doi is required")
		return
	}
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.svc.ChatMessage(r.Context(), req.DOI, req.Message, req.History)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{Reply: reply})
}

// End closes the conversation bound to an article.
func (h *ChatHandler) End(w http.ResponseWriter, r *http.Request) {
	doi := chi.URLParam(r, "doi")
	if doi == "" {
		api.Error(w, http.StatusBadRequest, "doi is required")
		return
	}

	h.svc.EndChat(doi)
	api.Success(w, http.StatusOK, map[string]string{"status": "ended"})
}
