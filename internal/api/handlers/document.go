package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/biomente/biomente/internal/api"
	"github.com/biomente/biomente/internal/domain"
)

// maxUploadBytes caps the in-memory portion of a multipart upload
const maxUploadBytes = 25 << 20

type DocumentService interface {
	UploadDocument(ctx context.Context, fileName, contentType string, data []byte) (domain.Article, error)
	DocumentDownloadURL(ctx context.Context, key string) (string, error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload ingests a document sent as the "file" part of a multipart form.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "could not read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	article, err := h.svc.UploadDocument(r.Context(), header.Filename, contentType, data)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, article)
}

type DownloadURLResponse struct {
	URL string `json:"url"`
}

// DownloadURL returns a presigned URL for an archived original document.
func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		api.Error(w, http.StatusBadRequest, "key is required")
		return
	}

	url, err := h.svc.DocumentDownloadURL(r.Context(), key)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DownloadURLResponse{URL: url})
}
