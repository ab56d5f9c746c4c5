package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/veridoc/docguard/internal/application/services"
	"github.com/veridoc/docguard/internal/domain/entities"
)

// DocumentIngestService defines the document operations used by the handler.
type DocumentIngestService interface {
	Ingest(ctx context.Context, actor entities.Actor, doc *entities.Document, flags services.RiskFlags) (*services.IngestResult, error)
	GetDocument(ctx context.Context, id string) (*entities.Document, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]*entities.Document, error)
}

// DocumentHandler handles document ingestion and reads.
type DocumentHandler struct {
	service DocumentIngestService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(service DocumentIngestService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

type ingestRequest struct {
	RawText  string             `json:"raw_text"`
	Tags     []string           `json:"tags"`
	MimeType string             `json:"mime_type"`
	FileSize int64              `json:"file_size"`
	Flags    services.RiskFlags `json:"flags"`
}

// IngestDocument handles POST /api/documents: persist, extract, score.
func (h *DocumentHandler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var payload ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if strings.TrimSpace(payload.RawText) == "" {
		respondWithError(w, http.StatusBadRequest, "raw_text is required")
		return
	}

	doc := &entities.Document{
		RawText:  payload.RawText,
		Tags:     payload.Tags,
		MimeType: payload.MimeType,
		FileSize: payload.FileSize,
	}

	result, err := h.service.Ingest(r.Context(), actorFromRequest(r), doc, payload.Flags)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// GetDocument handles GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doc)
}

// ListDocuments handles GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	docs, err := h.service.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if docs == nil {
		docs = []*entities.Document{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"limit":     limit,
		"offset":    offset,
	})
}
