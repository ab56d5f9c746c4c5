package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/veridoc/docguard/internal/application/services"
	"github.com/veridoc/docguard/internal/domain/entities"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

// ComplianceEvaluationService defines the compliance operations used by the
// handler.
type ComplianceEvaluationService interface {
	Evaluate(ctx context.Context, actor entities.Actor, doc *entities.Document, set *entities.ExtractedEntitySet, frameworkID string) (*entities.ComplianceCheck, error)
	EvaluateAll(ctx context.Context, actor entities.Actor, doc *entities.Document, set *entities.ExtractedEntitySet, frameworkIDs []string) []services.FrameworkResult
	ListChecks(ctx context.Context, documentID string) ([]*entities.ComplianceCheck, error)
	ActiveFrameworkIDs(ctx context.Context) ([]string, error)
}

// EntitySetReader fetches the latest extraction for a document.
type EntitySetReader interface {
	GetLatest(ctx context.Context, documentID string) (*entities.ExtractedEntitySet, error)
}

// DocumentReader fetches documents for evaluation.
type DocumentReader interface {
	GetDocument(ctx context.Context, id string) (*entities.Document, error)
}

// ComplianceHandler handles compliance evaluation and check reads.
type ComplianceHandler struct {
	service   ComplianceEvaluationService
	documents DocumentReader
	sets      EntitySetReader
}

// NewComplianceHandler creates a new compliance handler.
func NewComplianceHandler(service ComplianceEvaluationService, documents DocumentReader, sets EntitySetReader) *ComplianceHandler {
	return &ComplianceHandler{
		service:   service,
		documents: documents,
		sets:      sets,
	}
}

type evaluateRequest struct {
	FrameworkID  string   `json:"framework_id"`
	FrameworkIDs []string `json:"framework_ids"`
}

// EvaluateCompliance handles POST /api/documents/{id}/compliance. With no
// framework in the body, every active framework is evaluated.
func (h *ComplianceHandler) EvaluateCompliance(w http.ResponseWriter, r *http.Request) {
	// An empty body means "evaluate every active framework".
	var payload evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ctx := r.Context()
	doc, err := h.documents.GetDocument(ctx, r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	// A document with no extraction yet is still evaluable; entity bonuses
	// simply do not apply.
	set, err := h.sets.GetLatest(ctx, doc.ID)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			respondWithServiceError(w, err)
			return
		}
		set = nil
	}

	actor := actorFromRequest(r)

	if payload.FrameworkID != "" {
		check, err := h.service.Evaluate(ctx, actor, doc, set, payload.FrameworkID)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, check)
		return
	}

	frameworkIDs := payload.FrameworkIDs
	if len(frameworkIDs) == 0 {
		frameworkIDs, err = h.service.ActiveFrameworkIDs(ctx)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		if len(frameworkIDs) == 0 {
			respondWithError(w, http.StatusUnprocessableEntity, "no active compliance frameworks configured")
			return
		}
	}

	results := h.service.EvaluateAll(ctx, actor, doc, set, frameworkIDs)
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"results": results})
}

// ListComplianceChecks handles GET /api/documents/{id}/compliance
func (h *ComplianceHandler) ListComplianceChecks(w http.ResponseWriter, r *http.Request) {
	checks, err := h.service.ListChecks(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if checks == nil {
		checks = []*entities.ComplianceCheck{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"checks": checks})
}
