package handlers

import (
	"context"
	"net/http"

	"github.com/veridoc/docguard/internal/domain/entities"
)

// AuditReadService defines the audit trail reads used by the handler.
type AuditReadService interface {
	ListByRecord(ctx context.Context, recordID string, limit, offset int) ([]*entities.AuditEvent, error)
}

// AuditHandler serves audit trail reads. There is intentionally no write
// endpoint; events are only ever recorded by the services themselves.
type AuditHandler struct {
	service AuditReadService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(service AuditReadService) *AuditHandler {
	return &AuditHandler{service: service}
}

// GetRecordAudit handles GET /api/audit/{recordId}
func (h *AuditHandler) GetRecordAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	events, err := h.service.ListByRecord(r.Context(), r.PathValue("recordId"), limit, offset)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if events == nil {
		events = []*entities.AuditEvent{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"limit":  limit,
		"offset": offset,
	})
}
