package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veridoc/docguard/internal/domain/entities"
)

// RiskReviewService defines the assessment operations used by the handler.
type RiskReviewService interface {
	GetLatest(ctx context.Context, documentID string) (*entities.RiskAssessment, error)
	Review(ctx context.Context, actor entities.Actor, assessmentID string, target entities.AssessmentStatus, notes string) (*entities.RiskAssessment, error)
}

// RiskHandler handles risk assessment reads and reviews.
type RiskHandler struct {
	service RiskReviewService
}

// NewRiskHandler creates a new risk handler.
func NewRiskHandler(service RiskReviewService) *RiskHandler {
	return &RiskHandler{service: service}
}

// GetDocumentRisk handles GET /api/documents/{id}/risk
func (h *RiskHandler) GetDocumentRisk(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.service.GetLatest(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, assessment)
}

type reviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

var reviewableStatuses = map[entities.AssessmentStatus]bool{
	entities.AssessmentStatusReviewed: true,
	entities.AssessmentStatusApproved: true,
	entities.AssessmentStatusFlagged:  true,
}

// ReviewAssessment handles POST /api/assessments/{id}/review
func (h *RiskHandler) ReviewAssessment(w http.ResponseWriter, r *http.Request) {
	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	target := entities.AssessmentStatus(payload.Status)
	if !reviewableStatuses[target] {
		respondWithError(w, http.StatusBadRequest, "status must be REVIEWED, APPROVED or FLAGGED")
		return
	}

	assessment, err := h.service.Review(r.Context(), actorFromRequest(r), r.PathValue("id"), target, payload.Notes)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, assessment)
}
