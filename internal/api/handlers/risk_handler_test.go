package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veridoc/docguard/internal/domain/entities"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

type fakeRiskService struct {
	assessment *entities.RiskAssessment
	err        error
	called     bool
}

func (f *fakeRiskService) GetLatest(_ context.Context, documentID string) (*entities.RiskAssessment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assessment, nil
}

func (f *fakeRiskService) Review(_ context.Context, _ entities.Actor, id string, target entities.AssessmentStatus, notes string) (*entities.RiskAssessment, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return &entities.RiskAssessment{ID: id, Status: target, ReviewerNotes: notes}, nil
}

func TestGetDocumentRisk_Success(t *testing.T) {
	svc := &fakeRiskService{assessment: &entities.RiskAssessment{ID: "a-1", RiskScore: 55}}
	handler := NewRiskHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/risk", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.GetDocumentRisk(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"risk_score":55`)
}

func TestReviewAssessment_RejectsUnknownStatus(t *testing.T) {
	svc := &fakeRiskService{}
	handler := NewRiskHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/assessments/a-1/review",
		strings.NewReader(`{"status":"PENDING"}`))
	req.SetPathValue("id", "a-1")
	rec := httptest.NewRecorder()

	handler.ReviewAssessment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, svc.called)
}

func TestReviewAssessment_InvalidTransition(t *testing.T) {
	svc := &fakeRiskService{err: apperrors.NewValidationError("cannot transition assessment from APPROVED to FLAGGED")}
	handler := NewRiskHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/assessments/a-1/review",
		strings.NewReader(`{"status":"FLAGGED"}`))
	req.SetPathValue("id", "a-1")
	rec := httptest.NewRecorder()

	handler.ReviewAssessment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
