package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veridoc/docguard/internal/application/services"
	"github.com/veridoc/docguard/internal/domain/entities"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

type fakeComplianceService struct {
	activeIDs        []string
	evaluatedIDs     []string
	evaluateAllIDs   []string
	checks           []*entities.ComplianceCheck
	evaluateAllCalls int
}

func (f *fakeComplianceService) Evaluate(_ context.Context, _ entities.Actor, doc *entities.Document, _ *entities.ExtractedEntitySet, frameworkID string) (*entities.ComplianceCheck, error) {
	f.evaluatedIDs = append(f.evaluatedIDs, frameworkID)
	return &entities.ComplianceCheck{
		ID:          "check-1",
		DocumentID:  doc.ID,
		FrameworkID: frameworkID,
		Score:       85,
		Status:      entities.CheckStatusPassed,
	}, nil
}

func (f *fakeComplianceService) EvaluateAll(_ context.Context, _ entities.Actor, doc *entities.Document, _ *entities.ExtractedEntitySet, frameworkIDs []string) []services.FrameworkResult {
	f.evaluateAllCalls++
	f.evaluateAllIDs = frameworkIDs
	results := make([]services.FrameworkResult, 0, len(frameworkIDs))
	for _, id := range frameworkIDs {
		results = append(results, services.FrameworkResult{
			FrameworkID: id,
			Check:       &entities.ComplianceCheck{ID: "check-" + id, DocumentID: doc.ID, FrameworkID: id},
		})
	}
	return results
}

func (f *fakeComplianceService) ListChecks(_ context.Context, documentID string) ([]*entities.ComplianceCheck, error) {
	return f.checks, nil
}

func (f *fakeComplianceService) ActiveFrameworkIDs(_ context.Context) ([]string, error) {
	return f.activeIDs, nil
}

type fakeDocumentReader struct {
	doc *entities.Document
	err error
}

func (f *fakeDocumentReader) GetDocument(_ context.Context, id string) (*entities.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type fakeEntitySetReader struct {
	set *entities.ExtractedEntitySet
	err error
}

func (f *fakeEntitySetReader) GetLatest(_ context.Context, documentID string) (*entities.ExtractedEntitySet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

func newComplianceHandlerFixture(svc *fakeComplianceService) *ComplianceHandler {
	return NewComplianceHandler(svc,
		&fakeDocumentReader{doc: &entities.Document{ID: "doc-1"}},
		&fakeEntitySetReader{err: apperrors.NewNotFoundError("entity set not found")})
}

func TestEvaluateCompliance_SingleFramework(t *testing.T) {
	svc := &fakeComplianceService{}
	handler := newComplianceHandlerFixture(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/compliance",
		strings.NewReader(`{"framework_id":"sox-2024"}`))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.EvaluateCompliance(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"sox-2024"}, svc.evaluatedIDs)
	assert.Zero(t, svc.evaluateAllCalls)
	assert.Contains(t, rec.Body.String(), `"framework_id":"sox-2024"`)
}

func TestEvaluateCompliance_EmptyBodyEvaluatesAllActive(t *testing.T) {
	svc := &fakeComplianceService{activeIDs: []string{"sox-2024", "gdpr-2024"}}
	handler := newComplianceHandlerFixture(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/compliance", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.EvaluateCompliance(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, svc.evaluateAllCalls)
	assert.Equal(t, []string{"sox-2024", "gdpr-2024"}, svc.evaluateAllIDs)
}

func TestEvaluateCompliance_NoActiveFrameworks(t *testing.T) {
	svc := &fakeComplianceService{}
	handler := newComplianceHandlerFixture(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/compliance",
		strings.NewReader(`{}`))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.EvaluateCompliance(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, svc.evaluateAllCalls)
}

func TestEvaluateCompliance_MalformedBody(t *testing.T) {
	svc := &fakeComplianceService{}
	handler := newComplianceHandlerFixture(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/compliance",
		strings.NewReader("{not json"))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.EvaluateCompliance(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.evaluateAllCalls)
	assert.Empty(t, svc.evaluatedIDs)
}

func TestListComplianceChecks_EmptyIsArray(t *testing.T) {
	svc := &fakeComplianceService{}
	handler := newComplianceHandlerFixture(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/compliance", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.ListComplianceChecks(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"checks":[]`)
}
