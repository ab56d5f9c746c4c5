package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridoc/docguard/internal/domain/entities"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

func newTestDocumentService() (*DocumentService, *memDocRepo, *memEntitySetRepo, *memAssessmentRepo, *recordingAuditor) {
	docs := newMemDocRepo()
	sets := &memEntitySetRepo{}
	assessments := &memAssessmentRepo{}
	auditor := &recordingAuditor{}
	extraction := NewExtractionService(sets)
	risk := NewRiskService(assessments, auditor, 0)
	svc := NewDocumentService(docs, extraction, risk, auditor, nil)
	return svc, docs, sets, assessments, auditor
}

func TestIngest_RunsFullPipeline(t *testing.T) {
	svc, docs, sets, assessments, auditor := newTestDocumentService()
	ctx := context.Background()
	actor := entities.Actor{UserID: "ingest-job", IPAddress: "127.0.0.1"}

	doc := &entities.Document{
		RawText:  "On 12/01/2024 Initech LLC wired $150,000.00 from Account 987654321000",
		Tags:     []string{"wire"},
		MimeType: "application/pdf",
		FileSize: 1024,
	}

	result, err := svc.Ingest(ctx, actor, doc, RiskFlags{HasDescription: true, WeekendTransactions: true})
	require.NoError(t, err)

	// Document persisted with generated id and timestamp.
	assert.NotEmpty(t, result.Document.ID)
	assert.False(t, result.Document.CreatedAt.IsZero())
	_, err = docs.GetByID(ctx, result.Document.ID)
	require.NoError(t, err)

	// Extraction ran before scoring and was persisted.
	require.NotNil(t, result.EntitySet)
	assert.NotEmpty(t, result.EntitySet.Amounts)
	assert.Len(t, sets.sets, 1)

	// Extracted dates/amounts count as present even though the caller's
	// flags omitted them.
	assert.False(t, result.Assessment.Factors["missing_data"].Triggered)

	// large_amounts (25) + unusual_pattern (30).
	assert.Equal(t, 55, result.Assessment.RiskScore)
	assert.Equal(t, entities.AssessmentStatusPending, result.Assessment.Status)
	assert.Len(t, assessments.assessments, 1)

	// One CREATE audit event per persisted artifact.
	assert.Len(t, auditor.entriesFor("documents"), 1)
	assert.Len(t, auditor.entriesFor("entity_sets"), 1)
	assert.Len(t, auditor.entriesFor("risk_assessments"), 1)
}

func TestIngest_RequiresRawText(t *testing.T) {
	svc, _, _, _, auditor := newTestDocumentService()

	result, err := svc.Ingest(context.Background(), entities.Actor{}, &entities.Document{}, RiskFlags{})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, auditor.entries)
}

func TestIngest_ReingestKeepsHistory(t *testing.T) {
	svc, _, sets, assessments, _ := newTestDocumentService()
	ctx := context.Background()
	actor := entities.Actor{UserID: "ingest-job"}

	doc := &entities.Document{ID: "doc-1", RawText: "Paid $250.00 on 1/2/2024 for services rendered by Initech LLC"}
	_, err := svc.Ingest(ctx, actor, doc, RiskFlags{HasDescription: true})
	require.NoError(t, err)

	// Re-ingest produces an additional set and assessment, superseding
	// rather than overwriting.
	redo := &entities.Document{ID: "doc-1", RawText: doc.RawText}
	second, err := svc.Ingest(ctx, actor, redo, RiskFlags{HasDescription: true})
	require.NoError(t, err)

	assert.Len(t, sets.sets, 2)
	assert.Len(t, assessments.assessments, 2)
	assert.Equal(t, sets.sets[0].ID, second.EntitySet.SupersedesID)
	assert.Equal(t, assessments.assessments[0].ID, second.Assessment.SupersedesID)
}
