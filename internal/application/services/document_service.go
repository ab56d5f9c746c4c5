package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/repositories"
	"github.com/veridoc/docguard/internal/infrastructure/observability"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

// IngestResult is everything produced by one pass of the scoring pipeline.
type IngestResult struct {
	Document   *entities.Document           `json:"document"`
	EntitySet  *entities.ExtractedEntitySet `json:"entity_set"`
	Assessment *entities.RiskAssessment     `json:"assessment"`
}

// DocumentService runs the ingest pipeline: persist the document, extract
// entities, score risk. Extraction always completes before risk scoring;
// compliance evaluation is independent and may run concurrently with the
// pipeline.
type DocumentService struct {
	docs       repositories.DocumentRepository
	extraction *ExtractionService
	risk       *RiskService
	auditor    Auditor
	metrics    *observability.Metrics
}

// NewDocumentService creates a new document service.
func NewDocumentService(docs repositories.DocumentRepository, extraction *ExtractionService, risk *RiskService, auditor Auditor, metrics *observability.Metrics) *DocumentService {
	return &DocumentService{
		docs:       docs,
		extraction: extraction,
		risk:       risk,
		auditor:    auditor,
		metrics:    metrics,
	}
}

// Ingest runs the full pipeline for one document. The caller-supplied flags
// are augmented with what extraction actually found: a date or amount the
// extractor recognized counts as present even if the upstream form omitted
// the flag.
func (s *DocumentService) Ingest(ctx context.Context, actor entities.Actor, doc *entities.Document, flags RiskFlags) (*IngestResult, error) {
	if doc.RawText == "" {
		return nil, apperrors.NewValidationError("raw text is required")
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, AuditEntry{
		TableName:  "documents",
		RecordID:   doc.ID,
		ActionType: entities.ActionCreate,
		NewValues: map[string]interface{}{
			"mime_type": doc.MimeType,
			"file_size": doc.FileSize,
			"tags":      doc.Tags,
		},
		RiskLevel: entities.AuditRiskLow,
	})

	set := s.extraction.Extract(doc.RawText)
	if err := s.extraction.SaveSet(ctx, doc.ID, set); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, AuditEntry{
		TableName:  "entity_sets",
		RecordID:   set.ID,
		ActionType: entities.ActionCreate,
		NewValues: map[string]interface{}{
			"document_id":        doc.ID,
			"overall_confidence": set.OverallConfidence,
		},
		RiskLevel: entities.AuditRiskLow,
	})

	flags.HasDate = flags.HasDate || len(set.Dates) > 0
	flags.HasAmount = flags.HasAmount || len(set.Amounts) > 0

	assessment, err := s.risk.Analyze(set, flags)
	if err != nil {
		return nil, err
	}
	if err := s.risk.Save(ctx, actor, assessment); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DocumentsIngested.Add(ctx, 1)
		s.metrics.AnomaliesDetected.Add(ctx, int64(len(assessment.Anomalies)))
	}

	return &IngestResult{Document: doc, EntitySet: set, Assessment: assessment}, nil
}

// GetDocument returns one document by id.
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*entities.Document, error) {
	return s.docs.GetByID(ctx, id)
}

// ListDocuments pages through stored documents.
func (s *DocumentService) ListDocuments(ctx context.Context, limit, offset int) ([]*entities.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.docs.List(ctx, limit, offset)
}
