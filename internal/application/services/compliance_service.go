package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/repositories"
	"github.com/veridoc/docguard/internal/infrastructure/observability"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

// Compliance score components. Every framework starts from the base; the
// structural bonuses reward signals that make a document auditable at all.
const (
	complianceBaseScore    = 60
	bonusTags              = 10
	bonusTextLength        = 10
	bonusEntities          = 10
	bonusTimestamp         = 5
	bonusFileSize          = 5
	minMeaningfulTextChars = 100
)

// FrameworkResult is the outcome of evaluating one framework. A failed
// evaluation carries Err and no Check; siblings are unaffected.
type FrameworkResult struct {
	FrameworkID string                    `json:"framework_id"`
	Check       *entities.ComplianceCheck `json:"check,omitempty"`
	Err         string                    `json:"error,omitempty"`
}

// ComplianceService evaluates documents against configured compliance
// frameworks. Each framework is scored independently; no cross-framework
// aggregation happens here.
type ComplianceService struct {
	frameworks repositories.FrameworkRepository
	checks     repositories.ComplianceCheckRepository
	auditor    Auditor
}

// NewComplianceService creates a new compliance service.
func NewComplianceService(frameworks repositories.FrameworkRepository, checks repositories.ComplianceCheckRepository, auditor Auditor) *ComplianceService {
	return &ComplianceService{frameworks: frameworks, checks: checks, auditor: auditor}
}

// Score computes the compliance score of a document under one framework.
// Pure: no I/O, no persistence.
func (s *ComplianceService) Score(doc *entities.Document, set *entities.ExtractedEntitySet, framework *entities.ComplianceFramework) int {
	score := complianceBaseScore

	if len(doc.Tags) > 0 {
		score += bonusTags
	}
	if len(doc.RawText) > minMeaningfulTextChars {
		score += bonusTextLength
	}
	if set != nil && !set.IsEmpty() {
		score += bonusEntities
	}
	if !doc.CreatedAt.IsZero() {
		score += bonusTimestamp
	}
	if doc.FileSize > 0 {
		score += bonusFileSize
	}

	score += adjustmentFor(doc, framework.Adjustment)

	return clampScore(score)
}

// adjustmentFor resolves the framework's declaratively configured adjustment.
// Frameworks are never dispatched on by display name.
func adjustmentFor(doc *entities.Document, adj entities.FrameworkAdjustment) int {
	switch adj.Kind {
	case entities.AdjustmentFixedBonus:
		return adj.Points
	case entities.AdjustmentTagPenalty:
		if doc.HasTag(adj.Tag) {
			return -adj.Points
		}
	}
	return 0
}

// Evaluate scores a document against one framework and persists the check as
// a new row. Reruns supersede, never overwrite.
func (s *ComplianceService) Evaluate(ctx context.Context, actor entities.Actor, doc *entities.Document, set *entities.ExtractedEntitySet, frameworkID string) (*entities.ComplianceCheck, error) {
	framework, err := s.frameworks.GetByID(ctx, frameworkID)
	if err != nil {
		return nil, err
	}
	if !framework.IsActive {
		return nil, apperrors.NewValidationError(fmt.Sprintf("framework %s is not active", frameworkID))
	}

	score := s.Score(doc, set, framework)
	check := &entities.ComplianceCheck{
		ID:          uuid.New().String(),
		DocumentID:  doc.ID,
		FrameworkID: framework.ID,
		Score:       score,
		Status:      entities.BandCheckScore(score),
		Details: map[string]interface{}{
			"framework_name": framework.Name,
			"adjustment":     framework.Adjustment.Kind,
		},
		CreatedAt: time.Now().UTC(),
	}

	if prior, err := s.checks.GetLatest(ctx, doc.ID, framework.ID); err == nil && prior != nil {
		check.SupersedesID = prior.ID
	}

	if err := s.checks.Create(ctx, check); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actor, AuditEntry{
		TableName:  "compliance_checks",
		RecordID:   check.ID,
		ActionType: entities.ActionCreate,
		NewValues: map[string]interface{}{
			"document_id":  doc.ID,
			"framework_id": framework.ID,
			"score":        score,
			"status":       check.Status,
		},
		RiskLevel:      entities.AuditRiskMedium,
		ComplianceTags: []string{framework.Name},
	})

	return check, nil
}

// EvaluateAll evaluates a document against every requested framework
// concurrently. One framework's failure is recorded in its result slot and
// does not abort the siblings; each check is an independent record, so no
// coordination beyond the gather is needed.
func (s *ComplianceService) EvaluateAll(ctx context.Context, actor entities.Actor, doc *entities.Document, set *entities.ExtractedEntitySet, frameworkIDs []string) []FrameworkResult {
	results := make([]FrameworkResult, len(frameworkIDs))

	var wg sync.WaitGroup
	for i, id := range frameworkIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			check, err := s.Evaluate(ctx, actor, doc, set, id)
			if err != nil {
				logger := observability.LoggerFromContext(ctx)
				logger.Warn().
					Err(err).
					Str("document_id", doc.ID).
					Str("framework_id", id).
					Msg("framework evaluation failed; continuing with siblings")
				results[i] = FrameworkResult{FrameworkID: id, Err: err.Error()}
				return
			}
			results[i] = FrameworkResult{FrameworkID: id, Check: check}
		}(i, id)
	}
	wg.Wait()

	return results
}

// ListChecks returns the full check history for a document.
func (s *ComplianceService) ListChecks(ctx context.Context, documentID string) ([]*entities.ComplianceCheck, error) {
	return s.checks.ListByDocument(ctx, documentID)
}

// ActiveFrameworkIDs lists the ids of every active framework.
func (s *ComplianceService) ActiveFrameworkIDs(ctx context.Context) ([]string, error) {
	frameworks, err := s.frameworks.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(frameworks))
	for _, f := range frameworks {
		ids = append(ids, f.ID)
	}
	return ids, nil
}
