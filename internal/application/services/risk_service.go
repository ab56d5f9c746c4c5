package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/repositories"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

// Detector names and their fixed weights. The raw sum can exceed 100; the
// final score is clamped to [0,100].
const (
	detectorLargeAmounts   = "large_amounts"
	detectorUnusualPattern = "unusual_pattern"
	detectorMissingData    = "missing_data"
	detectorInconsistency  = "inconsistency"

	weightLargeAmounts   = 25
	weightUnusualPattern = 30
	weightMissingData    = 20
	weightInconsistency  = 35

	// DefaultReviewThreshold is the risk score above which (strictly)
	// human review is required.
	DefaultReviewThreshold = 70
)

var largeAmountThreshold = decimal.NewFromInt(100000)

// roundAmountUnit flags suspiciously round amounts: exact multiples of 10,000.
var roundAmountUnit = decimal.NewFromInt(10000)

// RiskFlags carries the auxiliary signals the analyzer consumes alongside the
// extracted entities. They come from the upstream ingest context.
type RiskFlags struct {
	WeekendTransactions bool `json:"weekend_transactions"`
	RoundNumbers        bool `json:"round_numbers"`
	DateFormatIssues    bool `json:"date_format_issues"`
	CurrencyIssues      bool `json:"currency_issues"`
	HasDate             bool `json:"has_date"`
	HasAmount           bool `json:"has_amount"`
	HasDescription      bool `json:"has_description"`
}

// RiskService runs the independent risk detectors over an extracted entity
// set and aggregates a clamped 0-100 score.
type RiskService struct {
	repo            repositories.RiskAssessmentRepository
	auditor         Auditor
	reviewThreshold int
}

// NewRiskService creates a new risk service. A non-positive threshold falls
// back to the default of 70.
func NewRiskService(repo repositories.RiskAssessmentRepository, auditor Auditor, reviewThreshold int) *RiskService {
	if reviewThreshold <= 0 {
		reviewThreshold = DefaultReviewThreshold
	}
	return &RiskService{repo: repo, auditor: auditor, reviewThreshold: reviewThreshold}
}

// Analyze scores an entity set. Given a non-nil set this always returns an
// assessment: a score of 0 with no anomalies when nothing triggers. A nil set
// means the document was never extracted, and scoring without inputs would
// fabricate a compliance-relevant number, so that case is an explicit
// insufficient-data error instead.
func (s *RiskService) Analyze(set *entities.ExtractedEntitySet, flags RiskFlags) (*entities.RiskAssessment, error) {
	if set == nil {
		return nil, apperrors.NewInsufficientDataError("no extracted entity set to analyze")
	}

	factors := make(map[string]entities.FactorResult, 4)
	var anomalies []entities.Anomaly
	score := 0

	if large := largeAmounts(set); len(large) > 0 {
		score += weightLargeAmounts
		factors[detectorLargeAmounts] = entities.FactorResult{
			Triggered: true,
			Weight:    weightLargeAmounts,
			Evidence:  fmt.Sprintf("%d amount(s) above %s", len(large), largeAmountThreshold),
		}
		anomalies = append(anomalies, entities.Anomaly{
			Type: detectorLargeAmounts,
			Details: map[string]interface{}{
				"amounts":   large,
				"threshold": largeAmountThreshold.String(),
			},
		})
	} else {
		factors[detectorLargeAmounts] = entities.FactorResult{Weight: weightLargeAmounts}
	}

	round := roundAmounts(set)
	if flags.WeekendTransactions || flags.RoundNumbers || len(round) > 0 {
		score += weightUnusualPattern
		details := map[string]interface{}{
			"weekend_transactions": flags.WeekendTransactions,
		}
		if len(round) > 0 {
			details["round_amounts"] = round
		}
		factors[detectorUnusualPattern] = entities.FactorResult{
			Triggered: true,
			Weight:    weightUnusualPattern,
			Evidence:  "weekend-flagged transaction or suspiciously round amount",
		}
		anomalies = append(anomalies, entities.Anomaly{Type: detectorUnusualPattern, Details: details})
	} else {
		factors[detectorUnusualPattern] = entities.FactorResult{Weight: weightUnusualPattern}
	}

	if missing := missingFields(flags); len(missing) > 0 {
		score += weightMissingData
		factors[detectorMissingData] = entities.FactorResult{
			Triggered: true,
			Weight:    weightMissingData,
			Evidence:  fmt.Sprintf("missing required fields: %v", missing),
		}
		anomalies = append(anomalies, entities.Anomaly{
			Type:    detectorMissingData,
			Details: map[string]interface{}{"missing_fields": missing},
		})
	} else {
		factors[detectorMissingData] = entities.FactorResult{Weight: weightMissingData}
	}

	if flags.DateFormatIssues || flags.CurrencyIssues {
		score += weightInconsistency
		factors[detectorInconsistency] = entities.FactorResult{
			Triggered: true,
			Weight:    weightInconsistency,
			Evidence:  "mixed date formats or multiple currencies",
		}
		anomalies = append(anomalies, entities.Anomaly{
			Type: detectorInconsistency,
			Details: map[string]interface{}{
				"date_format_issues": flags.DateFormatIssues,
				"currency_issues":    flags.CurrencyIssues,
			},
		})
	} else {
		factors[detectorInconsistency] = entities.FactorResult{Weight: weightInconsistency}
	}

	score = clampScore(score)

	return &entities.RiskAssessment{
		DocumentID:          set.DocumentID,
		RiskScore:           score,
		RiskCategory:        categorize(factors),
		Factors:             factors,
		Anomalies:           anomalies,
		AIConfidence:        set.OverallConfidence / 100,
		HumanReviewRequired: score > s.reviewThreshold,
		Status:              entities.AssessmentStatusPending,
	}, nil
}

// Save persists a freshly created assessment, chaining it to the latest prior
// assessment for the document, and records a CREATE audit event.
func (s *RiskService) Save(ctx context.Context, actor entities.Actor, assessment *entities.RiskAssessment) error {
	assessment.ID = uuid.New().String()
	assessment.CreatedAt = time.Now().UTC()

	if prior, err := s.repo.GetLatestByDocument(ctx, assessment.DocumentID); err == nil && prior != nil {
		assessment.SupersedesID = prior.ID
	}

	if err := s.repo.Create(ctx, assessment); err != nil {
		return err
	}

	s.auditor.Record(ctx, actor, AuditEntry{
		TableName:  "risk_assessments",
		RecordID:   assessment.ID,
		ActionType: entities.ActionCreate,
		NewValues: map[string]interface{}{
			"document_id":           assessment.DocumentID,
			"risk_score":            assessment.RiskScore,
			"risk_category":         assessment.RiskCategory,
			"human_review_required": assessment.HumanReviewRequired,
		},
		RiskLevel: auditLevelForScore(assessment.RiskScore),
	})

	return nil
}

// Review applies a status transition to an assessment. Score, factors and
// anomalies never change; only the review fields do. Every transition is
// audited.
func (s *RiskService) Review(ctx context.Context, actor entities.Actor, assessmentID string, target entities.AssessmentStatus, notes string) (*entities.RiskAssessment, error) {
	assessment, err := s.repo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	if !assessment.Status.CanTransitionTo(target) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cannot transition assessment from %s to %s", assessment.Status, target))
	}

	now := time.Now().UTC()
	review := repositories.AssessmentReview{
		Status:        target,
		ReviewerNotes: notes,
		ReviewedAt:    now,
	}
	if err := s.repo.UpdateReview(ctx, assessmentID, review); err != nil {
		return nil, err
	}

	action := entities.ActionUpdate
	switch target {
	case entities.AssessmentStatusApproved:
		action = entities.ActionApprove
	case entities.AssessmentStatusFlagged:
		action = entities.ActionReject
	}
	s.auditor.Record(ctx, actor, AuditEntry{
		TableName:     "risk_assessments",
		RecordID:      assessmentID,
		ActionType:    action,
		OldValues:     map[string]interface{}{"status": assessment.Status},
		NewValues:     map[string]interface{}{"status": target, "reviewer_notes": notes},
		ChangedFields: []string{"status", "reviewer_notes", "reviewed_at"},
		RiskLevel:     entities.AuditRiskMedium,
	})

	assessment.Status = target
	assessment.ReviewerNotes = notes
	assessment.ReviewedAt = &now
	return assessment, nil
}

// GetLatest returns the newest assessment for a document.
func (s *RiskService) GetLatest(ctx context.Context, documentID string) (*entities.RiskAssessment, error) {
	return s.repo.GetLatestByDocument(ctx, documentID)
}

func largeAmounts(set *entities.ExtractedEntitySet) []string {
	var out []string
	for _, amount := range set.Amounts {
		value, err := decimal.NewFromString(amount.ParsedValue)
		if err != nil {
			continue
		}
		if value.GreaterThan(largeAmountThreshold) {
			out = append(out, amount.RawText)
		}
	}
	return out
}

func roundAmounts(set *entities.ExtractedEntitySet) []string {
	var out []string
	for _, amount := range set.Amounts {
		value, err := decimal.NewFromString(amount.ParsedValue)
		if err != nil {
			continue
		}
		if !value.IsZero() && value.Mod(roundAmountUnit).IsZero() {
			out = append(out, amount.RawText)
		}
	}
	return out
}

func missingFields(flags RiskFlags) []string {
	var missing []string
	if !flags.HasDate {
		missing = append(missing, "date")
	}
	if !flags.HasAmount {
		missing = append(missing, "amount")
	}
	if !flags.HasDescription {
		missing = append(missing, "description")
	}
	return missing
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// categorize picks the dominant risk family from the triggered detectors.
func categorize(factors map[string]entities.FactorResult) entities.RiskCategory {
	large := factors[detectorLargeAmounts].Triggered
	unusual := factors[detectorUnusualPattern].Triggered
	missing := factors[detectorMissingData].Triggered
	inconsistent := factors[detectorInconsistency].Triggered

	switch {
	case large && unusual:
		return entities.RiskCategoryFraud
	case inconsistent:
		return entities.RiskCategoryCompliance
	case missing && !large && !unusual:
		return entities.RiskCategoryDataQuality
	default:
		return entities.RiskCategoryFinancial
	}
}

func auditLevelForScore(score int) entities.AuditRiskLevel {
	switch {
	case score > 90:
		return entities.AuditRiskCritical
	case score > DefaultReviewThreshold:
		return entities.AuditRiskHigh
	case score > 40:
		return entities.AuditRiskMedium
	default:
		return entities.AuditRiskLow
	}
}
