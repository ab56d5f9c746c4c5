package entities

import "time"

// RiskCategory classifies which family of risk dominates an assessment.
type RiskCategory string

const (
	RiskCategoryFinancial   RiskCategory = "FINANCIAL"
	RiskCategoryOperational RiskCategory = "OPERATIONAL"
	RiskCategoryCompliance  RiskCategory = "COMPLIANCE"
	RiskCategoryFraud       RiskCategory = "FRAUD"
	RiskCategoryDataQuality RiskCategory = "DATA_QUALITY"
)

// AssessmentStatus tracks the human-review lifecycle of an assessment.
type AssessmentStatus string

const (
	AssessmentStatusPending  AssessmentStatus = "PENDING"
	AssessmentStatusReviewed AssessmentStatus = "REVIEWED"
	AssessmentStatusApproved AssessmentStatus = "APPROVED"
	AssessmentStatusFlagged  AssessmentStatus = "FLAGGED"
)

// CanTransitionTo reports whether a status change is allowed.
// PENDING -> REVIEWED -> APPROVED | FLAGGED; nothing else.
func (s AssessmentStatus) CanTransitionTo(target AssessmentStatus) bool {
	switch s {
	case AssessmentStatusPending:
		return target == AssessmentStatusReviewed
	case AssessmentStatusReviewed:
		return target == AssessmentStatusApproved || target == AssessmentStatusFlagged
	default:
		return false
	}
}

// FactorResult records the outcome of one risk detector.
type FactorResult struct {
	Triggered bool   `json:"triggered"`
	Weight    int    `json:"weight"`
	Evidence  string `json:"evidence,omitempty"`
}

// Anomaly describes one triggered detector plus its supporting evidence.
type Anomaly struct {
	Type    string                 `json:"type"`
	Details map[string]interface{} `json:"details"`
}

// RiskAssessment is the scored output of the risk factor analyzer.
// Score, factors and anomalies are immutable once created; only the review
// fields may change afterwards.
type RiskAssessment struct {
	ID                  string                  `json:"id" db:"id"`
	DocumentID          string                  `json:"document_id" db:"document_id"`
	RiskScore           int                     `json:"risk_score" db:"risk_score"`
	RiskCategory        RiskCategory            `json:"risk_category" db:"risk_category"`
	Factors             map[string]FactorResult `json:"factors"`
	Anomalies           []Anomaly               `json:"anomalies"`
	AIConfidence        float64                 `json:"ai_confidence" db:"ai_confidence"`
	HumanReviewRequired bool                    `json:"human_review_required" db:"human_review_required"`
	Status              AssessmentStatus        `json:"status" db:"status"`
	ReviewerNotes       string                  `json:"reviewer_notes,omitempty" db:"reviewer_notes"`
	SupersedesID        string                  `json:"supersedes_id,omitempty" db:"supersedes_id"`
	CreatedAt           time.Time               `json:"created_at" db:"created_at"`
	ReviewedAt          *time.Time              `json:"reviewed_at,omitempty" db:"reviewed_at"`
}
