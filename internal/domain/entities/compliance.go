package entities

import "time"

// AdjustmentKind discriminates the framework-specific score adjustment.
type AdjustmentKind string

const (
	AdjustmentNone       AdjustmentKind = "none"
	AdjustmentFixedBonus AdjustmentKind = "fixed_bonus"
	AdjustmentTagPenalty AdjustmentKind = "tag_penalty"
)

// FrameworkAdjustment is a declaratively configured score adjustment resolved
// per framework, replacing any dispatch on framework display names.
// fixed_bonus adds Points unconditionally; tag_penalty subtracts Points when
// the document carries Tag.
type FrameworkAdjustment struct {
	Kind   AdjustmentKind `json:"kind"`
	Points int            `json:"points,omitempty"`
	Tag    string         `json:"tag,omitempty"`
}

// ComplianceFramework is an externally configured set of requirements a
// document is evaluated against. Requirement values are opaque to the engine.
type ComplianceFramework struct {
	ID           string              `json:"id" db:"id"`
	Name         string              `json:"name" db:"name"`
	Requirements map[string]string   `json:"requirements"`
	Adjustment   FrameworkAdjustment `json:"adjustment"`
	IsActive     bool                `json:"is_active" db:"is_active"`
}

// CheckStatus is the banded outcome of one compliance evaluation.
type CheckStatus string

const (
	CheckStatusPassed       CheckStatus = "PASSED"
	CheckStatusManualReview CheckStatus = "MANUAL_REVIEW"
	CheckStatusFailed       CheckStatus = "FAILED"
)

// Banding thresholds. score >= PassThreshold is PASSED,
// score >= ReviewThreshold is MANUAL_REVIEW, anything below is FAILED.
const (
	CheckPassThreshold   = 80
	CheckReviewThreshold = 60
)

// BandCheckScore maps a compliance score to its status.
func BandCheckScore(score int) CheckStatus {
	switch {
	case score >= CheckPassThreshold:
		return CheckStatusPassed
	case score >= CheckReviewThreshold:
		return CheckStatusManualReview
	default:
		return CheckStatusFailed
	}
}

// ComplianceCheck is one evaluation of one document against one framework.
// Re-evaluations insert new checks; history is never overwritten.
type ComplianceCheck struct {
	ID           string                 `json:"id" db:"id"`
	DocumentID   string                 `json:"document_id" db:"document_id"`
	FrameworkID  string                 `json:"framework_id" db:"framework_id"`
	Score        int                    `json:"score" db:"score"`
	Status       CheckStatus            `json:"status" db:"status"`
	Details      map[string]interface{} `json:"details"`
	ReviewedBy   string                 `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt   *time.Time             `json:"reviewed_at,omitempty" db:"reviewed_at"`
	SupersedesID string                 `json:"supersedes_id,omitempty" db:"supersedes_id"`
	CreatedAt    time.Time              `json:"created_at" db:"created_at"`
}
