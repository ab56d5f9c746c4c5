package repositories

import (
	"context"
	"time"

	"github.com/veridoc/docguard/internal/domain/entities"
)

// AssessmentReview carries the only fields of an assessment that may change
// after creation.
type AssessmentReview struct {
	Status        entities.AssessmentStatus
	ReviewerNotes string
	ReviewedAt    time.Time
}

// RiskAssessmentRepository defines the interface for risk assessment
// persistence. Score, factors and anomalies are immutable; UpdateReview only
// touches the review fields.
type RiskAssessmentRepository interface {
	Create(ctx context.Context, assessment *entities.RiskAssessment) error
	GetByID(ctx context.Context, id string) (*entities.RiskAssessment, error)
	GetLatestByDocument(ctx context.Context, documentID string) (*entities.RiskAssessment, error)
	UpdateReview(ctx context.Context, id string, review AssessmentReview) error
}
