package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/repositories"
	"github.com/veridoc/docguard/internal/infrastructure/clients/postgres"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

var assessmentColumns = []interface{}{
	"id", "document_id", "risk_score", "risk_category", "factors", "anomalies",
	"ai_confidence", "human_review_required", "status", "reviewer_notes",
	"supersedes_id", "created_at", "reviewed_at",
}

// RiskAssessmentAdapter implements risk assessment persistence in Postgres.
// Assessments are append-only apart from their review fields.
type RiskAssessmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRiskAssessmentAdapter creates a new risk assessment adapter.
func NewRiskAssessmentAdapter(client *postgres.Client) repositories.RiskAssessmentRepository {
	return &RiskAssessmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts an assessment record.
func (a *RiskAssessmentAdapter) Create(ctx context.Context, assessment *entities.RiskAssessment) error {
	factors, err := marshalJSONB(assessment.Factors)
	if err != nil {
		return apperrors.NewInternalError("failed to encode factors", err)
	}
	anomalies, err := marshalJSONB(assessment.Anomalies)
	if err != nil {
		return apperrors.NewInternalError("failed to encode anomalies", err)
	}

	record := goqu.Record{
		"id":                    assessment.ID,
		"document_id":           assessment.DocumentID,
		"risk_score":            assessment.RiskScore,
		"risk_category":         string(assessment.RiskCategory),
		"factors":               factors,
		"anomalies":             anomalies,
		"ai_confidence":         assessment.AIConfidence,
		"human_review_required": assessment.HumanReviewRequired,
		"status":                string(assessment.Status),
		"reviewer_notes":        sql.NullString{String: assessment.ReviewerNotes, Valid: assessment.ReviewerNotes != ""},
		"supersedes_id":         sql.NullString{String: assessment.SupersedesID, Valid: assessment.SupersedesID != ""},
		"created_at":            assessment.CreatedAt,
		"reviewed_at":           assessment.ReviewedAt,
	}

	query, args, err := a.db.Insert("risk_assessments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build assessment insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create risk assessment", err)
	}
	return nil
}

// GetByID retrieves an assessment by ID.
func (a *RiskAssessmentAdapter) GetByID(ctx context.Context, id string) (*entities.RiskAssessment, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

// GetLatestByDocument retrieves the most recent assessment for a document.
func (a *RiskAssessmentAdapter) GetLatestByDocument(ctx context.Context, documentID string) (*entities.RiskAssessment, error) {
	return a.getOne(ctx, goqu.Ex{"document_id": documentID})
}

// UpdateReview updates only the review fields of an assessment. The score,
// factors and anomalies columns are never touched after Create.
func (a *RiskAssessmentAdapter) UpdateReview(ctx context.Context, id string, review repositories.AssessmentReview) error {
	record := goqu.Record{
		"status":         string(review.Status),
		"reviewer_notes": sql.NullString{String: review.ReviewerNotes, Valid: review.ReviewerNotes != ""},
		"reviewed_at":    review.ReviewedAt,
	}

	query, args, err := a.db.Update("risk_assessments").
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build assessment update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update assessment review", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("risk assessment not found: " + id)
	}
	return nil
}

func (a *RiskAssessmentAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.RiskAssessment, error) {
	query, args, err := a.db.Select(assessmentColumns...).
		From("risk_assessments").
		Where(where).
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build assessment query", err)
	}

	assessment := &entities.RiskAssessment{}
	var factors, anomalies []byte
	var notes, supersedes sql.NullString
	var reviewedAt sql.NullTime

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&assessment.ID,
		&assessment.DocumentID,
		&assessment.RiskScore,
		&assessment.RiskCategory,
		&factors,
		&anomalies,
		&assessment.AIConfidence,
		&assessment.HumanReviewRequired,
		&assessment.Status,
		&notes,
		&supersedes,
		&assessment.CreatedAt,
		&reviewedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("risk assessment not found")
		}
		return nil, apperrors.NewInternalError("failed to get risk assessment", err)
	}

	assessment.ReviewerNotes = notes.String
	assessment.SupersedesID = supersedes.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		assessment.ReviewedAt = &t
	}
	if err := unmarshalJSONB(factors, &assessment.Factors); err != nil {
		return nil, apperrors.NewInternalError("failed to decode factors", err)
	}
	if err := unmarshalJSONB(anomalies, &assessment.Anomalies); err != nil {
		return nil, apperrors.NewInternalError("failed to decode anomalies", err)
	}
	return assessment, nil
}
