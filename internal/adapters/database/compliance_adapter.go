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

var frameworkColumns = []interface{}{
	"id", "name", "requirements", "adjustment", "is_active",
}

var checkColumns = []interface{}{
	"id", "document_id", "framework_id", "score", "status", "details",
	"reviewed_by", "reviewed_at", "supersedes_id", "created_at",
}

// FrameworkAdapter implements compliance framework configuration persistence.
type FrameworkAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFrameworkAdapter creates a new framework adapter.
func NewFrameworkAdapter(client *postgres.Client) repositories.FrameworkRepository {
	return &FrameworkAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves one framework definition.
func (a *FrameworkAdapter) GetByID(ctx context.Context, id string) (*entities.ComplianceFramework, error) {
	query, args, err := a.db.Select(frameworkColumns...).
		From("compliance_frameworks").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build framework query", err)
	}

	framework, err := scanFramework(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("compliance framework not found: " + id)
		}
		return nil, apperrors.NewInternalError("failed to get compliance framework", err)
	}
	return framework, nil
}

// ListActive retrieves all frameworks currently enabled for evaluation.
func (a *FrameworkAdapter) ListActive(ctx context.Context) ([]*entities.ComplianceFramework, error) {
	query, args, err := a.db.Select(frameworkColumns...).
		From("compliance_frameworks").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build framework list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list compliance frameworks", err)
	}
	defer rows.Close()

	var frameworks []*entities.ComplianceFramework
	for rows.Next() {
		framework, err := scanFramework(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan compliance framework", err)
		}
		frameworks = append(frameworks, framework)
	}
	return frameworks, rows.Err()
}

// Upsert inserts a framework definition or replaces it in place. Framework
// configuration is reference data, not history, so overwriting is fine here.
func (a *FrameworkAdapter) Upsert(ctx context.Context, framework *entities.ComplianceFramework) error {
	requirements, err := marshalJSONB(framework.Requirements)
	if err != nil {
		return apperrors.NewInternalError("failed to encode requirements", err)
	}
	adjustment, err := marshalJSONB(framework.Adjustment)
	if err != nil {
		return apperrors.NewInternalError("failed to encode adjustment", err)
	}

	record := goqu.Record{
		"id":           framework.ID,
		"name":         framework.Name,
		"requirements": requirements,
		"adjustment":   adjustment,
		"is_active":    framework.IsActive,
	}

	query, args, err := a.db.Insert("compliance_frameworks").
		Rows(record).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"name":         framework.Name,
			"requirements": requirements,
			"adjustment":   adjustment,
			"is_active":    framework.IsActive,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build framework upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert compliance framework", err)
	}
	return nil
}

func scanFramework(row rowScanner) (*entities.ComplianceFramework, error) {
	framework := &entities.ComplianceFramework{}
	var requirements, adjustment []byte

	err := row.Scan(
		&framework.ID,
		&framework.Name,
		&requirements,
		&adjustment,
		&framework.IsActive,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSONB(requirements, &framework.Requirements); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(adjustment, &framework.Adjustment); err != nil {
		return nil, err
	}
	return framework, nil
}

// ComplianceCheckAdapter implements compliance check persistence. Checks are
// append-only; a re-evaluation inserts a new row superseding the last.
type ComplianceCheckAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewComplianceCheckAdapter creates a new compliance check adapter.
func NewComplianceCheckAdapter(client *postgres.Client) repositories.ComplianceCheckRepository {
	return &ComplianceCheckAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a compliance check.
func (a *ComplianceCheckAdapter) Create(ctx context.Context, check *entities.ComplianceCheck) error {
	details, err := marshalJSONB(check.Details)
	if err != nil {
		return apperrors.NewInternalError("failed to encode check details", err)
	}

	record := goqu.Record{
		"id":            check.ID,
		"document_id":   check.DocumentID,
		"framework_id":  check.FrameworkID,
		"score":         check.Score,
		"status":        string(check.Status),
		"details":       details,
		"reviewed_by":   sql.NullString{String: check.ReviewedBy, Valid: check.ReviewedBy != ""},
		"reviewed_at":   check.ReviewedAt,
		"supersedes_id": sql.NullString{String: check.SupersedesID, Valid: check.SupersedesID != ""},
		"created_at":    check.CreatedAt,
	}

	query, args, err := a.db.Insert("compliance_checks").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build check insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create compliance check", err)
	}
	return nil
}

// GetLatest retrieves the most recent check for a document/framework pair.
func (a *ComplianceCheckAdapter) GetLatest(ctx context.Context, documentID, frameworkID string) (*entities.ComplianceCheck, error) {
	query, args, err := a.db.Select(checkColumns...).
		From("compliance_checks").
		Where(goqu.Ex{"document_id": documentID, "framework_id": frameworkID}).
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build check query", err)
	}

	check, err := scanCheck(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("compliance check not found")
		}
		return nil, apperrors.NewInternalError("failed to get compliance check", err)
	}
	return check, nil
}

// ListByDocument retrieves all checks for a document, newest first.
func (a *ComplianceCheckAdapter) ListByDocument(ctx context.Context, documentID string) ([]*entities.ComplianceCheck, error) {
	query, args, err := a.db.Select(checkColumns...).
		From("compliance_checks").
		Where(goqu.Ex{"document_id": documentID}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build check list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list compliance checks", err)
	}
	defer rows.Close()

	var checks []*entities.ComplianceCheck
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan compliance check", err)
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

func scanCheck(row rowScanner) (*entities.ComplianceCheck, error) {
	check := &entities.ComplianceCheck{}
	var details []byte
	var reviewedBy, supersedes sql.NullString
	var reviewedAt sql.NullTime

	err := row.Scan(
		&check.ID,
		&check.DocumentID,
		&check.FrameworkID,
		&check.Score,
		&check.Status,
		&details,
		&reviewedBy,
		&reviewedAt,
		&supersedes,
		&check.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	check.ReviewedBy = reviewedBy.String
	check.SupersedesID = supersedes.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		check.ReviewedAt = &t
	}
	if err := unmarshalJSONB(details, &check.Details); err != nil {
		return nil, err
	}
	return check, nil
}
