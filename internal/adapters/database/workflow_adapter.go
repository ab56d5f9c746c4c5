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

var workflowColumns = []interface{}{
	"id", "document_id", "name", "step_order", "status", "assigned_to",
	"assigned_role", "started_at", "completed_at", "completed_by", "notes",
}

// WorkflowAdapter implements workflow step persistence in Postgres.
type WorkflowAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewWorkflowAdapter creates a new workflow adapter.
func NewWorkflowAdapter(client *postgres.Client) repositories.WorkflowRepository {
	return &WorkflowAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a workflow step.
func (a *WorkflowAdapter) Create(ctx context.Context, step *entities.WorkflowStep) error {
	query, args, err := a.db.Insert("workflow_steps").Rows(workflowRecord(step)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build workflow insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create workflow step", err)
	}
	return nil
}

// GetByID retrieves a workflow step by ID.
func (a *WorkflowAdapter) GetByID(ctx context.Context, id string) (*entities.WorkflowStep, error) {
	query, args, err := a.db.Select(workflowColumns...).
		From("workflow_steps").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build workflow query", err)
	}

	step, err := scanWorkflowStep(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("workflow step not found: " + id)
		}
		return nil, apperrors.NewInternalError("failed to get workflow step", err)
	}
	return step, nil
}

// ListByDocument retrieves a document's steps in execution order.
func (a *WorkflowAdapter) ListByDocument(ctx context.Context, documentID string) ([]*entities.WorkflowStep, error) {
	query, args, err := a.db.Select(workflowColumns...).
		From("workflow_steps").
		Where(goqu.Ex{"document_id": documentID}).
		Order(goqu.I("step_order").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build workflow list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list workflow steps", err)
	}
	defer rows.Close()

	var steps []*entities.WorkflowStep
	for rows.Next() {
		step, err := scanWorkflowStep(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan workflow step", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// Update persists the step's current state.
func (a *WorkflowAdapter) Update(ctx context.Context, step *entities.WorkflowStep) error {
	record := workflowRecord(step)
	delete(record, "id")

	query, args, err := a.db.Update("workflow_steps").
		Set(record).
		Where(goqu.Ex{"id": step.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build workflow update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update workflow step", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("workflow step not found: " + step.ID)
	}
	return nil
}

func workflowRecord(step *entities.WorkflowStep) goqu.Record {
	return goqu.Record{
		"id":            step.ID,
		"document_id":   step.DocumentID,
		"name":          step.Name,
		"step_order":    step.StepOrder,
		"status":        string(step.Status),
		"assigned_to":   sql.NullString{String: step.AssignedTo, Valid: step.AssignedTo != ""},
		"assigned_role": sql.NullString{String: step.AssignedRole, Valid: step.AssignedRole != ""},
		"started_at":    step.StartedAt,
		"completed_at":  step.CompletedAt,
		"completed_by":  sql.NullString{String: step.CompletedBy, Valid: step.CompletedBy != ""},
		"notes":         sql.NullString{String: step.Notes, Valid: step.Notes != ""},
	}
}

func scanWorkflowStep(row rowScanner) (*entities.WorkflowStep, error) {
	step := &entities.WorkflowStep{}
	var assignedTo, assignedRole, completedBy, notes sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&step.ID,
		&step.DocumentID,
		&step.Name,
		&step.StepOrder,
		&step.Status,
		&assignedTo,
		&assignedRole,
		&startedAt,
		&completedAt,
		&completedBy,
		&notes,
	)
	if err != nil {
		return nil, err
	}

	step.AssignedTo = assignedTo.String
	step.AssignedRole = assignedRole.String
	step.CompletedBy = completedBy.String
	step.Notes = notes.String
	if startedAt.Valid {
		t := startedAt.Time
		step.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		step.CompletedAt = &t
	}
	return step, nil
}
