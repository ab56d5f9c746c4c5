package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/repositories"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

// WorkflowService sequences human review steps. It gates transitions on the
// acting identity and adds no scoring logic of its own.
type WorkflowService struct {
	repo    repositories.WorkflowRepository
	auditor Auditor
}

// NewWorkflowService creates a new workflow service.
func NewWorkflowService(repo repositories.WorkflowRepository, auditor Auditor) *WorkflowService {
	return &WorkflowService{repo: repo, auditor: auditor}
}

// CreateStep registers a new pending step for a document.
func (s *WorkflowService) CreateStep(ctx context.Context, actor entities.Actor, step *entities.WorkflowStep) error {
	if step.DocumentID == "" {
		return apperrors.NewValidationError("document id is required")
	}
	if step.AssignedTo == "" && step.AssignedRole == "" {
		return apperrors.NewValidationError("step needs an assignee or an assigned role")
	}

	step.ID = uuid.New().String()
	step.Status = entities.StepStatusPending

	if err := s.repo.Create(ctx, step); err != nil {
		return err
	}

	s.auditor.Record(ctx, actor, AuditEntry{
		TableName:  "workflow_steps",
		RecordID:   step.ID,
		ActionType: entities.ActionCreate,
		NewValues:  map[string]interface{}{"document_id": step.DocumentID, "name": step.Name},
		RiskLevel:  entities.AuditRiskLow,
	})
	return nil
}

// Transition moves a step through its state machine. The acting identity
// must match the step's assignee exactly or carry its assigned role;
// otherwise the attempt fails with an authorization error, mutates nothing,
// and is itself recorded as a denied-attempt audit event.
func (s *WorkflowService) Transition(ctx context.Context, actor entities.Actor, identity entities.Identity, stepID string, target entities.StepStatus, notes string) (*entities.WorkflowStep, error) {
	step, err := s.repo.GetByID(ctx, stepID)
	if err != nil {
		return nil, err
	}

	if !step.Authorizes(identity) {
		s.auditor.Record(ctx, actor, AuditEntry{
			TableName:  "workflow_steps",
			RecordID:   step.ID,
			ActionType: entities.ActionReject,
			NewValues: map[string]interface{}{
				"denied_transition": string(target),
				"acting_user":       identity.UserID,
				"acting_role":       identity.Role,
			},
			RiskLevel: entities.AuditRiskHigh,
		})
		return nil, apperrors.NewUnauthorizedError(
			fmt.Sprintf("user %s is not authorized to act on step %s", identity.UserID, step.ID))
	}

	if !step.Status.CanTransitionTo(target) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cannot transition step from %s to %s", step.Status, target))
	}

	oldStatus := step.Status
	now := time.Now().UTC()

	step.Status = target
	if notes != "" {
		step.Notes = notes
	}
	switch target {
	case entities.StepStatusInProgress:
		if step.StartedAt == nil {
			step.StartedAt = &now
		}
	case entities.StepStatusCompleted:
		step.CompletedAt = &now
		step.CompletedBy = identity.UserID
	}

	if err := s.repo.Update(ctx, step); err != nil {
		return nil, err
	}

	action := entities.ActionUpdate
	switch target {
	case entities.StepStatusCompleted:
		action = entities.ActionApprove
	case entities.StepStatusRejected:
		action = entities.ActionReject
	}
	s.auditor.Record(ctx, actor, AuditEntry{
		TableName:     "workflow_steps",
		RecordID:      step.ID,
		ActionType:    action,
		OldValues:     map[string]interface{}{"status": oldStatus},
		NewValues:     map[string]interface{}{"status": target},
		ChangedFields: []string{"status"},
		RiskLevel:     entities.AuditRiskMedium,
	})

	return step, nil
}

// ListSteps returns the steps for a document in configured order.
func (s *WorkflowService) ListSteps(ctx context.Context, documentID string) ([]*entities.WorkflowStep, error) {
	return s.repo.ListByDocument(ctx, documentID)
}
