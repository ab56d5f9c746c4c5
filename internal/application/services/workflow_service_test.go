package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridoc/docguard/internal/domain/entities"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

func seedStep(t *testing.T, repo *memWorkflowRepo, status entities.StepStatus) *entities.WorkflowStep {
	t.Helper()
	step := &entities.WorkflowStep{
		ID:           "step-1",
		DocumentID:   "doc-1",
		Name:         "initial review",
		StepOrder:    1,
		Status:       status,
		AssignedTo:   "reviewer-1",
		AssignedRole: "compliance_officer",
	}
	require.NoError(t, repo.Create(context.Background(), step))
	return step
}

func TestTransition_AssigneeMatch(t *testing.T) {
	repo := newMemWorkflowRepo()
	auditor := &recordingAuditor{}
	svc := NewWorkflowService(repo, auditor)
	seedStep(t, repo, entities.StepStatusPending)

	identity := entities.Identity{UserID: "reviewer-1", Role: "analyst"}
	step, err := svc.Transition(context.Background(), entities.Actor{UserID: "reviewer-1"}, identity, "step-1", entities.StepStatusInProgress, "")
	require.NoError(t, err)

	assert.Equal(t, entities.StepStatusInProgress, step.Status)
	assert.NotNil(t, step.StartedAt)
}

func TestTransition_RoleMatch(t *testing.T) {
	repo := newMemWorkflowRepo()
	svc := NewWorkflowService(repo, &recordingAuditor{})
	seedStep(t, repo, entities.StepStatusPending)

	// Different user, matching role.
	identity := entities.Identity{UserID: "someone-else", Role: "compliance_officer"}
	step, err := svc.Transition(context.Background(), entities.Actor{UserID: "someone-else"}, identity, "step-1", entities.StepStatusInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, entities.StepStatusInProgress, step.Status)
}

func TestTransition_UnauthorizedFailsLoudAndMutatesNothing(t *testing.T) {
	repo := newMemWorkflowRepo()
	auditor := &recordingAuditor{}
	svc := NewWorkflowService(repo, auditor)
	seedStep(t, repo, entities.StepStatusPending)

	identity := entities.Identity{UserID: "intruder", Role: "viewer"}
	step, err := svc.Transition(context.Background(), entities.Actor{UserID: "intruder"}, identity, "step-1", entities.StepStatusInProgress, "")

	assert.Nil(t, step)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

	stored, getErr := repo.GetByID(context.Background(), "step-1")
	require.NoError(t, getErr)
	assert.Equal(t, entities.StepStatusPending, stored.Status)

	// The denied attempt itself is audited at high risk.
	entries := auditor.entriesFor("workflow_steps")
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ActionReject, entries[0].ActionType)
	assert.Equal(t, entities.AuditRiskHigh, entries[0].RiskLevel)
}

func TestTransition_StateMachine(t *testing.T) {
	tests := []struct {
		name    string
		from    entities.StepStatus
		to      entities.StepStatus
		wantErr bool
	}{
		{"pending to in progress", entities.StepStatusPending, entities.StepStatusInProgress, false},
		{"pending to rejected", entities.StepStatusPending, entities.StepStatusRejected, false},
		{"pending to skipped", entities.StepStatusPending, entities.StepStatusSkipped, false},
		{"in progress to completed", entities.StepStatusInProgress, entities.StepStatusCompleted, false},
		{"pending straight to completed", entities.StepStatusPending, entities.StepStatusCompleted, true},
		{"completed is terminal", entities.StepStatusCompleted, entities.StepStatusInProgress, true},
		{"rejected is terminal", entities.StepStatusRejected, entities.StepStatusInProgress, true},
	}

	identity := entities.Identity{UserID: "reviewer-1"}
	actor := entities.Actor{UserID: "reviewer-1"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemWorkflowRepo()
			svc := NewWorkflowService(repo, &recordingAuditor{})
			seedStep(t, repo, tt.from)

			step, err := svc.Transition(context.Background(), actor, identity, "step-1", tt.to, "")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, step.Status)
		})
	}
}

func TestTransition_CompletedSetsCompletionFields(t *testing.T) {
	repo := newMemWorkflowRepo()
	svc := NewWorkflowService(repo, &recordingAuditor{})
	seedStep(t, repo, entities.StepStatusInProgress)

	identity := entities.Identity{UserID: "reviewer-1"}
	step, err := svc.Transition(context.Background(), entities.Actor{UserID: "reviewer-1"}, identity, "step-1", entities.StepStatusCompleted, "looks good")
	require.NoError(t, err)

	assert.NotNil(t, step.CompletedAt)
	assert.Equal(t, "reviewer-1", step.CompletedBy)
	assert.Equal(t, "looks good", step.Notes)
}

func TestTransition_StartedAtSetOnce(t *testing.T) {
	repo := newMemWorkflowRepo()
	svc := NewWorkflowService(repo, &recordingAuditor{})
	seedStep(t, repo, entities.StepStatusPending)

	identity := entities.Identity{UserID: "reviewer-1"}
	actor := entities.Actor{UserID: "reviewer-1"}
	ctx := context.Background()

	inProgress, err := svc.Transition(ctx, actor, identity, "step-1", entities.StepStatusInProgress, "")
	require.NoError(t, err)
	started := inProgress.StartedAt
	require.NotNil(t, started)

	completed, err := svc.Transition(ctx, actor, identity, "step-1", entities.StepStatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, started, completed.StartedAt)
}

func TestCreateStep_RequiresAssignment(t *testing.T) {
	svc := NewWorkflowService(newMemWorkflowRepo(), &recordingAuditor{})

	err := svc.CreateStep(context.Background(), entities.Actor{}, &entities.WorkflowStep{
		DocumentID: "doc-1",
		Name:       "review",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
