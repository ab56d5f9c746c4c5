package entities

import "time"

// StepStatus is the state of one human review step.
type StepStatus string

const (
	StepStatusPending    StepStatus = "PENDING"
	StepStatusInProgress StepStatus = "IN_PROGRESS"
	StepStatusCompleted  StepStatus = "COMPLETED"
	StepStatusRejected   StepStatus = "REJECTED"
	StepStatusSkipped    StepStatus = "SKIPPED"
)

// CanTransitionTo reports whether the step state machine allows the move.
// PENDING -> IN_PROGRESS -> COMPLETED, with side exits to REJECTED/SKIPPED
// from either non-terminal state.
func (s StepStatus) CanTransitionTo(target StepStatus) bool {
	switch s {
	case StepStatusPending:
		return target == StepStatusInProgress || target == StepStatusRejected || target == StepStatusSkipped
	case StepStatusInProgress:
		return target == StepStatusCompleted || target == StepStatusRejected || target == StepStatusSkipped
	default:
		return false
	}
}

// Identity is the acting user for a workflow transition, passed explicitly
// at the call site.
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// WorkflowStep is one gated step in a document's review sequence.
type WorkflowStep struct {
	ID           string     `json:"id" db:"id"`
	DocumentID   string     `json:"document_id" db:"document_id"`
	Name         string     `json:"name" db:"name"`
	StepOrder    int        `json:"step_order" db:"step_order"`
	Status       StepStatus `json:"status" db:"status"`
	AssignedTo   string     `json:"assigned_to" db:"assigned_to"`
	AssignedRole string     `json:"assigned_role" db:"assigned_role"`
	StartedAt    *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CompletedBy  string     `json:"completed_by,omitempty" db:"completed_by"`
	Notes        string     `json:"notes,omitempty" db:"notes"`
}

// Authorizes reports whether the identity may act on this step: an exact
// assignee match, or a role match when a role is assigned.
func (s *WorkflowStep) Authorizes(identity Identity) bool {
	if s.AssignedTo != "" && identity.UserID == s.AssignedTo {
		return true
	}
	if s.AssignedRole != "" && identity.Role == s.AssignedRole {
		return true
	}
	return false
}
