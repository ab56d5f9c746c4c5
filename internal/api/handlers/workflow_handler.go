package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veridoc/docguard/internal/domain/entities"
)

// WorkflowStepService defines the workflow operations used by the handler.
type WorkflowStepService interface {
	CreateStep(ctx context.Context, actor entities.Actor, step *entities.WorkflowStep) error
	Transition(ctx context.Context, actor entities.Actor, identity entities.Identity, stepID string, target entities.StepStatus, notes string) (*entities.WorkflowStep, error)
	ListSteps(ctx context.Context, documentID string) ([]*entities.WorkflowStep, error)
}

// WorkflowHandler handles workflow step management.
type WorkflowHandler struct {
	service WorkflowStepService
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(service WorkflowStepService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

type createStepRequest struct {
	DocumentID   string `json:"document_id"`
	Name         string `json:"name"`
	StepOrder    int    `json:"step_order"`
	AssignedTo   string `json:"assigned_to"`
	AssignedRole string `json:"assigned_role"`
}

// CreateStep handles POST /api/workflow/steps
func (h *WorkflowHandler) CreateStep(w http.ResponseWriter, r *http.Request) {
	var payload createStepRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	step := &entities.WorkflowStep{
		DocumentID:   payload.DocumentID,
		Name:         payload.Name,
		StepOrder:    payload.StepOrder,
		AssignedTo:   payload.AssignedTo,
		AssignedRole: payload.AssignedRole,
	}

	if err := h.service.CreateStep(r.Context(), actorFromRequest(r), step); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, step)
}

type transitionRequest struct {
	TargetStatus string `json:"target_status"`
	Notes        string `json:"notes"`
}

var workflowTargets = map[entities.StepStatus]bool{
	entities.StepStatusInProgress: true,
	entities.StepStatusCompleted:  true,
	entities.StepStatusRejected:   true,
	entities.StepStatusSkipped:    true,
}

// TransitionStep handles POST /api/workflow/steps/{id}/transition
func (h *WorkflowHandler) TransitionStep(w http.ResponseWriter, r *http.Request) {
	var payload transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	target := entities.StepStatus(payload.TargetStatus)
	if !workflowTargets[target] {
		respondWithError(w, http.StatusBadRequest, "target_status must be IN_PROGRESS, COMPLETED, REJECTED or SKIPPED")
		return
	}

	step, err := h.service.Transition(r.Context(), actorFromRequest(r), identityFromRequest(r), r.PathValue("id"), target, payload.Notes)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, step)
}

// ListDocumentSteps handles GET /api/documents/{id}/workflow
func (h *WorkflowHandler) ListDocumentSteps(w http.ResponseWriter, r *http.Request) {
	steps, err := h.service.ListSteps(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if steps == nil {
		steps = []*entities.WorkflowStep{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"steps": steps})
}
