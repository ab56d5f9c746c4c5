package repositories

import (
	"context"

	"github.com/veridoc/docguard/internal/domain/entities"
)

// WorkflowRepository defines the interface for workflow step persistence.
type WorkflowRepository interface {
	Create(ctx context.Context, step *entities.WorkflowStep) error
	GetByID(ctx context.Context, id string) (*entities.WorkflowStep, error)
	ListByDocument(ctx context.Context, documentID string) ([]*entities.WorkflowStep, error)
	Update(ctx context.Context, step *entities.WorkflowStep) error
}
