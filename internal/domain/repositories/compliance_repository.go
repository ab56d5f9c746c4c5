package repositories

import (
	"context"

	"github.com/veridoc/docguard/internal/domain/entities"
)

// FrameworkRepository defines the interface for compliance framework
// configuration reads.
type FrameworkRepository interface {
	GetByID(ctx context.Context, id string) (*entities.ComplianceFramework, error)
	ListActive(ctx context.Context) ([]*entities.ComplianceFramework, error)
	Upsert(ctx context.Context, framework *entities.ComplianceFramework) error
}

// ComplianceCheckRepository defines the interface for compliance check
// persistence. Checks are append-only; re-evaluation inserts a new row that
// supersedes the prior one.
type ComplianceCheckRepository interface {
	Create(ctx context.Context, check *entities.ComplianceCheck) error
	GetLatest(ctx context.Context, documentID, frameworkID string) (*entities.ComplianceCheck, error)
	ListByDocument(ctx context.Context, documentID string) ([]*entities.ComplianceCheck, error)
}
