package repositories

import (
	"context"

	"github.com/veridoc/docguard/internal/domain/entities"
)

// EntitySetRepository defines the interface for extracted entity set
// persistence. Sets are append-only; Create never overwrites a prior set.
type EntitySetRepository interface {
	Create(ctx context.Context, set *entities.ExtractedEntitySet) error
	GetByID(ctx context.Context, id string) (*entities.ExtractedEntitySet, error)
	// GetLatestByDocument returns the most recent set for a document, or a
	// not-found error when the document was never extracted.
	GetLatestByDocument(ctx context.Context, documentID string) (*entities.ExtractedEntitySet, error)
}
