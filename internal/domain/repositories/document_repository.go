package repositories

import (
	"context"

	"github.com/veridoc/docguard/internal/domain/entities"
)

// DocumentRepository defines the interface for document persistence.
// Documents are created by ingest and read-only afterwards.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entities.Document) error
	GetByID(ctx context.Context, id string) (*entities.Document, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Document, error)
}
