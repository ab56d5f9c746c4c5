package repositories

import (
	"context"

	"github.com/veridoc/docguard/internal/domain/entities"
)

// AuditRepository defines the interface for the audit trail. The trail is
// strictly append-only: the interface deliberately exposes no update or
// delete operation.
type AuditRepository interface {
	Insert(ctx context.Context, event *entities.AuditEvent) error
	// ListByRecord returns events for one record in reverse-chronological
	// order (created_at, then insertion sequence). Pagination is the
	// caller's concern.
	ListByRecord(ctx context.Context, recordID string, limit, offset int) ([]*entities.AuditEvent, error)
}
