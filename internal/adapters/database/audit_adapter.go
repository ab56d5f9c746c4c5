package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/repositories"
	"github.com/veridoc/docguard/internal/infrastructure/clients/postgres"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

var auditColumns = []interface{}{
	"id", "request_id", "user_id", "ip_address", "user_agent", "session_id",
	"table_name", "record_id", "action_type", "old_values", "new_values",
	"changed_fields", "risk_level", "compliance_tags", "sequence", "created_at",
}

// AuditAdapter implements the append-only audit trail in Postgres. There is
// no update or delete path; the sequence column is assigned by the database.
type AuditAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAuditAdapter creates a new audit adapter.
func NewAuditAdapter(client *postgres.Client) repositories.AuditRepository {
	return &AuditAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Insert appends one audit event.
func (a *AuditAdapter) Insert(ctx context.Context, event *entities.AuditEvent) error {
	oldValues, err := marshalJSONB(event.OldValues)
	if err != nil {
		return apperrors.NewInternalError("failed to encode old values", err)
	}
	newValues, err := marshalJSONB(event.NewValues)
	if err != nil {
		return apperrors.NewInternalError("failed to encode new values", err)
	}

	record := goqu.Record{
		"id":              event.ID,
		"request_id":      event.RequestID,
		"user_id":         event.UserID,
		"ip_address":      event.IPAddress,
		"user_agent":      event.UserAgent,
		"session_id":      event.SessionID,
		"table_name":      event.TableName,
		"record_id":       event.RecordID,
		"action_type":     string(event.ActionType),
		"old_values":      oldValues,
		"new_values":      newValues,
		"changed_fields":  pq.Array(event.ChangedFields),
		"risk_level":      string(event.RiskLevel),
		"compliance_tags": pq.Array(event.ComplianceTags),
		"created_at":      event.CreatedAt,
	}

	query, args, err := a.db.Insert("audit_events").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build audit insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert audit event", err)
	}
	return nil
}

// ListByRecord pages through one record's audit history, newest first. Ties
// on created_at fall back to the insertion sequence.
func (a *AuditAdapter) ListByRecord(ctx context.Context, recordID string, limit, offset int) ([]*entities.AuditEvent, error) {
	query, args, err := a.db.Select(auditColumns...).
		From("audit_events").
		Where(goqu.Ex{"record_id": recordID}).
		Order(goqu.I("created_at").Desc(), goqu.I("sequence").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build audit list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list audit events", err)
	}
	defer rows.Close()

	var events []*entities.AuditEvent
	for rows.Next() {
		event, err := scanAuditEvent(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan audit event", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanAuditEvent(row rowScanner) (*entities.AuditEvent, error) {
	event := &entities.AuditEvent{}
	var oldValues, newValues []byte
	var requestID, userID, ipAddress, userAgent, sessionID sql.NullString

	err := row.Scan(
		&event.ID,
		&requestID,
		&userID,
		&ipAddress,
		&userAgent,
		&sessionID,
		&event.TableName,
		&event.RecordID,
		&event.ActionType,
		&oldValues,
		&newValues,
		pq.Array(&event.ChangedFields),
		&event.RiskLevel,
		pq.Array(&event.ComplianceTags),
		&event.Sequence,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.RequestID = requestID.String
	event.UserID = userID.String
	event.IPAddress = ipAddress.String
	event.UserAgent = userAgent.String
	event.SessionID = sessionID.String
	if err := unmarshalJSONB(oldValues, &event.OldValues); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(newValues, &event.NewValues); err != nil {
		return nil, err
	}
	return event, nil
}
