package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/providers"
	"github.com/veridoc/docguard/internal/domain/repositories"
	"github.com/veridoc/docguard/internal/infrastructure/observability"
)

// AuditEntry is the caller-supplied portion of an audit event. The recorder
// adds the id, request id and server timestamp.
type AuditEntry struct {
	TableName      string
	RecordID       string
	ActionType     entities.ActionType
	OldValues      map[string]interface{}
	NewValues      map[string]interface{}
	ChangedFields  []string
	RiskLevel      entities.AuditRiskLevel
	ComplianceTags []string
}

// Auditor records state-changing actions. Recording is best-effort: it never
// returns an error to the caller.
type Auditor interface {
	Record(ctx context.Context, actor entities.Actor, entry AuditEntry)
}

// AuditService appends immutable audit events for every mutating action in
// the engine. An audit write failure is logged, counted and surfaced on the
// operator alert channel, but never propagated: an audit gap is preferred
// over blocking business logic.
type AuditService struct {
	repo    repositories.AuditRepository
	alerts  providers.AlertPublisher
	metrics *observability.Metrics
}

// NewAuditService creates a new audit service. alerts and metrics may be nil.
func NewAuditService(repo repositories.AuditRepository, alerts providers.AlertPublisher, metrics *observability.Metrics) *AuditService {
	return &AuditService{repo: repo, alerts: alerts, metrics: metrics}
}

// Record appends one audit event. Failures are swallowed after being
// surfaced operationally.
func (s *AuditService) Record(ctx context.Context, actor entities.Actor, entry AuditEntry) {
	event := &entities.AuditEvent{
		ID:             uuid.New().String(),
		RequestID:      uuid.New().String(),
		UserID:         actor.UserID,
		IPAddress:      actor.IPAddress,
		UserAgent:      actor.UserAgent,
		SessionID:      actor.SessionID,
		TableName:      entry.TableName,
		RecordID:       entry.RecordID,
		ActionType:     entry.ActionType,
		OldValues:      entry.OldValues,
		NewValues:      entry.NewValues,
		ChangedFields:  entry.ChangedFields,
		RiskLevel:      entry.RiskLevel,
		ComplianceTags: entry.ComplianceTags,
		CreatedAt:      time.Now().UTC(),
	}
	if event.RiskLevel == "" {
		event.RiskLevel = entities.AuditRiskLow
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		logger := observability.LoggerFromContext(ctx)
		logger.Error().
			Err(err).
			Str("table_name", entry.TableName).
			Str("record_id", entry.RecordID).
			Str("action_type", string(entry.ActionType)).
			Msg("audit trail write failed; continuing without audit record")

		if s.metrics != nil {
			s.metrics.AuditWriteFailures.Add(ctx, 1)
		}

		if s.alerts != nil {
			alert := providers.OperatorAlert{
				Source:   "audit_trail",
				Severity: "error",
				Message:  "audit trail write failed: " + err.Error(),
				RecordID: entry.RecordID,
			}
			if alertErr := s.alerts.Publish(ctx, alert); alertErr != nil {
				logger.Error().Err(alertErr).Msg("operator alert publish failed")
			}
		}
	}
}

// ListByRecord returns a record's audit history in reverse-chronological
// order. Pagination is the caller's concern; a non-positive limit defaults
// to 50.
func (s *AuditService) ListByRecord(ctx context.Context, recordID string, limit, offset int) ([]*entities.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByRecord(ctx, recordID, limit, offset)
}
