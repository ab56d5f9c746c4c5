package entities

import "time"

// ActionType enumerates the auditable actions across the engine.
type ActionType string

const (
	ActionCreate   ActionType = "CREATE"
	ActionUpdate   ActionType = "UPDATE"
	ActionDelete   ActionType = "DELETE"
	ActionView     ActionType = "VIEW"
	ActionDownload ActionType = "DOWNLOAD"
	ActionApprove  ActionType = "APPROVE"
	ActionReject   ActionType = "REJECT"
)

// AuditRiskLevel grades how sensitive an audited action is.
type AuditRiskLevel string

const (
	AuditRiskLow      AuditRiskLevel = "LOW"
	AuditRiskMedium   AuditRiskLevel = "MEDIUM"
	AuditRiskHigh     AuditRiskLevel = "HIGH"
	AuditRiskCritical AuditRiskLevel = "CRITICAL"
)

// Actor is the identity context decorating an audit event. It is always
// passed explicitly by the caller, never read from ambient state, so the
// recorder stays testable with synthetic actors.
type Actor struct {
	UserID    string `json:"user_id"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	SessionID string `json:"session_id"`
}

// AuditEvent is one immutable record of a state-changing (or sensitive
// read) action. Events are append-only: once written they are never updated
// or deleted. Within one record's history, ordering is by created_at then by
// the insertion sequence.
type AuditEvent struct {
	ID             string                 `json:"id" db:"id"`
	RequestID      string                 `json:"request_id" db:"request_id"`
	UserID         string                 `json:"user_id" db:"user_id"`
	IPAddress      string                 `json:"ip_address" db:"ip_address"`
	UserAgent      string                 `json:"user_agent" db:"user_agent"`
	SessionID      string                 `json:"session_id" db:"session_id"`
	TableName      string                 `json:"table_name" db:"table_name"`
	RecordID       string                 `json:"record_id" db:"record_id"`
	ActionType     ActionType             `json:"action_type" db:"action_type"`
	OldValues      map[string]interface{} `json:"old_values,omitempty"`
	NewValues      map[string]interface{} `json:"new_values,omitempty"`
	ChangedFields  []string               `json:"changed_fields,omitempty"`
	RiskLevel      AuditRiskLevel         `json:"risk_level" db:"risk_level"`
	ComplianceTags []string               `json:"compliance_tags,omitempty"`
	Sequence       int64                  `json:"sequence" db:"sequence"`
	CreatedAt      time.Time              `json:"created_at" db:"created_at"`
}
