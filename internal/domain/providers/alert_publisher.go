package providers

import "context"

// OperatorAlert is a notice surfaced on the operator channel when a
// best-effort subsystem (the audit trail) fails without failing its caller.
type OperatorAlert struct {
	Source   string `json:"source"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	RecordID string `json:"record_id,omitempty"`
}

// AlertPublisher defines the interface for operator-visible alerting.
type AlertPublisher interface {
	Publish(ctx context.Context, alert OperatorAlert) error
}
