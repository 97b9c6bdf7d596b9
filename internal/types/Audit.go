package types

import "time"

// AuditEventType enumerates the state changes the engine records.
type AuditEventType string

const (
	AuditPositionCreated       AuditEventType = "POSITION_CREATED"
	AuditPositionStatusChanged AuditEventType = "POSITION_STATUS_CHANGED"
	AuditPositionClosed        AuditEventType = "POSITION_CLOSED"
	AuditDecisionCreated       AuditEventType = "DECISION_CREATED"
	AuditRebalanced            AuditEventType = "REBALANCED"
	AuditDecisionRejected      AuditEventType = "DECISION_REJECTED"
	AuditDecisionCancelled     AuditEventType = "DECISION_CANCELLED"
	AuditExecutionFailed       AuditEventType = "EXECUTION_FAILED"
	AuditFeesCollected         AuditEventType = "FEES_COLLECTED"
	AuditPaymentReceived       AuditEventType = "PAYMENT_RECEIVED"
	AuditHumanApprovalGranted  AuditEventType = "HUMAN_APPROVAL_GRANTED"
	AuditPolicyViolation       AuditEventType = "POLICY_VIOLATION"
)

// AuditEvent is a single append-only audit record. Entries are never mutated
// or deleted after creation; the content hash makes tampering detectable.
type AuditEvent struct {
	ID         string         `json:"id"`
	EventType  AuditEventType `json:"event_type"`
	PositionID string         `json:"position_id,omitempty"`
	User       string         `json:"user"`
	Payload    []byte         `json:"payload,omitempty"`
	Hash       string         `json:"hash"` // hex sha256 over the canonical event bytes
	Slot       uint64         `json:"slot"`
	CreatedAt  time.Time      `json:"created_at"`
}
