// ./internal/state/audit_store.go
package state

import (
	"fmt"

	"github.com/x-liquidity/engine/internal/types"
)

// PostgresRecorder implements audit.Recorder on the audit_log table. The
// table is append-only: this type exposes no update or delete path.
type PostgresRecorder struct{}

// Record appends one audit event.
func (PostgresRecorder) Record(event *types.AuditEvent) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	payload := event.Payload
	if len(payload) == 0 {
		payload = []byte("null")
	}

	_, err := DB.Exec(`
		INSERT INTO audit_log (event_id, event_type, position_id, user_address, payload, event_hash, slot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		event.ID, string(event.EventType), event.PositionID, event.User,
		payload, event.Hash, fmt.Sprintf("%d", event.Slot), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit event %s: %w", event.ID, err)
	}
	return nil
}

// GetRecentAuditEvents returns the newest events, most recent first.
func GetRecentAuditEvents(limit int) ([]types.AuditEvent, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := DB.Query(`
		SELECT event_id, event_type, position_id, user_address, payload, event_hash, slot, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var events []types.AuditEvent
	for rows.Next() {
		var (
			e         types.AuditEvent
			eventType string
			rawSlot   string
		)
		if err := rows.Scan(&e.ID, &eventType, &e.PositionID, &e.User, &e.Payload, &e.Hash, &rawSlot, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.EventType = types.AuditEventType(eventType)
		if _, err := fmt.Sscanf(rawSlot, "%d", &e.Slot); err != nil {
			return nil, fmt.Errorf("invalid slot %q: %w", rawSlot, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit log: %w", err)
	}

	return events, nil
}
