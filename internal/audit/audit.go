/*

This file contains the audit event contract. Every state-changing engine
operation emits an event through a Recorder. Recording is best-effort: a sink
failure is reported to the caller of Record but must never roll back the
business transition that produced the event.

*/

package audit

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/x-liquidity/engine/internal/types"
)

// Recorder is an append-only audit sink. Implementations must never mutate or
// delete entries after they are written.
type Recorder interface {
	Record(event *types.AuditEvent) error
}

// NewEvent builds a complete audit event for the given transition, including
// the tamper-evidence content hash.
func NewEvent(eventType types.AuditEventType, positionID, user string, payload []byte, now time.Time, slot uint64) *types.AuditEvent {
	event := &types.AuditEvent{
		ID:         uuid.New().String(),
		EventType:  eventType,
		PositionID: positionID,
		User:       user,
		Payload:    payload,
		Slot:       slot,
		CreatedAt:  now.UTC(),
	}
	event.Hash = hashEvent(event)
	return event
}

// hashEvent computes the sha256 content hash over the canonical event bytes.
// The hash covers every field that describes the event itself; it does not
// cover the random event ID, so two sinks recording the same transition
// produce the same hash.
func hashEvent(e *types.AuditEvent) string {
	h := sha256.New()
	h.Write([]byte(e.EventType))
	h.Write([]byte{0})
	h.Write([]byte(e.PositionID))
	h.Write([]byte{0})
	h.Write([]byte(e.User))
	h.Write([]byte{0})
	h.Write(e.Payload)

	var tail [16]byte
	binary.BigEndian.PutUint64(tail[:8], uint64(e.CreatedAt.Unix()))
	binary.BigEndian.PutUint64(tail[8:], e.Slot)
	h.Write(tail[:])

	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the content hash of an event and reports whether it
// matches the stored one.
func Verify(e *types.AuditEvent) bool {
	return hashEvent(e) == e.Hash
}

// NopRecorder discards every event. Used when audit logging is disabled in
// the protocol config.
type NopRecorder struct{}

func (NopRecorder) Record(*types.AuditEvent) error { return nil }
