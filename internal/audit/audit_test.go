package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/x-liquidity/engine/internal/types"
)

var eventTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewEventHash(t *testing.T) {
	event := NewEvent(types.AuditRebalanced, "position-1", "owner-1", []byte(`{"decision_id":"d-1"}`), eventTime, 42)

	require.NotEmpty(t, event.ID)
	require.Len(t, event.Hash, 64)
	require.True(t, Verify(event))
}

func TestVerifyDetectsTampering(t *testing.T) {
	event := NewEvent(types.AuditFeesCollected, "position-1", "owner-1", []byte(`{"collected_a":"100"}`), eventTime, 42)

	tampered := *event
	tampered.Payload = []byte(`{"collected_a":"1"}`)
	require.False(t, Verify(&tampered))

	tampered = *event
	tampered.User = "someone-else"
	require.False(t, Verify(&tampered))

	tampered = *event
	tampered.Slot = 43
	require.False(t, Verify(&tampered))

	tampered = *event
	tampered.CreatedAt = eventTime.Add(time.Second)
	require.False(t, Verify(&tampered))

	require.True(t, Verify(event))
}

func TestHashIgnoresEventID(t *testing.T) {
	a := NewEvent(types.AuditPositionCreated, "position-1", "owner-1", nil, eventTime, 7)
	b := NewEvent(types.AuditPositionCreated, "position-1", "owner-1", nil, eventTime, 7)

	// Two sinks recording the same transition agree on the hash even though
	// the random IDs differ.
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, a.Hash, b.Hash)
}

func TestFieldSeparatorsAreUnambiguous(t *testing.T) {
	a := NewEvent(types.AuditEventType("AB"), "C", "u", nil, eventTime, 1)
	b := NewEvent(types.AuditEventType("A"), "BC", "u", nil, eventTime, 1)
	require.NotEqual(t, a.Hash, b.Hash)
}
