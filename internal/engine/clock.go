package engine

import (
	"sync/atomic"
	"time"
)

// Clock supplies wall-clock time and a monotonically increasing slot counter.
// All timestamps and cadence checks in the engine go through a Clock so tests
// can drive time explicitly.
type Clock interface {
	Now() time.Time
	Slot() uint64
}

// SystemClock derives slots from wall time at millisecond resolution, with a
// guard so the sequence never moves backwards even if the wall clock does.
type SystemClock struct {
	lastSlot atomic.Uint64
}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (c *SystemClock) Slot() uint64 {
	candidate := uint64(time.Now().UnixMilli())
	for {
		last := c.lastSlot.Load()
		if candidate <= last {
			candidate = last + 1
		}
		if c.lastSlot.CompareAndSwap(last, candidate) {
			return candidate
		}
	}
}
