// Package clock provides the monotonic millisecond time source used to stamp samples.
package clock

import (
	"sync"
	"time"
)

// Clock returns milliseconds since an arbitrary, fixed epoch.
// Values never go backwards and are not affected by wall-clock adjustments.
type Clock interface {
	UptimeMillis() int64
}

// NewMonotonic returns the platform monotonic clock
func NewMonotonic() Clock {
	return newMonotonic()
}

// processClock counts from process start using the monotonic reading of time.Now
type processClock struct {
	start time.Time
}

func (c *processClock) UptimeMillis() int64 {
	return time.Since(c.start).Milliseconds()
}

// Manual is a clock that only moves when told to
type Manual struct {
	mu  sync.RWMutex
	now int64
}

func NewManual(start int64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) UptimeMillis() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the clock to ms
func (m *Manual) Set(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = ms
}

// Advance moves the clock forward by d, truncated to milliseconds
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d.Milliseconds()
}
