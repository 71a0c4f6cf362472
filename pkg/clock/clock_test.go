package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicNeverGoesBackwards(t *testing.T) {
	c := NewMonotonic()

	last := c.UptimeMillis()
	assert.GreaterOrEqual(t, last, int64(0))

	for i := 0; i < 1000; i++ {
		now := c.UptimeMillis()
		assert.GreaterOrEqual(t, now, last)
		last = now
	}
}

func TestMonotonicAdvances(t *testing.T) {
	c := NewMonotonic()

	before := c.UptimeMillis()
	time.Sleep(25 * time.Millisecond)
	after := c.UptimeMillis()

	assert.GreaterOrEqual(t, after-before, int64(20))
}

func TestManual(t *testing.T) {
	m := NewManual(5000)
	assert.Equal(t, int64(5000), m.UptimeMillis())

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, int64(6500), m.UptimeMillis())

	// Sub-millisecond parts are dropped
	m.Advance(999 * time.Microsecond)
	assert.Equal(t, int64(6500), m.UptimeMillis())

	m.Set(0)
	assert.Equal(t, int64(0), m.UptimeMillis())
}
