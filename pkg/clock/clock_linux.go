//go:build linux

package clock

import (
	"time"

	"github.com/LeoCommon/locationsim/pkg/log"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// bootClock reads CLOCK_MONOTONIC, time since boot without suspend
type bootClock struct{}

func (bootClock) UptimeMillis() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// Can only fail on an invalid clock id, which would be a build problem
		log.Panic("CLOCK_MONOTONIC unavailable", zap.Error(err))
	}

	return ts.Nano() / int64(time.Millisecond)
}

func newMonotonic() Clock {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		log.Warn("CLOCK_MONOTONIC unavailable, falling back to process clock", zap.Error(err))
		return &processClock{start: time.Now()}
	}

	return bootClock{}
}
