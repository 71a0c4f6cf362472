package misc

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimedOutError(t *testing.T) {
	err := NewTimedOutError("shutdown", 3*time.Second)
	assert.Equal(t, "shutdown after 3s", err.Error())
	assert.True(t, errors.Is(err, &TimedOutError{}))
}

func TestWaitTimeout(t *testing.T) {
	var wg sync.WaitGroup
	assert.NoError(t, WaitTimeout(&wg, 10*time.Millisecond, "idle"))

	wg.Add(1)
	err := WaitTimeout(&wg, 10*time.Millisecond, "stuck")
	assert.ErrorIs(t, err, &TimedOutError{})

	wg.Done()
}
