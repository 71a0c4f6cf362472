package misc

import (
	"fmt"
	"sync"
	"time"
)

// TimedOutError Generic error for timeouts
type TimedOutError struct {
	msg   string
	after time.Duration
}

func (t *TimedOutError) Error() string {
	return fmt.Sprintf("%s after %s", t.msg, t.after)
}

func (t *TimedOutError) Is(e error) bool {
	_, ok := e.(*TimedOutError)
	return ok
}

func NewTimedOutError(msg string, after time.Duration) error {
	return &TimedOutError{msg, after}
}

// WaitTimeout waits for wg, giving up with a TimedOutError after d
func WaitTimeout(wg *sync.WaitGroup, d time.Duration, msg string) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return NewTimedOutError(msg, d)
	}
}
