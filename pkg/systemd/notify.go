package systemd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/LeoCommon/locationsim/pkg/log"
	"go.uber.org/zap"
)

var ErrNoNotifySocket = errors.New("systemd-notify socket was not available")

// EntertainWatchdog sends a notification to the systemd watchdog
func EntertainWatchdog() error {
	log.Debug("Notifying systemd watchdog")
	return Notify(NotifyWatchdog)
}

// Notify sends the provided msg to the systemd socket
func Notify(msg string) error {
	name := os.Getenv(NotifySocketEnvVar)
	if name == "" {
		return ErrNoNotifySocket
	}

	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Net: "unixgram", Name: name})
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(msg))
	return err
}

// WatchdogInterval returns half the watchdog timeout systemd configured for
// this process, ok is false if no watchdog is expected
func WatchdogInterval() (interval time.Duration, ok bool, err error) {
	usec := os.Getenv(WatchdogUsecEnvVar)
	if usec == "" {
		return 0, false, nil
	}

	if pid := os.Getenv(WatchdogPidEnvVar); pid != "" && pid != strconv.Itoa(os.Getpid()) {
		return 0, false, nil
	}

	n, err := strconv.ParseInt(usec, 10, 64)
	if err != nil || n <= 0 {
		return 0, false, fmt.Errorf("invalid %s %q", WatchdogUsecEnvVar, usec)
	}

	return time.Duration(n) * time.Microsecond / 2, true, nil
}

// RunWatchdog feeds the watchdog every interval until ctx is done
func RunWatchdog(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := EntertainWatchdog(); err != nil {
				log.Warn("watchdog notification failed", zap.Error(err))
			}
		}
	}
}
