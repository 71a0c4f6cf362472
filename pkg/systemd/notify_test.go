package systemd

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func listen(t *testing.T) *net.UnixConn {
	t.Helper()

	name := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Net: "unixgram", Name: name})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	t.Setenv(NotifySocketEnvVar, name)
	return conn
}

func receive(t *testing.T, conn *net.UnixConn) string {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestNotifyWithoutSocket(t *testing.T) {
	t.Setenv(NotifySocketEnvVar, "")
	assert.ErrorIs(t, Notify(NotifyReady), ErrNoNotifySocket)
}

func TestNotify(t *testing.T) {
	conn := listen(t)

	require.NoError(t, Notify(NotifyReady))
	assert.Equal(t, NotifyReady, receive(t, conn))
}

func TestWatchdogInterval(t *testing.T) {
	t.Setenv(WatchdogUsecEnvVar, "")
	_, ok, err := WatchdogInterval()
	assert.NoError(t, err)
	assert.False(t, ok)

	t.Setenv(WatchdogUsecEnvVar, "3000000")
	t.Setenv(WatchdogPidEnvVar, strconv.Itoa(os.Getpid()))
	interval, ok, err := WatchdogInterval()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, interval)

	t.Setenv(WatchdogPidEnvVar, strconv.Itoa(os.Getpid()+1))
	_, ok, err = WatchdogInterval()
	assert.NoError(t, err)
	assert.False(t, ok)

	t.Setenv(WatchdogPidEnvVar, "")
	t.Setenv(WatchdogUsecEnvVar, "soon")
	_, _, err = WatchdogInterval()
	assert.Error(t, err)
}

func TestRunWatchdog(t *testing.T) {
	defer goleak.VerifyNone(t)
	conn := listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunWatchdog(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Equal(t, NotifyWatchdog, receive(t, conn))

	cancel()
	<-done
}
