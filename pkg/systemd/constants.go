package systemd

const (
	NotifySocketEnvVar = "NOTIFY_SOCKET"
	WatchdogUsecEnvVar = "WATCHDOG_USEC"
	WatchdogPidEnvVar  = "WATCHDOG_PID"

	NotifyWatchdog = "WATCHDOG=1"
	NotifyStopping = "STOPPING=1"
	NotifyReady    = "READY=1"
)
