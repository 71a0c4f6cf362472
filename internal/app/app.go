package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/LeoCommon/locationsim/internal/config"
	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/location/testprovider"
	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/LeoCommon/locationsim/pkg/misc"
	"github.com/LeoCommon/locationsim/pkg/systemd"
	"go.uber.org/zap"
)

const ShutdownTimeout = 10 * time.Second

// App global app struct that contains all services
type App struct {
	// A global wait group, all go routines that should
	// terminate when the application ends should be registered here
	WG sync.WaitGroup

	ToggleSignal chan os.Signal
	ExitSignal   chan os.Signal

	Conf *config.Manager

	Manager  *location.Manager
	Provider *testprovider.Provider

	// Subscription ids by sink name
	Sinks map[string]string

	debug           bool
	instrumentation bool
	cancel          context.CancelFunc
}

func (a *App) loadConfiguration(configPath string) error {
	// A missing config file is fine, the defaults apply
	a.Conf = config.NewManager()
	if err := a.Conf.Load(configPath, true); err != nil {
		log.Error("an error occurred while trying to load the config file", zap.String("path", configPath), zap.Error(err))
		return err
	}

	return nil
}

func Setup(flags config.CLIFlags, instrumentation bool) (*App, error) {
	app := App{
		Sinks:           make(map[string]string),
		instrumentation: instrumentation,
	}

	app.ExitSignal = make(chan os.Signal, 1)
	app.ToggleSignal = make(chan os.Signal, 1)

	// Tests feed the channels directly
	if !instrumentation {
		signal.Notify(app.ExitSignal, os.Interrupt, syscall.SIGTERM)
		signal.Notify(app.ToggleSignal, syscall.SIGUSR1)
	}

	// Initialize logger early so config problems are visible
	log.Init(flags.Debug)

	if err := app.loadConfiguration(flags.ConfigPath); err != nil {
		app.stopSignals()
		return nil, err
	}

	// The config may enable debug output too
	app.debug = flags.Debug || app.Conf.Client().C().Debug
	if app.debug && !flags.Debug && !instrumentation {
		log.Init(true)
	}

	log.Info("location simulator starting")

	app.Manager = location.NewManager(
		location.WithDeliveryTimeout(app.Conf.Delivery().C().DeliveryTimeout.Value()),
	)

	providerConf := app.Conf.Provider().C()
	app.Provider = testprovider.New(app.Manager,
		testprovider.WithName(providerConf.Name),
		testprovider.WithInterval(providerConf.Interval.Value()),
	)

	if err := app.Manager.RegisterProvider(app.Provider); err != nil {
		app.stopSignals()
		return nil, err
	}

	app.setupSinks(app.Provider.Name())

	return &app, nil
}

// Toggle switches the provider between enabled and disabled
func (a *App) Toggle() {
	name := a.Provider.Name()

	var err error
	if a.Provider.IsEnabled() {
		err = a.Manager.DisableProvider(name)
	} else {
		err = a.Manager.EnableProvider(name)
	}

	if err != nil {
		log.Error("provider toggle failed", zap.String("provider", name), zap.Error(err))
		return
	}

	log.Info("provider toggled", zap.String("provider", name), zap.Bool("enabled", a.Provider.IsEnabled()))
}

// Run enables the provider and blocks until an exit signal arrives or ctx is done
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	if err := a.Manager.EnableProvider(a.Provider.Name()); err != nil {
		return err
	}

	if err := systemd.Notify(systemd.NotifyReady); err != nil && !errors.Is(err, systemd.ErrNoNotifySocket) {
		log.Warn("systemd ready notification failed", zap.Error(err))
	}

	interval, ok, err := systemd.WatchdogInterval()
	if err != nil {
		log.Warn("ignoring watchdog configuration", zap.Error(err))
	}
	if ok {
		log.Info("feeding systemd watchdog", zap.Duration("interval", interval))

		a.WG.Add(1)
		go func() {
			defer a.WG.Done()
			systemd.RunWatchdog(ctx, interval)
		}()
	}

	for {
		select {
		case <-a.ToggleSignal:
			log.Info("toggle signal received")
			a.Toggle()

		case <-a.ExitSignal:
			log.Info("exit signal received - shutting down provider and sinks")
			return nil

		case <-ctx.Done():
			return nil
		}
	}
}

func (a *App) stopSignals() {
	if !a.instrumentation {
		signal.Stop(a.ExitSignal)
		signal.Stop(a.ToggleSignal)
	}
}

// Shutdown disables the provider, closes all sinks and waits for the
// remaining routines, bounded by ShutdownTimeout
func (a *App) Shutdown() error {
	if err := systemd.Notify(systemd.NotifyStopping); err != nil && !errors.Is(err, systemd.ErrNoNotifySocket) {
		log.Warn("systemd stopping notification failed", zap.Error(err))
	}

	a.stopSignals()
	if a.cancel != nil {
		a.cancel()
	}

	var shutdownErr error
	a.WG.Add(1)
	go func() {
		defer a.WG.Done()
		shutdownErr = a.Manager.Shutdown()
	}()

	if err := misc.WaitTimeout(&a.WG, ShutdownTimeout, "shutdown"); err != nil {
		log.Error("shutdown did not complete", zap.Error(err))
		return err
	}

	log.Info("location simulator stopped")
	return shutdownErr
}
