// Package testprovider implements a synthetic location provider for test setups.
//
// While enabled it produces one sample per interval on a slowly moving,
// periodically resetting trajectory derived from the monotonic clock and
// reports it to a location.Reporter.
package testprovider

import (
	"fmt"
	"sync"
	"time"

	"github.com/LeoCommon/locationsim/pkg/clock"
	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	ProviderName = "test"

	// Per-step units of the synthetic trajectory
	Lat      = 0.0
	Lon      = 1.0
	Altitude = 10000.0
	Speed    = float32(10)
	Bearing  = float32(1)
	Status   = location.StatusAvailable

	LocationInterval = 1000 * time.Millisecond

	ExtraTestKey   = "extraTest"
	ExtraTestValue = 24

	// The multiplier grows by one every MultiplierStep ms and wraps after
	// MultiplierPeriod steps (2.500.000 s)
	MultiplierStep   = 5000
	MultiplierPeriod = 500000
)

// Multiplier returns the trajectory step for the monotonic time t in ms
func Multiplier(t int64) int64 {
	return (t / MultiplierStep) % MultiplierPeriod
}

// SampleAt computes the sample the provider named name reports at time t
func SampleAt(name string, t int64) location.Location {
	multiplier := Multiplier(t)

	extras := make(location.Extras, 1)
	extras.PutInt(ExtraTestKey, ExtraTestValue)

	return location.Location{
		Provider:  name,
		Latitude:  Lat * float64(multiplier),
		Longitude: Lon * float64(multiplier),
		Altitude:  Altitude,
		Speed:     Speed,
		Bearing:   Bearing * float32(multiplier),
		Status:    Status,
		Time:      t,
		Extras:    extras,
	}
}

// Provider is the synthetic location source
type Provider struct {
	name     string
	reporter location.Reporter
	clock    clock.Clock
	interval time.Duration

	// mu serializes Enable and Disable
	mu      sync.Mutex
	enabled atomic.Bool
	stop    chan struct{}
	done    chan struct{}

	locMu    sync.RWMutex
	location location.Location
	hasFix   bool
}

type Option func(*Provider)

func WithClock(c clock.Clock) Option {
	return func(p *Provider) {
		p.clock = c
	}
}

// WithInterval overrides the time between two samples, non-positive values are ignored
func WithInterval(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithName(name string) Option {
	return func(p *Provider) {
		if name != "" {
			p.name = name
		}
	}
}

// New creates a disabled provider reporting to reporter
func New(reporter location.Reporter, opts ...Option) *Provider {
	p := &Provider{
		name:     ProviderName,
		reporter: reporter,
		interval: LocationInterval,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.clock == nil {
		p.clock = clock.NewMonotonic()
	}

	p.location = location.New(p.name)
	return p
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Interval() time.Duration { return p.interval }

func (p *Provider) Accuracy() location.Accuracy { return location.AccuracyCoarse }

func (p *Provider) PowerRequirement() location.Power { return location.PowerNoRequirement }

func (p *Provider) HasMonetaryCost() bool   { return false }
func (p *Provider) RequiresCell() bool      { return false }
func (p *Provider) RequiresNetwork() bool   { return false }
func (p *Provider) RequiresSatellite() bool { return false }
func (p *Provider) SupportsAltitude() bool  { return true }
func (p *Provider) SupportsBearing() bool   { return true }
func (p *Provider) SupportsSpeed() bool     { return true }

// Status always reports the provider as available
func (p *Provider) Status(_ location.Extras) location.Status {
	return Status
}

// Enable starts the sample loop, calling it on an enabled provider does nothing
func (p *Provider) Enable() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.enabled.Load() {
		return
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.enabled.Store(true)

	go p.run(p.stop, p.done)
	log.Debug("test provider loop started", zap.String("provider", p.name), zap.Duration("interval", p.interval))
}

// Disable stops the sample loop and returns once it exited.
// Must not be called from the reporter while it handles a sample of this provider.
func (p *Provider) Disable() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.enabled.Store(false)
	if p.stop == nil {
		return
	}

	close(p.stop)
	<-p.done

	p.stop = nil
	p.done = nil
	log.Debug("test provider loop stopped", zap.String("provider", p.name))
}

func (p *Provider) IsEnabled() bool {
	return p.enabled.Load()
}

// LastLocation returns the most recent sample, false if none was produced yet
func (p *Provider) LastLocation() (location.Location, bool) {
	p.locMu.RLock()
	defer p.locMu.RUnlock()

	loc := p.location
	loc.Extras = loc.Extras.Clone()
	return loc, p.hasFix
}

// run exits after the stop channel was closed
func (p *Provider) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		// A stop that raced the tick wins
		select {
		case <-stop:
			return
		default:
		}

		p.updateLocation()
	}
}

func (p *Provider) updateLocation() {
	loc := SampleAt(p.name, p.clock.UptimeMillis())

	// The reporter gets its own extras, the stored sample stays untouched
	stored := loc
	stored.Extras = loc.Extras.Clone()

	p.locMu.Lock()
	p.location = stored
	p.hasFix = true
	p.locMu.Unlock()

	if err := p.report(loc); err != nil {
		log.Warn("location report failed", zap.String("provider", p.name), zap.Int64("time", loc.Time), zap.Error(err))
	}
}

// report shields the loop from a panicking reporter
func (p *Provider) report(loc location.Location) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reporter panicked: %v", r)
		}
	}()

	if p.reporter == nil {
		return nil
	}

	return p.reporter.ReportLocationChanged(loc)
}
