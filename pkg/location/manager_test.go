package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// fakeProvider only tracks its enabled state
type fakeProvider struct {
	mu      sync.Mutex
	name    string
	enabled bool
}

func (f *fakeProvider) Name() string              { return f.name }
func (f *fakeProvider) Accuracy() Accuracy        { return AccuracyFine }
func (f *fakeProvider) PowerRequirement() Power   { return PowerHigh }
func (f *fakeProvider) Status(_ Extras) Status    { return StatusTemporarilyUnavailable }
func (f *fakeProvider) Enable()                   { f.mu.Lock(); f.enabled = true; f.mu.Unlock() }
func (f *fakeProvider) Disable()                  { f.mu.Lock(); f.enabled = false; f.mu.Unlock() }
func (f *fakeProvider) IsEnabled() bool           { f.mu.Lock(); defer f.mu.Unlock(); return f.enabled }

type recordingListener struct {
	mu      sync.Mutex
	samples []Location
	err     error
	closed  int
}

func (r *recordingListener) OnLocationChanged(_ context.Context, loc Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, loc)
	return r.err
}

func (r *recordingListener) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *recordingListener) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func TestRegisterProvider(t *testing.T) {
	log.Init(true)
	m := NewManager()

	require.NoError(t, m.RegisterProvider(&fakeProvider{name: "b"}))
	require.NoError(t, m.RegisterProvider(&fakeProvider{name: "a"}))
	assert.ErrorIs(t, m.RegisterProvider(&fakeProvider{name: "a"}), ErrProviderExists)

	assert.Equal(t, []string{"a", "b"}, m.Providers())

	p, err := m.Provider("a")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name())

	_, err = m.Provider("gps")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestEnableDisableProvider(t *testing.T) {
	log.Init(true)
	m := NewManager()
	p := &fakeProvider{name: "a"}
	require.NoError(t, m.RegisterProvider(p))

	require.NoError(t, m.EnableProvider("a"))
	assert.True(t, p.IsEnabled())

	require.NoError(t, m.DisableProvider("a"))
	assert.False(t, p.IsEnabled())

	assert.ErrorIs(t, m.EnableProvider("missing"), ErrProviderNotFound)
	assert.ErrorIs(t, m.DisableProvider("missing"), ErrProviderNotFound)
}

func TestReportFansOutByProvider(t *testing.T) {
	log.Init(true)
	m := NewManager()

	onlyA := &recordingListener{}
	all := &recordingListener{}
	m.Subscribe("a", onlyA)
	m.Subscribe(AllProviders, all)

	require.NoError(t, m.ReportLocationChanged(Location{Provider: "a", Time: 1}))
	require.NoError(t, m.ReportLocationChanged(Location{Provider: "b", Time: 2}))

	assert.Equal(t, 1, onlyA.Count())
	assert.Equal(t, 2, all.Count())

	last, ok := m.LastKnownLocation("b")
	require.True(t, ok)
	assert.Equal(t, int64(2), last.Time)

	_, ok = m.LastKnownLocation("c")
	assert.False(t, ok)
}

func TestListenersCannotMutateDeliveredSamples(t *testing.T) {
	log.Init(true)
	m := NewManager()

	mutating := ListenerFunc(func(_ context.Context, loc Location) error {
		loc.Extras.PutInt("mutated", 1)
		return nil
	})
	after := &recordingListener{}
	m.Subscribe(AllProviders, mutating)
	m.Subscribe(AllProviders, after)

	loc := Location{Provider: "a", Time: 1, Extras: Extras{"extraTest": 24}}
	require.NoError(t, m.ReportLocationChanged(loc))

	expected := Extras{"extraTest": 24}
	assert.Equal(t, expected, loc.Extras)
	require.Equal(t, 1, after.Count())
	assert.Equal(t, expected, after.samples[0].Extras)

	last, ok := m.LastKnownLocation("a")
	require.True(t, ok)
	assert.Equal(t, expected, last.Extras)

	last.Extras.PutInt("mutated", 1)
	again, _ := m.LastKnownLocation("a")
	assert.Equal(t, expected, again.Extras)
}

func TestFailingListenerDoesNotBlockOthers(t *testing.T) {
	log.Init(true)
	m := NewManager()

	errA := errors.New("a is down")
	errB := errors.New("b is down")
	failingA := &recordingListener{err: errA}
	healthy := &recordingListener{}
	failingB := &recordingListener{err: errB}

	m.Subscribe(AllProviders, failingA)
	m.Subscribe(AllProviders, healthy)
	m.Subscribe(AllProviders, failingB)

	err := m.ReportLocationChanged(Location{Provider: "test"})
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, multierr.Errors(err), 2)

	assert.Equal(t, 1, healthy.Count())
	assert.Equal(t, 1, failingB.Count())
}

func TestDeliveryContextHasTimeout(t *testing.T) {
	log.Init(true)
	m := NewManager(WithDeliveryTimeout(10 * time.Millisecond))

	m.Subscribe(AllProviders, ListenerFunc(func(ctx context.Context, _ Location) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	start := time.Now()
	err := m.ReportLocationChanged(Location{Provider: "test"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestUnsubscribe(t *testing.T) {
	log.Init(true)
	m := NewManager()

	l := &recordingListener{}
	id := m.Subscribe(AllProviders, l)
	assert.NotEmpty(t, id)

	require.NoError(t, m.ReportLocationChanged(Location{Provider: "test"}))
	assert.True(t, m.Unsubscribe(id))
	assert.False(t, m.Unsubscribe(id))
	require.NoError(t, m.ReportLocationChanged(Location{Provider: "test"}))

	assert.Equal(t, 1, l.Count())
	assert.Equal(t, 0, l.closed)
}

func TestListenerMayUnsubscribeItself(t *testing.T) {
	log.Init(true)
	m := NewManager()

	var id string
	calls := 0
	id = m.Subscribe(AllProviders, ListenerFunc(func(_ context.Context, _ Location) error {
		calls++
		m.Unsubscribe(id)
		return nil
	}))

	require.NoError(t, m.ReportLocationChanged(Location{Provider: "test"}))
	require.NoError(t, m.ReportLocationChanged(Location{Provider: "test"}))
	assert.Equal(t, 1, calls)
}

func TestShutdown(t *testing.T) {
	log.Init(true)
	m := NewManager()

	p := &fakeProvider{name: "a"}
	require.NoError(t, m.RegisterProvider(p))
	require.NoError(t, m.EnableProvider("a"))

	l := &recordingListener{}
	m.Subscribe(AllProviders, l)

	require.NoError(t, m.Shutdown())
	assert.False(t, p.IsEnabled())
	assert.Equal(t, 1, l.closed)

	// Listeners are gone after shutdown
	require.NoError(t, m.ReportLocationChanged(Location{Provider: "a"}))
	assert.Equal(t, 0, l.Count())
}

func TestDescribeWithoutCapabilities(t *testing.T) {
	p := &fakeProvider{name: "plain"}
	p.Enable()

	d := Describe(p)
	assert.Equal(t, "plain", d.Name)
	assert.Equal(t, AccuracyFine, d.Accuracy)
	assert.Equal(t, PowerHigh, d.PowerRequirement)
	assert.True(t, d.Enabled)
	assert.False(t, d.SupportsAltitude)
}
