package location

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// AllProviders subscribes a listener to every provider
	AllProviders = ""

	DefaultDeliveryTimeout = 2 * time.Second
)

var (
	ErrProviderExists   = errors.New("a provider with that name is already registered")
	ErrProviderNotFound = errors.New("the specified provider was not found")
)

type subscription struct {
	id       string
	provider string
	listener Listener
}

// Manager is the registry providers report to, it fans samples out to listeners
type Manager struct {
	lock sync.RWMutex

	providers     map[string]Provider
	subscriptions []*subscription
	lastKnown     map[string]Location

	deliveryTimeout time.Duration
}

type ManagerOption func(*Manager)

// WithDeliveryTimeout bounds each single listener call
func WithDeliveryTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.deliveryTimeout = d
		}
	}
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		providers:       make(map[string]Provider),
		lastKnown:       make(map[string]Location),
		deliveryTimeout: DefaultDeliveryTimeout,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Manager) RegisterProvider(p Provider) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	name := p.Name()
	if _, ok := m.providers[name]; ok {
		return ErrProviderExists
	}

	m.providers[name] = p
	log.Info("location provider registered", zap.Any("provider", Describe(p)))
	return nil
}

func (m *Manager) Provider(name string) (Provider, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	p, ok := m.providers[name]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return p, nil
}

// Providers returns the sorted names of all registered providers
func (m *Manager) Providers() []string {
	m.lock.RLock()
	defer m.lock.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnableProvider enables a provider, the manager lock is not held during the call
func (m *Manager) EnableProvider(name string) error {
	p, err := m.Provider(name)
	if err != nil {
		return err
	}

	p.Enable()
	log.Info("location provider enabled", zap.String("provider", name))
	return nil
}

// DisableProvider disables a provider and waits until it stopped reporting
func (m *Manager) DisableProvider(name string) error {
	p, err := m.Provider(name)
	if err != nil {
		return err
	}

	p.Disable()
	log.Info("location provider disabled", zap.String("provider", name))
	return nil
}

// Subscribe registers a listener for provider, use AllProviders for every provider.
// The returned id is used to unsubscribe.
func (m *Manager) Subscribe(provider string, l Listener) string {
	m.lock.Lock()
	defer m.lock.Unlock()

	s := &subscription{
		id:       uuid.NewString(),
		provider: provider,
		listener: l,
	}
	m.subscriptions = append(m.subscriptions, s)

	log.Debug("location listener subscribed", zap.String("id", s.id), zap.String("provider", provider))
	return s.id
}

// Unsubscribe removes a subscription, the listener is not closed
func (m *Manager) Unsubscribe(id string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	for i, s := range m.subscriptions {
		if s.id == id {
			m.subscriptions = append(m.subscriptions[:i], m.subscriptions[i+1:]...)
			return true
		}
	}

	return false
}

// ReportLocationChanged records loc as last known location of its provider and
// delivers it to every matching listener. Listener errors are combined, one
// failing listener does not stop delivery to the others.
func (m *Manager) ReportLocationChanged(loc Location) error {
	stored := loc
	stored.Extras = loc.Extras.Clone()

	m.lock.Lock()
	m.lastKnown[loc.Provider] = stored

	// Deliver on a snapshot so listeners can (un)subscribe from their callback
	targets := make([]*subscription, 0, len(m.subscriptions))
	for _, s := range m.subscriptions {
		if s.provider == AllProviders || s.provider == loc.Provider {
			targets = append(targets, s)
		}
	}
	m.lock.Unlock()

	var err error
	for _, s := range targets {
		err = multierr.Append(err, m.deliver(s, loc))
	}

	return err
}

func (m *Manager) deliver(s *subscription, loc Location) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.deliveryTimeout)
	defer cancel()

	// Every listener gets its own extras
	loc.Extras = loc.Extras.Clone()

	if err := s.listener.OnLocationChanged(ctx, loc); err != nil {
		log.Debug("location listener failed", zap.String("id", s.id), zap.Error(err))
		return err
	}

	return nil
}

func (m *Manager) LastKnownLocation(provider string) (Location, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	loc, ok := m.lastKnown[provider]
	loc.Extras = loc.Extras.Clone()
	return loc, ok
}

// Shutdown disables every provider and closes every subscribed listener
func (m *Manager) Shutdown() error {
	m.lock.RLock()
	providers := make([]Provider, 0, len(m.providers))
	for _, p := range m.providers {
		providers = append(providers, p)
	}
	m.lock.RUnlock()

	// Providers may still report while being disabled, so dont hold the lock
	for _, p := range providers {
		p.Disable()
	}

	m.lock.Lock()
	subscriptions := m.subscriptions
	m.subscriptions = nil
	m.lock.Unlock()

	var err error
	for _, s := range subscriptions {
		err = multierr.Append(err, s.listener.Close())
	}

	log.Info("location manager shut down", zap.Int("providers", len(providers)), zap.Int("listeners", len(subscriptions)))
	return err
}
