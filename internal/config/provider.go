package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultProviderName    = "test"
	DefaultInterval        = time.Second
	DefaultDeliveryTimeout = 2 * time.Second

	// MinInterval keeps a misconfigured provider from spinning
	MinInterval = 10 * time.Millisecond
)

type ProviderConfig struct {
	Name     string       `toml:"name" comment:"name the provider registers and reports under"`
	Interval TOMLDuration `toml:"interval" comment:"time between two samples"`
}

type ProviderConfigManager struct {
	BaseConfigManager[ProviderConfig]
}

// Verify verifies the "hard" conditions that the rest of the code relies on
func (p *ProviderConfigManager) Verify() error {
	if p.conf.Name == "" {
		return errors.New("provider name must not be empty")
	}

	if p.conf.Interval.Value() < MinInterval {
		return fmt.Errorf("provider interval %s is below the minimum of %s", p.conf.Interval.Value(), MinInterval)
	}

	return nil
}

func NewProviderConfigManager(config *ProviderConfig, mgr *Manager) *ProviderConfigManager {
	j := ProviderConfigManager{}
	j.conf = config
	j.mgr = mgr

	return &j
}

type DeliveryConfig struct {
	DeliveryTimeout TOMLDuration `toml:"delivery_timeout" comment:"upper bound for a single sink to accept a sample"`
}

type DeliveryConfigManager struct {
	BaseConfigManager[DeliveryConfig]
}

func (d *DeliveryConfigManager) Verify() error {
	if d.conf.DeliveryTimeout.Value() <= 0 {
		return errors.New("delivery timeout must be positive")
	}
	return nil
}

func NewDeliveryConfigManager(config *DeliveryConfig, mgr *Manager) *DeliveryConfigManager {
	j := DeliveryConfigManager{}
	j.conf = config
	j.mgr = mgr

	return &j
}
