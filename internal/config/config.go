package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const (
	ProductName = "locationsim"

	ConfigFolder      = "/etc/" + ProductName + "/"
	ConfigFile        = "config.toml"
	DefaultConfigPath = ConfigFolder + ConfigFile

	DefaultDebugModeValue = false
)

type CLIFlags struct {
	ConfigPath string
	Debug      bool
}

type MainConfig struct {
	Client   ClientConfig   `toml:"client"`
	Provider ProviderConfig `toml:"provider"`
	Manager  DeliveryConfig `toml:"manager"`
	Sinks    SinksConfig    `toml:"sinks"`
}

type ConfigManager interface {
	lock()
	unlock()
	Verify() error
}

type ConfigManagerKey string

const (
	CMClient   ConfigManagerKey = "client"
	CMProvider ConfigManagerKey = "provider"
	CMManager  ConfigManagerKey = "manager"
	CMSinks    ConfigManagerKey = "sinks"
)

type ConfigManagerStore map[ConfigManagerKey]ConfigManager

type Manager struct {
	mu sync.RWMutex

	// The actual config, never share this with other code
	config *MainConfig

	// The config manager store (pointers)
	store ConfigManagerStore

	// The config path
	path string
}

func get[T ConfigManager](m *Manager, key ConfigManagerKey) T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cm, ok := m.store[key].(T)
	if !ok {
		log.Panic("implementation mistake, config section not found", zap.String("section", string(key)))
	}
	return cm
}

func (m *Manager) Client() *ClientConfigManager {
	return get[*ClientConfigManager](m, CMClient)
}

func (m *Manager) Provider() *ProviderConfigManager {
	return get[*ProviderConfigManager](m, CMProvider)
}

func (m *Manager) Delivery() *DeliveryConfigManager {
	return get[*DeliveryConfigManager](m, CMManager)
}

func (m *Manager) Sinks() *SinksConfigManager {
	return get[*SinksConfigManager](m, CMSinks)
}

// Path returns the path the config was loaded from and is saved to
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Load reads the config at path over the defaults, a missing file is only an
// error if acceptEmptyConfig is false, a malformed one always is
func (m *Manager) Load(path string, acceptEmptyConfig bool) error {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, m.config); err != nil {
			log.Error("failed to unmarshal config file", zap.String("path", path), zap.Error(err))
			return err
		}
	case errors.Is(err, fs.ErrNotExist) && acceptEmptyConfig:
		log.Info("no config file found, using defaults", zap.String("path", path))
	default:
		return err
	}

	m.mu.Lock()
	m.path = path
	m.mu.Unlock()

	return m.init()
}

// init builds the section managers and verifies every section
func (m *Manager) init() error {
	m.mu.Lock()
	// Each config section manager gets his own locking primitive
	m.store = ConfigManagerStore{
		CMClient:   NewClientConfigManager(&m.config.Client, m),
		CMProvider: NewProviderConfigManager(&m.config.Provider, m),
		CMManager:  NewDeliveryConfigManager(&m.config.Manager, m),
		CMSinks:    NewSinksConfigManager(&m.config.Sinks, m),
	}
	m.mu.Unlock()

	// Verify all configs contain the mandatory values
	for key, value := range m.store {
		if err := value.Verify(); err != nil {
			log.Error("invalid config section", zap.String("section", string(key)), zap.Error(err))
			return err
		}
	}

	log.Debug("active config", zap.Any("config", m.config), zap.String("path", m.path))
	return nil
}

// Save locks all configs and writes it to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Lock all config managers
	for _, value := range m.store {
		value.lock()
	}

	// Unlock the config managers when we are done
	defer func() {
		for _, value := range m.store {
			value.unlock()
		}
	}()

	// Marshal the config, does not use getters, so no locking => safe
	configData, err := toml.Marshal(m.config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}

	if err := os.WriteFile(m.path, configData, 0644); err != nil {
		log.Error("Failed to write config file", zap.Error(err))
		return err
	}

	return nil
}

// New returns a config populated with the defaults, every sink but the log
// sink is disabled
func New() *MainConfig {
	return &MainConfig{
		Provider: ProviderConfig{
			Name:     DefaultProviderName,
			Interval: TOMLDuration(DefaultInterval),
		},
		Manager: DeliveryConfig{
			DeliveryTimeout: TOMLDuration(DefaultDeliveryTimeout),
		},
		Sinks: SinksConfig{
			Log: LogSinkConfig{Enabled: true},
			MQTT: MQTTSinkConfig{
				Broker:   "tcp://localhost:1883",
				ClientID: ProductName,
				Topic:    ProductName + "/{provider}",
				Retained: true,
			},
			Kafka: KafkaSinkConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "location.samples",
			},
			WebSocket: WebSocketSinkConfig{
				Listen: ":8089",
				Path:   "/ws",
			},
			NMEA: NMEASinkConfig{
				Port:     "/dev/ttyGS0",
				BaudRate: 9600,
			},
			DBus: DBusSinkConfig{
				Bus:    "system",
				Device: ProductName,
			},
			REST: RESTSinkConfig{
				Url:     "https://localhost/api/",
				Retries: 3,
			},
		},
	}
}

func NewManager() *Manager {
	return &Manager{
		store:  make(ConfigManagerStore),
		config: New(),
	}
}

// NewManagerFrom wraps an already populated config, used by tools that write configs
func NewManagerFrom(conf *MainConfig, path string) (*Manager, error) {
	m := &Manager{
		store:  make(ConfigManagerStore),
		config: conf,
		path:   path,
	}
	return m, m.init()
}

func ParseCLIFlags(args []string) (CLIFlags, error) {
	flags := CLIFlags{}

	set := flag.NewFlagSet(ProductName, flag.ContinueOnError)
	set.StringVar(&flags.ConfigPath, "config", DefaultConfigPath, "relative or absolute path to the config file")
	set.BoolVar(&flags.Debug, "debug", DefaultDebugModeValue, "true if the debug logging should be enabled")

	return flags, set.Parse(args)
}

type TOMLDuration time.Duration

func (d *TOMLDuration) UnmarshalText(b []byte) error {
	x, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = TOMLDuration(x)
	return nil
}

func (c TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(c).String()), nil
}

func (c TOMLDuration) Value() time.Duration {
	return time.Duration(c)
}
