package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

type LogSinkConfig struct {
	Enabled bool `toml:"enabled"`
}

type MQTTSinkConfig struct {
	Enabled  bool   `toml:"enabled"`
	Broker   string `toml:"broker" comment:"broker url, e.g. tcp://localhost:1883"`
	ClientID string `toml:"client_id"`
	Topic    string `toml:"topic" comment:"{provider} is replaced by the provider name"`
	QoS      byte   `toml:"qos"`
	Retained bool   `toml:"retained"`
}

type KafkaSinkConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type WebSocketSinkConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
	Path    string `toml:"path"`
}

type NMEASinkConfig struct {
	Enabled  bool   `toml:"enabled"`
	Port     string `toml:"port" comment:"serial device the sentences are written to"`
	BaudRate int    `toml:"baud_rate"`
}

type DBusSinkConfig struct {
	Enabled bool   `toml:"enabled"`
	Bus     string `toml:"bus" comment:"system or session"`
	Device  string `toml:"device" comment:"device name reported in the org.gpsd.fix signal"`
}

type AuthBasicSettings struct {
	Username string `toml:"username"`
	Password string `toml:"password" comment:"required for basic authentication"`
}

func (a *AuthBasicSettings) Credentials() (string, string) {
	return a.Username, a.Password
}

type RESTSinkConfig struct {
	Enabled       bool               `toml:"enabled"`
	Url           string             `toml:"url"`
	AllowInsecure bool               `toml:"allow_insecure"`
	Retries       int                `toml:"retries" comment:"retries after transport errors, 0 disables retrying"`
	Basic         *AuthBasicSettings `toml:"basic,omitempty"`
}

type SinksConfig struct {
	Log       LogSinkConfig       `toml:"log"`
	MQTT      MQTTSinkConfig      `toml:"mqtt"`
	Kafka     KafkaSinkConfig     `toml:"kafka"`
	WebSocket WebSocketSinkConfig `toml:"websocket"`
	NMEA      NMEASinkConfig      `toml:"nmea"`
	DBus      DBusSinkConfig      `toml:"dbus"`
	REST      RESTSinkConfig      `toml:"rest"`
}

type SinksConfigManager struct {
	BaseConfigManager[SinksConfig]
}

// Verify verifies the "hard" conditions of every enabled sink
func (s *SinksConfigManager) Verify() error {
	c := s.conf

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" || c.MQTT.Topic == "" {
			return errors.New("mqtt sink needs a broker and a topic")
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt qos %d is not one of 0, 1, 2", c.MQTT.QoS)
		}
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("kafka sink needs at least one broker and a topic")
	}

	if c.WebSocket.Enabled {
		if _, _, err := net.SplitHostPort(c.WebSocket.Listen); err != nil {
			return fmt.Errorf("websocket listen address: %w", err)
		}
		if !strings.HasPrefix(c.WebSocket.Path, "/") {
			return fmt.Errorf("websocket path %q must start with /", c.WebSocket.Path)
		}
	}

	if c.NMEA.Enabled && c.NMEA.Port == "" {
		return errors.New("nmea sink needs a serial port")
	}

	if c.DBus.Enabled && c.DBus.Bus != "system" && c.DBus.Bus != "session" {
		return fmt.Errorf("dbus bus %q is neither system nor session", c.DBus.Bus)
	}

	if c.REST.Enabled {
		u, err := url.Parse(c.REST.Url)
		if err != nil {
			return err
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("rest url %q is not absolute", c.REST.Url)
		}

		if c.REST.Retries < 0 {
			return fmt.Errorf("rest retries %d must not be negative", c.REST.Retries)
		}

		// Verify that auth basic contains a password
		if c.REST.Basic != nil && c.REST.Basic.Username != "" && c.REST.Basic.Password == "" {
			return errors.New("empty password for auth basic")
		}
	}

	return nil
}

func NewSinksConfigManager(config *SinksConfig, mgr *Manager) *SinksConfigManager {
	j := SinksConfigManager{}
	j.conf = config
	j.mgr = mgr

	return &j
}
