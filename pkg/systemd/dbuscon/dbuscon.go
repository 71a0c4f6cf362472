package dbuscon

import (
	"fmt"

	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

type Bus string

const (
	SystemBus  Bus = "system"
	SessionBus Bus = "session"
)

type NotConnectedError struct{}

func (e *NotConnectedError) Error() string {
	return "client is not connected"
}

func (e *NotConnectedError) Is(target error) bool {
	_, ok := target.(*NotConnectedError)
	return ok
}

type Client struct {
	bus     Bus
	conn    *dbus.Conn
	lastErr error
}

func (d *Client) Shutdown() (err error) {
	if d.conn == nil {
		return
	}

	err = d.conn.Close()
	d.conn = nil
	return
}

// Reconnect re-establishes the bus connection if its down
func (d *Client) Reconnect() error {
	if d.conn != nil && d.conn.Connected() {
		return fmt.Errorf("connection is active and working, not reconnecting")
	}

	// Connection seems to be down, close it again
	if d.conn != nil {
		_ = d.conn.Close()
	}

	return d.Connect()
}

// Connected returns whether the bus connection is established or not
func (d *Client) Connected() (*dbus.Conn, bool) {
	return d.conn, d.conn != nil && d.conn.Connected()
}

func (d *Client) Connect() error {
	switch d.bus {
	case SessionBus:
		d.conn, d.lastErr = dbus.ConnectSessionBus()
	default:
		d.conn, d.lastErr = dbus.ConnectSystemBus()
	}

	if d.lastErr != nil {
		log.Error("Failed to connect to bus", zap.String("bus", string(d.bus)), zap.Error(d.lastErr))
	}

	return d.lastErr
}

func (d *Client) GetConnection() *dbus.Conn {
	return d.conn
}

func (d *Client) Bus() Bus {
	return d.bus
}

// ParseBus maps a config value to a bus, empty selects the system bus
func ParseBus(name string) (Bus, error) {
	switch Bus(name) {
	case "", SystemBus:
		return SystemBus, nil
	case SessionBus:
		return SessionBus, nil
	}
	return "", fmt.Errorf("unknown dbus bus %q", name)
}

func NewDbusClient(bus Bus) *Client {
	return &Client{bus: bus}
}
