// Package dbussink broadcasts samples as gpsd compatible org.gpsd.fix signals
package dbussink

import (
	"context"
	"time"

	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/LeoCommon/locationsim/pkg/systemd/dbuscon"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	SignalPath dbus.ObjectPath = "/org/gpsd"
	SignalName                 = "org.gpsd.fix"

	// Mode3D is gpsd's fix mode for a 3D fix
	Mode3D int32 = 3

	DefaultDevice = "locationsim"
)

type Config struct {
	Bus    string
	Device string
}

// emitter is the part of dbus.Conn the sink needs
type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

type Sink struct {
	client *dbuscon.Client
	conn   emitter
	device string
	now    func() time.Time
}

// Connect opens the configured bus and returns a sink emitting on it
func Connect(conf Config) (*Sink, error) {
	bus, err := dbuscon.ParseBus(conf.Bus)
	if err != nil {
		return nil, err
	}

	client := dbuscon.NewDbusClient(bus)
	if err := client.Connect(); err != nil {
		return nil, err
	}

	conn, ok := client.Connected()
	if !ok {
		return nil, &dbuscon.NotConnectedError{}
	}

	s := newSink(conn, conf.Device)
	s.client = client

	log.Info("dbus sink connected", zap.String("bus", string(bus)), zap.String("device", s.device))
	return s, nil
}

func newSink(conn emitter, device string) *Sink {
	if device == "" {
		device = DefaultDevice
	}
	return &Sink{conn: conn, device: device, now: time.Now}
}

// Body returns the signal body of loc stamped with now in gpsd order: time,
// mode, ept, lat, lon, eph, altMSL, epv, course, epd, speed, eps, climb, epc, device
func Body(loc location.Location, device string, now time.Time) []interface{} {
	return FixFromLocation(loc, device, now).Body()
}

func (s *Sink) OnLocationChanged(_ context.Context, loc location.Location) error {
	if s.conn == nil {
		return &dbuscon.NotConnectedError{}
	}

	return s.conn.Emit(SignalPath, SignalName, Body(loc, s.device, s.now())...)
}

func (s *Sink) Close() error {
	s.conn = nil
	if s.client == nil {
		return nil
	}
	return s.client.Shutdown()
}
