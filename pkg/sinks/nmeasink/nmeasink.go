// Package nmeasink emits samples as NMEA 0183 sentences, usually to a serial
// port so that GPS consumers can be fed from the simulator
package nmeasink

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/adrianmo/go-nmea"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	Talker = "GP"

	// KnotsPerMeterPerSecond converts m/s to knots
	KnotsPerMeterPerSecond = 1.943844

	// FixQualitySimulation is the GGA fix quality of simulated positions
	FixQualitySimulation = "8"

	DefaultBaudRate = 9600
)

type Config struct {
	Port     string
	BaudRate int
}

type Sink struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// Open opens the serial port and returns a sink writing to it
func Open(conf Config) (*Sink, error) {
	baud := conf.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(conf.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Port, err)
	}

	log.Info("nmea sink opened", zap.String("port", conf.Port), zap.Int("baud", baud))
	return New(port), nil
}

// New returns a sink writing to w, w is closed on Close if it is an io.Closer
func New(w io.Writer) *Sink {
	return &Sink{w: w, now: time.Now}
}

func (s *Sink) OnLocationChanged(_ context.Context, loc location.Location) error {
	var b strings.Builder
	for _, sentence := range Sentences(loc, s.now()) {
		b.WriteString(sentence)
		b.WriteString("\r\n")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := io.WriteString(s.w, b.String())
	return err
}

func (s *Sink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Sentences renders loc as a RMC and a GGA sentence stamped with the UTC time of now
func Sentences(loc location.Location, now time.Time) []string {
	return []string{RMC(loc, now), GGA(loc, now)}
}

func RMC(loc location.Location, now time.Time) string {
	now = now.UTC()
	lat, ns := Latitude(loc.Latitude)
	lon, ew := Longitude(loc.Longitude)

	return Sentence(fmt.Sprintf("%sRMC,%s,A,%s,%s,%s,%s,%.1f,%.1f,%s,,",
		Talker,
		now.Format("150405.00"),
		lat, ns,
		lon, ew,
		float64(loc.Speed)*KnotsPerMeterPerSecond,
		location.WrapBearing(float64(loc.Bearing)),
		now.Format("020106"),
	))
}

func GGA(loc location.Location, now time.Time) string {
	now = now.UTC()
	lat, ns := Latitude(loc.Latitude)
	lon, ew := Longitude(loc.Longitude)

	return Sentence(fmt.Sprintf("%sGGA,%s,%s,%s,%s,%s,%s,00,,%.1f,M,,M,,",
		Talker,
		now.Format("150405.00"),
		lat, ns,
		lon, ew,
		FixQualitySimulation,
		loc.Altitude,
	))
}

// Sentence frames body with the leading $ and the trailing checksum
func Sentence(body string) string {
	return "$" + body + "*" + nmea.Checksum(body)
}

// Latitude formats lat as ddmm.mmmm with its hemisphere, clamped to ±90
func Latitude(lat float64) (string, string) {
	lat = math.Max(-90, math.Min(90, lat))
	hemisphere := "N"
	if lat < 0 {
		hemisphere = "S"
	}
	deg, mins := degreesMinutes(lat)
	return fmt.Sprintf("%02d%07.4f", deg, mins), hemisphere
}

// Longitude formats lon as dddmm.mmmm with its hemisphere after wrapping it into [-180,180)
func Longitude(lon float64) (string, string) {
	lon = location.WrapLongitude(lon)
	hemisphere := "E"
	if lon < 0 {
		hemisphere = "W"
	}
	deg, mins := degreesMinutes(lon)
	return fmt.Sprintf("%03d%07.4f", deg, mins), hemisphere
}

// degreesMinutes splits v into whole degrees and minutes rounded to four decimals
func degreesMinutes(v float64) (int, float64) {
	minutes := math.Round(math.Abs(v)*60*10000) / 10000
	deg := int(minutes / 60)
	return deg, minutes - float64(deg*60)
}
