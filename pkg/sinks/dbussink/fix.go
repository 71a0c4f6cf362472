package dbussink

import (
	"fmt"
	"math"
	"time"

	"github.com/LeoCommon/locationsim/pkg/location"
)

// FixLength is the number of values in an org.gpsd.fix signal body
const FixLength = 15

// Fix is the content of an org.gpsd.fix signal
type Fix struct {
	Time              float64
	Mode              int32
	TimeUncertainty   float64
	Lat               float64
	Lon               float64
	HorizUncertainty  float64
	AltMSL            float64
	AltUncertainty    float64
	Course            float64
	CourseUncertainty float64
	Speed             float64
	SpeedUncertainty  float64
	Climb             float64
	ClimbUncertainty  float64
	DeviceName        string
}

// FixFromLocation converts a sample stamped with the wall-clock time now.
// Longitude and course are wrapped into their valid ranges, everything the
// sample does not carry is NaN.
func FixFromLocation(loc location.Location, device string, now time.Time) Fix {
	unknown := math.NaN()

	return Fix{
		Time:              float64(now.UnixNano()) / 1e9,
		Mode:              Mode3D,
		TimeUncertainty:   unknown,
		Lat:               loc.Latitude,
		Lon:               location.WrapLongitude(loc.Longitude),
		HorizUncertainty:  unknown,
		AltMSL:            loc.Altitude,
		AltUncertainty:    unknown,
		Course:            location.WrapBearing(float64(loc.Bearing)),
		CourseUncertainty: unknown,
		Speed:             float64(loc.Speed),
		SpeedUncertainty:  unknown,
		Climb:             unknown,
		ClimbUncertainty:  unknown,
		DeviceName:        device,
	}
}

// Body returns the signal body in gpsd order
func (f Fix) Body() []interface{} {
	return []interface{}{
		f.Time,
		f.Mode,
		f.TimeUncertainty,
		f.Lat,
		f.Lon,
		f.HorizUncertainty,
		f.AltMSL,
		f.AltUncertainty,
		f.Course,
		f.CourseUncertainty,
		f.Speed,
		f.SpeedUncertainty,
		f.Climb,
		f.ClimbUncertainty,
		f.DeviceName,
	}
}

// ParseFix decodes a signal body as gpsd sends it
func ParseFix(v []interface{}) (*Fix, error) {
	if v == nil {
		return nil, fmt.Errorf("received fix was nil")
	}

	if len(v) != FixLength {
		return nil, fmt.Errorf("malformed fix received length %d != %d", len(v), FixLength)
	}

	fix := &Fix{}

	mode, ok := v[1].(int32)
	if !ok {
		return nil, fmt.Errorf("mode could not be interpreted as int32")
	}
	fix.Mode = mode

	device, ok := v[14].(string)
	if !ok {
		return nil, fmt.Errorf("device could not be interpreted as string")
	}
	fix.DeviceName = device

	floats := []struct {
		name string
		dst  *float64
		idx  int
	}{
		{"time", &fix.Time, 0},
		{"timeuncertainty", &fix.TimeUncertainty, 2},
		{"lat", &fix.Lat, 3},
		{"lon", &fix.Lon, 4},
		{"horizuncertainty", &fix.HorizUncertainty, 5},
		{"altmsl", &fix.AltMSL, 6},
		{"altuncertainty", &fix.AltUncertainty, 7},
		{"course", &fix.Course, 8},
		{"courseuncertainty", &fix.CourseUncertainty, 9},
		{"speed", &fix.Speed, 10},
		{"speeduncertainty", &fix.SpeedUncertainty, 11},
		{"climb", &fix.Climb, 12},
		{"climbuncertainty", &fix.ClimbUncertainty, 13},
	}

	for _, f := range floats {
		*f.dst, ok = v[f.idx].(float64)
		if !ok {
			return nil, fmt.Errorf("%s could not be interpreted as float64", f.name)
		}
	}

	return fix, nil
}
