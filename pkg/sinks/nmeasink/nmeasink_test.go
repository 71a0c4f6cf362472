package nmeasink

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/adrianmo/go-nmea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 7, 12, 34, 56, 0, time.UTC)

func TestRMCParsesBack(t *testing.T) {
	loc := location.Location{Provider: "test", Latitude: 0, Longitude: 42.5, Bearing: 42, Speed: 10, Altitude: 10000}

	s, err := nmea.Parse(RMC(loc, fixedNow))
	require.NoError(t, err)
	require.Equal(t, nmea.TypeRMC, s.DataType())

	rmc := s.(nmea.RMC)
	assert.Equal(t, "A", rmc.Validity)
	assert.InDelta(t, 0.0, rmc.Latitude, 1e-6)
	assert.InDelta(t, 42.5, rmc.Longitude, 1e-4)
	assert.InDelta(t, 42.0, rmc.Course, 0.05)
	assert.InDelta(t, 19.4, rmc.Speed, 0.05)
	assert.Equal(t, 12, rmc.Time.Hour)
	assert.Equal(t, 34, rmc.Time.Minute)
	assert.Equal(t, 56, rmc.Time.Second)
	assert.Equal(t, 7, rmc.Date.DD)
	assert.Equal(t, 3, rmc.Date.MM)
	assert.Equal(t, 24, rmc.Date.YY)
}

func TestGGA(t *testing.T) {
	loc := location.Location{Provider: "test", Latitude: -12.25, Longitude: -77.125, Altitude: 10000}

	sentence := GGA(loc, fixedNow)
	require.True(t, strings.HasPrefix(sentence, "$GPGGA,"))

	body, sum, ok := strings.Cut(strings.TrimPrefix(sentence, "$"), "*")
	require.True(t, ok)
	assert.Equal(t, nmea.Checksum(body), sum)

	fields := strings.Split(body, ",")
	require.Len(t, fields, 15)
	assert.Equal(t, "123456.00", fields[1])
	assert.Equal(t, "1215.0000", fields[2])
	assert.Equal(t, "S", fields[3])
	assert.Equal(t, "07707.5000", fields[4])
	assert.Equal(t, "W", fields[5])
	assert.Equal(t, FixQualitySimulation, fields[6])
	assert.Equal(t, "00", fields[7])
	assert.Equal(t, "10000.0", fields[9])
	assert.Equal(t, "M", fields[10])
}

func TestLongitudeWraps(t *testing.T) {
	tests := []struct {
		in         float64
		want       string
		hemisphere string
	}{
		{in: 1, want: "00100.0000", hemisphere: "E"},
		{in: 179.5, want: "17930.0000", hemisphere: "E"},
		{in: 181, want: "17900.0000", hemisphere: "W"},
		{in: 360, want: "00000.0000", hemisphere: "E"},
		{in: 499999, want: "04100.0000", hemisphere: "W"},
		{in: -190, want: "17000.0000", hemisphere: "E"},
	}

	for _, tt := range tests {
		got, hemisphere := Longitude(tt.in)
		assert.Equal(t, tt.want, got, "lon %v", tt.in)
		assert.Equal(t, tt.hemisphere, hemisphere, "lon %v", tt.in)
	}
}

func TestLatitudeClamps(t *testing.T) {
	got, hemisphere := Latitude(123)
	assert.Equal(t, "9000.0000", got)
	assert.Equal(t, "N", hemisphere)
}

type closingBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closingBuffer) Close() error {
	b.closed = true
	return nil
}

func TestSinkWritesBothSentences(t *testing.T) {
	buf := &closingBuffer{}
	s := New(buf)
	s.now = func() time.Time { return fixedNow }

	require.NoError(t, s.OnLocationChanged(context.Background(), location.Location{Provider: "test", Longitude: 3, Bearing: 3, Speed: 10, Altitude: 10000}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "$GPRMC,"))
	assert.True(t, strings.HasPrefix(lines[1], "$GPGGA,"))

	require.NoError(t, s.Close())
	assert.True(t, buf.closed)
}
