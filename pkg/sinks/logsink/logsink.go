// Package logsink writes every sample to the structured log
package logsink

import (
	"context"

	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	"go.uber.org/zap"
)

type Sink struct {
	debug bool
}

// New returns a sink logging at info level, or at debug level if debug is set
func New(debug bool) *Sink {
	return &Sink{debug: debug}
}

func Fields(loc location.Location) []zap.Field {
	return []zap.Field{
		zap.String("provider", loc.Provider),
		zap.Int64("time", loc.Time),
		zap.Float64("lat", loc.Latitude),
		zap.Float64("lon", loc.Longitude),
		zap.Float64("alt", loc.Altitude),
		zap.Float32("speed", loc.Speed),
		zap.Float32("bearing", loc.Bearing),
		zap.Stringer("status", loc.Status),
		zap.Any("extras", loc.Extras),
	}
}

func (s *Sink) OnLocationChanged(_ context.Context, loc location.Location) error {
	if s.debug {
		log.Debug("location changed", Fields(loc)...)
	} else {
		log.Info("location changed", Fields(loc)...)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}
