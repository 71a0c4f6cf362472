package logsink

import (
	"context"
	"testing"

	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogsSamples(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log.SetLogger(zap.New(core))
	defer log.Init(true)

	loc := location.Location{Provider: "test", Longitude: 2, Time: 10000, Status: location.StatusAvailable}

	require.NoError(t, New(false).OnLocationChanged(context.Background(), loc))
	require.NoError(t, New(true).OnLocationChanged(context.Background(), loc))

	entries := logs.FilterMessage("location changed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "test", fields["provider"])
	assert.Equal(t, int64(10000), fields["time"])
	assert.Equal(t, 2.0, fields["lon"])
	assert.Equal(t, "available", fields["status"])

	assert.NoError(t, New(false).Close())
}
