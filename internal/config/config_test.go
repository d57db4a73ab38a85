package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/safetour/routeguard/internal/spatial"
	"github.com/safetour/routeguard/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "OFF_ROUTE_THRESHOLD_METERS", "EMPTY_ROUTE_POLICY", "HISTORY_RETENTION", "HISTORY_MAX_SAMPLES", "JWT_SECRET", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Port)
	assert.Empty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, tracking.DefaultConfig(), cfg.Engine())
	assert.Equal(t, 1000, cfg.AlertLogMax)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("OFF_ROUTE_THRESHOLD_METERS", "0.5")
	t.Setenv("EMPTY_ROUTE_POLICY", "off-route")
	t.Setenv("ALERT_ON_EVERY_OFF_ROUTE_SAMPLE", "true")
	t.Setenv("HISTORY_RETENTION", "1h")
	t.Setenv("HISTORY_MAX_SAMPLES", "250")
	t.Setenv("SWEEP_INTERVAL", "30s")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":9000", cfg.Port)

	ec := cfg.Engine()
	assert.Equal(t, 0.5, ec.OffRouteThresholdMeters)
	assert.Equal(t, tracking.EmptyRouteOffRoute, ec.EmptyRoutePolicy)
	assert.True(t, ec.AlertOnEveryOffRouteSample)
	assert.Equal(t, time.Hour, ec.HistoryRetention)
	assert.Equal(t, 250, ec.HistoryMaxSamples)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("HISTORY_MAX_SAMPLES", "lots")
	t.Setenv("HISTORY_RETENTION", "a day")
	t.Setenv("DEBUG_ENDPOINTS", "maybe")

	cfg := Load()
	assert.Equal(t, 100, cfg.HistoryMaxSamples)
	assert.Equal(t, 24*time.Hour, cfg.HistoryRetention)
	assert.False(t, cfg.DebugEndpoints)
}

func TestValidateRejects(t *testing.T) {
	t.Setenv("EMPTY_ROUTE_POLICY", "")

	cfg := Load()
	cfg.EmptyRoutePolicy = "sometimes"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.OffRouteThresholdMeters = 0
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.HistoryMaxSamples = -1
	assert.Error(t, cfg.Validate())
}

func writeZones(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zones.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadZones(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		zones, err := LoadZones("")
		require.NoError(t, err)
		assert.Equal(t, DefaultZones(), zones)
	})

	t.Run("valid file", func(t *testing.T) {
		path := writeZones(t, `
zones:
  - name: Z
    center: {lat: 28.70, lng: 77.10}
    radiusMeters: 5000
  - name: Hazard
    kind: danger
    center: {lat: 28.80, lng: 77.10}
    radiusMeters: 250
`)
		zones, err := LoadZones(path)
		require.NoError(t, err)
		require.Len(t, zones, 2)
		assert.Equal(t, "Z", zones[0].Name)
		assert.Equal(t, spatial.ZoneSafe, zones[0].Kind)
		assert.Equal(t, spatial.Point{Lat: 28.70, Lng: 77.10}, zones[0].Center)
		assert.Equal(t, spatial.ZoneDanger, zones[1].Kind)
		assert.Equal(t, 250.0, zones[1].RadiusMeters)
	})

	t.Run("repository zone file", func(t *testing.T) {
		zones, err := LoadZones(filepath.Join("..", "..", "config", "zones.yml"))
		require.NoError(t, err)
		assert.NotEmpty(t, zones)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadZones(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadZones(writeZones(t, "zones: [[["))
		assert.Error(t, err)
	})

	t.Run("non-positive radius", func(t *testing.T) {
		_, err := LoadZones(writeZones(t, "zones:\n  - name: Z\n    center: {lat: 1, lng: 1}\n    radiusMeters: 0\n"))
		assert.Error(t, err)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, err := LoadZones(writeZones(t, "zones:\n  - name: Z\n    center: {lat: 95, lng: 1}\n    radiusMeters: 10\n"))
		assert.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := LoadZones(writeZones(t, "zones:\n  - name: Z\n    kind: spooky\n    center: {lat: 1, lng: 1}\n    radiusMeters: 10\n"))
		assert.Error(t, err)
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := LoadZones(writeZones(t, `
zones:
  - name: Z
    center: {lat: 1, lng: 1}
    radiusMeters: 10
  - name: Z
    center: {lat: 2, lng: 2}
    radiusMeters: 10
`))
		assert.ErrorContains(t, err, "duplicate")
	})
}
