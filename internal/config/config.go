package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/tracking"
)

// Config 应用配置
type Config struct {
	Port      string `validate:"required"`
	DBPath    string // alert archive; empty disables it
	JWTSecret string // empty disables bearer auth
	ZonesFile string

	OffRouteThresholdMeters    float64 `validate:"gt=0"`
	EmptyRoutePolicy           string  `validate:"oneof=on-route off-route"`
	AlertOnEveryOffRouteSample bool
	HistoryRetention           time.Duration `validate:"gt=0"`
	HistoryMaxSamples          int           `validate:"gt=0"`
	AlertLogMax                int           `validate:"gt=0"`
	SweepInterval              time.Duration `validate:"gt=0"`

	RateLimit  int           `validate:"gte=0"` // requests per window per IP on POST /location, 0 disables
	RateWindow time.Duration `validate:"gt=0"`

	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
	RedisChannel  string

	RealtimeBuffer int `validate:"gt=0"` // per-connection websocket send buffer
	DebugEndpoints bool
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:      getString("PORT", ":8080"),
		DBPath:    getString("DB_PATH", "./data/routeguard.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		ZonesFile: os.Getenv("ZONES_FILE"),

		OffRouteThresholdMeters:    getFloat("OFF_ROUTE_THRESHOLD_METERS", 100),
		EmptyRoutePolicy:           getString("EMPTY_ROUTE_POLICY", tracking.EmptyRouteOnRoute),
		AlertOnEveryOffRouteSample: getBool("ALERT_ON_EVERY_OFF_ROUTE_SAMPLE", false),
		HistoryRetention:           getDuration("HISTORY_RETENTION", 24*time.Hour),
		HistoryMaxSamples:          getInt("HISTORY_MAX_SAMPLES", 100),
		AlertLogMax:                getInt("ALERT_LOG_MAX", 1000),
		SweepInterval:              getDuration("SWEEP_INTERVAL", time.Minute),

		RateLimit:  getInt("RATE_LIMIT", 600),
		RateWindow: getDuration("RATE_WINDOW", time.Minute),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASS"),
		RedisDB:       getInt("REDIS_DB", 0),
		RedisChannel:  getString("REDIS_CHANNEL", "routeguard:alerts"),

		RealtimeBuffer: getInt("REALTIME_BUFFER", 64),
		DebugEndpoints: getBool("DEBUG_ENDPOINTS", false),
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Engine returns the tracking engine configuration
func (c *Config) Engine() tracking.Config {
	return tracking.Config{
		OffRouteThresholdMeters:    c.OffRouteThresholdMeters,
		EmptyRoutePolicy:           c.EmptyRoutePolicy,
		AlertOnEveryOffRouteSample: c.AlertOnEveryOffRouteSample,
		HistoryRetention:           c.HistoryRetention,
		HistoryMaxSamples:          c.HistoryMaxSamples,
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Unparseable values fall back to the default and are logged.

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.L().Warn("config_parse_error", "key", key, "value", v, "err", err)
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.L().Warn("config_parse_error", "key", key, "value", v, "err", err)
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		logger.L().Warn("config_parse_error", "key", key, "value", v, "err", err)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.L().Warn("config_parse_error", "key", key, "value", v, "err", err)
		return def
	}
	return d
}
