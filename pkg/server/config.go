package server

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/metrics"
)

// Config configures a Server.
type Config struct {
	// Address is the listen address for Run (default: "localhost:3000").
	Address string

	// Root is the selector of the element each session compiles (default: "#app").
	Root string

	// Methods is the handler table shared by all sessions.
	Methods map[string]vbind.Method

	// MaxNotifyDepth is passed to every VM.
	MaxNotifyDepth int

	// ReadTimeout closes sessions that stay silent for longer (default: 60s).
	// Pong replies to heartbeat pings count as activity.
	ReadTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings (default: 30s,
	// or half of ReadTimeout when that is shorter). It must be shorter than
	// ReadTimeout.
	HeartbeatInterval time.Duration

	// WriteTimeout bounds a single frame write (default: 10s).
	WriteTimeout time.Duration

	// MaxMessageSize is the largest client message accepted (default: 64KiB).
	MaxMessageSize int64

	// EventQueueSize is the per-session buffer of pending client messages
	// (default: 64).
	EventQueueSize int

	// ShutdownTimeout bounds graceful shutdown in Run (default: 5s).
	ShutdownTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics receives binding, event and session activity.
	Metrics metrics.Recorder

	// Gatherer, when set, is served on MetricsPath.
	Gatherer prometheus.Gatherer

	// MetricsPath is where Gatherer is served (default: "/metrics").
	MetricsPath string

	// Tracer starts the vbind.event spans. Defaults to the global provider.
	Tracer trace.Tracer
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Address:           "localhost:3000",
		Root:              "#app",
		ReadTimeout:       60 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxMessageSize:    64 << 10,
		EventQueueSize:    64,
		ShutdownTimeout:   5 * time.Second,
		MetricsPath:       "/metrics",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.Root == "" {
		c.Root = d.Root
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
		if c.ReadTimeout > 0 && c.HeartbeatInterval >= c.ReadTimeout {
			c.HeartbeatInterval = c.ReadTimeout / 2
		}
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.EventQueueSize == 0 {
		c.EventQueueSize = d.EventQueueSize
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	c.Metrics = metrics.OrNop(c.Metrics)
	if c.Tracer == nil {
		c.Tracer = otel.Tracer(tracerName)
	}
	return c
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 || c.HeartbeatInterval < 0 {
		return errors.New("E030").WithDetail("timeouts must not be negative")
	}
	if c.ReadTimeout > 0 && c.HeartbeatInterval >= c.ReadTimeout {
		return errors.New("E030").WithDetail("HeartbeatInterval must be shorter than ReadTimeout")
	}
	if c.MaxMessageSize < 0 {
		return errors.New("E030").WithDetail("MaxMessageSize must not be negative")
	}
	if c.EventQueueSize < 0 {
		return errors.New("E030").WithDetail("EventQueueSize must not be negative")
	}
	return nil
}
