package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "vbind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vbind",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	bindings       *prometheus.CounterVec
	bindingUpdates *prometheus.CounterVec
	events         *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	sessions       prometheus.Gauge
}

// NewPrometheus creates and registers the collectors. Registering twice on
// the same registry panics, as with promauto.
func NewPrometheus(opts ...Option) *Prometheus {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Prometheus{
		bindings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bindings_total",
			Help:        "Total number of bindings created by the template compiler",
			ConstLabels: config.ConstLabels,
		}, []string{"directive"}),

		bindingUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "binding_updates_total",
			Help:        "Total number of binding callbacks that wrote the DOM",
			ConstLabels: config.ConstLabels,
		}, []string{"directive"}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of DOM events handled",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),

		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sessions_active",
			Help:        "Number of connected live host sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// BindingCreated implements Recorder.
func (p *Prometheus) BindingCreated(directive string) {
	p.bindings.WithLabelValues(directive).Inc()
}

// BindingUpdated implements Recorder.
func (p *Prometheus) BindingUpdated(directive string) {
	p.bindingUpdates.WithLabelValues(directive).Inc()
}

// EventHandled implements Recorder.
func (p *Prometheus) EventHandled(event string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.events.WithLabelValues(event, status).Inc()
	p.eventDuration.WithLabelValues(event).Observe(duration.Seconds())
}

// SessionOpened implements Recorder.
func (p *Prometheus) SessionOpened() {
	p.sessions.Inc()
}

// SessionClosed implements Recorder.
func (p *Prometheus) SessionClosed() {
	p.sessions.Dec()
}
