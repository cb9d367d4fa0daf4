// Package metrics exports native-API session counters and dispatched
// traffic to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"esphome-go/internal/device"
)

// Config configures the exported metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "esphome").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the exported metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
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
		Namespace: "esphome",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// StatsSource is what the session collector reads on every scrape.
type StatsSource interface {
	Address() string
	Stats() device.Stats
}

// Metrics holds the Prometheus metrics for one client process. It is a
// device.Observer; attach it to the session's EventBus with OnAll or set
// it as the observer directly.
type Metrics struct {
	units         *prometheus.CounterVec
	entityUpdates *prometheus.CounterVec
	logLines      *prometheus.CounterVec
	disconnects   *prometheus.CounterVec
	connected     prometheus.Gauge
}

// New registers the metrics and a scrape-time collector over each source.
func New(sources []StatsSource, opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	m := &Metrics{
		units: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "units_total",
			Help:        "Inbound items delivered to observers, by unit type",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type"}),

		entityUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "entity_updates_total",
			Help:        "Entity state updates applied, by entity kind",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind"}),

		logLines: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "log_lines_total",
			Help:        "Device log lines received, by level",
			ConstLabels: cfg.ConstLabels,
		}, []string{"level"}),

		disconnects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "disconnects_total",
			Help:        "Sessions ended, by reason",
			ConstLabels: cfg.ConstLabels,
		}, []string{"reason"}),

		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "sessions_connected",
			Help:        "Sessions currently ready",
			ConstLabels: cfg.ConstLabels,
		}),
	}

	if len(sources) > 0 {
		cfg.Registry.MustRegister(newSessionCollector(cfg, sources))
	}
	return m
}

func (m *Metrics) OnConnect() {
	m.connected.Inc()
}

func (m *Metrics) OnDisconnect(err error) {
	m.connected.Dec()
	reason := "orderly"
	if err != nil {
		reason = "error"
	}
	m.disconnects.WithLabelValues(reason).Inc()
}

func (m *Metrics) OnMessage(u device.Unit) {
	m.units.WithLabelValues(u.UnitType()).Inc()
	switch u := u.(type) {
	case device.EntityUpdate:
		m.entityUpdates.WithLabelValues(string(u.Entity.Kind())).Inc()
	case device.LogLine:
		m.logLines.WithLabelValues(u.Level.String()).Inc()
	}
}
