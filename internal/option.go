package internal

import "github.com/evz/family-wiki-sub001/internal/metrics"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	metrics *metrics.Metrics
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMetrics sets the metrics instance served at /metrics. Run creates one
// when none is given.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *application) {
		a.metrics = m
	}
}
