package engine

import (
	"go.uber.org/zap"

	"github.com/spektr-org/ladder/schema"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// DefaultLimit is the top-N size when neither the query nor the options set one.
const DefaultLimit = 10

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	DefaultMetric string // metric used when Query.Metric is empty
	DefaultLimit  int    // top-N size when Query.Limit is 0
	Decimals      int    // digits after the point in TableData cells
	Logger        *zap.Logger
}

// WithDefaultMetric sets the metric used when Query.Metric is empty.
func WithDefaultMetric(metric string) Option {
	return func(c *config) {
		c.DefaultMetric = metric
	}
}

// WithDefaultLimit sets the top-N size used when Query.Limit is 0.
func WithDefaultLimit(n int) Option {
	return func(c *config) {
		c.DefaultLimit = n
	}
}

// WithDecimals sets how many decimals numeric table cells carry.
func WithDecimals(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.Decimals = n
		}
	}
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		DefaultMetric: schema.ColLifeLadder,
		DefaultLimit:  DefaultLimit,
		Decimals:      3,
		Logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
