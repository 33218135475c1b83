package source

import "go.uber.org/zap"

// ============================================================================
// LOADER OPTIONS — Functional options for LoadFrame() / LoadSources()
// ============================================================================

// Default year bounds for panel rows.
const (
	DefaultMinYear = 2005
	DefaultMaxYear = 2021
)

// Option configures loader behavior via functional options pattern.
type Option func(*config)

type config struct {
	delimiter     rune   // 0 = pick from extension
	sheet         string // workbook sheet, empty = first sheet
	minYear       int
	maxYear       int
	skipMalformed bool
	logger        *zap.Logger
}

// WithDelimiter forces the field delimiter for delimited files.
func WithDelimiter(r rune) Option {
	return func(c *config) {
		c.delimiter = r
	}
}

// WithSheet selects the worksheet read from .xlsx sources.
func WithSheet(name string) Option {
	return func(c *config) {
		c.sheet = name
	}
}

// WithYearRange bounds the accepted panel years, inclusive.
func WithYearRange(minYear, maxYear int) Option {
	return func(c *config) {
		c.minYear = minYear
		c.maxYear = maxYear
	}
}

// WithSkipMalformed skips rows that fail validation instead of failing the load.
func WithSkipMalformed(skip bool) Option {
	return func(c *config) {
		c.skipMalformed = skip
	}
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		minYear: DefaultMinYear,
		maxYear: DefaultMaxYear,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
