// Package config holds ladder's run configuration: YAML file first, then
// LADDER_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/ladder/pipeline"
	"github.com/spektr-org/ladder/source"
)

// Config holds all ladder configuration.
type Config struct {
	Sources SourcesConfig `yaml:"sources"`
	Merge   MergeConfig   `yaml:"merge"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// SourcesConfig locates and reads the two inputs.
type SourcesConfig struct {
	PanelPath     string `yaml:"panel_path" env:"LADDER_PANEL_PATH"`
	SnapshotPath  string `yaml:"snapshot_path" env:"LADDER_SNAPSHOT_PATH"`
	Delimiter     string `yaml:"delimiter" env:"LADDER_DELIMITER"` // empty: by extension
	Sheet         string `yaml:"sheet" env:"LADDER_SHEET"`         // xlsx only; empty: first sheet
	MinYear       int    `yaml:"min_year" env:"LADDER_MIN_YEAR"`
	MaxYear       int    `yaml:"max_year" env:"LADDER_MAX_YEAR"`
	SkipMalformed bool   `yaml:"skip_malformed" env:"LADDER_SKIP_MALFORMED"`
}

// MergeConfig tunes the reconciliation.
type MergeConfig struct {
	SnapshotYear int    `yaml:"snapshot_year" env:"LADDER_SNAPSHOT_YEAR"`
	Coverage     string `yaml:"coverage" env:"LADDER_COVERAGE"` // intersect, panel
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LADDER_LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"LADDER_LOG_FORMAT"` // json, console
}

// OutputConfig controls how query results are printed.
type OutputConfig struct {
	Format   string `yaml:"format" env:"LADDER_OUTPUT_FORMAT"` // table, csv, json
	TopN     int    `yaml:"top_n" env:"LADDER_TOP_N"`
	Decimals int    `yaml:"decimals" env:"LADDER_DECIMALS"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			MinYear: source.DefaultMinYear,
			MaxYear: source.DefaultMaxYear,
		},
		Merge: MergeConfig{
			SnapshotYear: pipeline.DefaultSnapshotYear,
			Coverage:     string(pipeline.CoverageIntersect),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Format:   "table",
			TopN:     10,
			Decimals: 3,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path or a missing file yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides sets every field whose LADDER_* variable is present.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Normalize trims and lowercases the enumerated settings so consumers can
// compare them directly.
func (c *Config) Normalize() {
	for _, f := range []*string{&c.Merge.Coverage, &c.Logging.Level, &c.Logging.Format, &c.Output.Format} {
		*f = strings.ToLower(strings.TrimSpace(*f))
	}
}

// Validate normalizes the configuration, then checks value ranges and
// enumerations.
func (c *Config) Validate() error {
	c.Normalize()
	var errs []error

	if _, err := c.DelimiterRune(); err != nil {
		errs = append(errs, err)
	}
	if c.Sources.MinYear > c.Sources.MaxYear {
		errs = append(errs, fmt.Errorf("sources.min_year %d is after sources.max_year %d", c.Sources.MinYear, c.Sources.MaxYear))
	}
	if c.Merge.SnapshotYear <= 0 {
		errs = append(errs, fmt.Errorf("merge.snapshot_year must be positive, got %d", c.Merge.SnapshotYear))
	}
	if _, err := pipeline.ParseCoveragePolicy(c.Merge.Coverage); err != nil {
		errs = append(errs, fmt.Errorf("merge.coverage: %w", err))
	}
	if !oneOf(c.Logging.Level, "debug", "info", "warn", "error") {
		errs = append(errs, fmt.Errorf("logging.level %q: want debug, info, warn or error", c.Logging.Level))
	}
	if !oneOf(c.Logging.Format, "json", "console") {
		errs = append(errs, fmt.Errorf("logging.format %q: want json or console", c.Logging.Format))
	}
	if !oneOf(c.Output.Format, "table", "csv", "json") {
		errs = append(errs, fmt.Errorf("output.format %q: want table, csv or json", c.Output.Format))
	}
	if c.Output.TopN < 0 {
		errs = append(errs, fmt.Errorf("output.top_n must not be negative, got %d", c.Output.TopN))
	}
	if c.Output.Decimals < 0 {
		errs = append(errs, fmt.Errorf("output.decimals must not be negative, got %d", c.Output.Decimals))
	}

	return errors.Join(errs...)
}

// DelimiterRune decodes Sources.Delimiter. Zero means "pick by extension".
// Accepts a single character or the escape `\t`.
func (c *Config) DelimiterRune() (rune, error) {
	d := c.Sources.Delimiter
	switch {
	case d == "":
		return 0, nil
	case d == `\t`:
		return '\t', nil
	case utf8.RuneCountInString(d) == 1:
		r, _ := utf8.DecodeRuneInString(d)
		if r == '"' || r == '\r' || r == '\n' {
			return 0, fmt.Errorf("sources.delimiter %q is not usable", d)
		}
		return r, nil
	}
	return 0, fmt.Errorf("sources.delimiter %q must be a single character", d)
}

// SourceOptions translates the sources section into loader options.
func (c *Config) SourceOptions() []source.Option {
	opts := []source.Option{
		source.WithYearRange(c.Sources.MinYear, c.Sources.MaxYear),
		source.WithSkipMalformed(c.Sources.SkipMalformed),
	}
	if r, err := c.DelimiterRune(); err == nil && r != 0 {
		opts = append(opts, source.WithDelimiter(r))
	}
	if c.Sources.Sheet != "" {
		opts = append(opts, source.WithSheet(c.Sources.Sheet))
	}
	return opts
}

// PipelineOptions translates the merge section into pipeline options.
// Call Validate first; an invalid coverage falls back to the default.
func (c *Config) PipelineOptions() []pipeline.Option {
	policy, err := pipeline.ParseCoveragePolicy(c.Merge.Coverage)
	if err != nil {
		policy = pipeline.CoverageIntersect
	}
	return []pipeline.Option{pipeline.WithCoveragePolicy(policy)}
}

func oneOf(v string, allowed ...string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
