package pipeline

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ============================================================================
// PIPELINE OPTIONS — Functional options for BuildMergedTable() / Merge()
// ============================================================================

// DefaultSnapshotYear is the year stamped on snapshot rows when none is given.
const DefaultSnapshotYear = 2021

// CoveragePolicy decides which panel entities survive the panel filter.
type CoveragePolicy string

const (
	// CoverageIntersect keeps only panel entities the snapshot also covers.
	// Historical entities missing from the newest snapshot are excluded
	// from all downstream analysis.
	CoverageIntersect CoveragePolicy = "intersect"

	// CoveragePanel keeps every panel entity. Entities the snapshot does not
	// cover resolve to the unknown region.
	CoveragePanel CoveragePolicy = "panel"
)

// ParseCoveragePolicy accepts "intersect" or "panel" (case-insensitive);
// empty means CoverageIntersect.
func ParseCoveragePolicy(s string) (CoveragePolicy, error) {
	switch CoveragePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CoverageIntersect:
		return CoverageIntersect, nil
	case CoveragePanel:
		return CoveragePanel, nil
	}
	return "", fmt.Errorf("unknown coverage policy %q (want %q or %q)", s, CoverageIntersect, CoveragePanel)
}

// Option configures the pipeline via functional options pattern.
type Option func(*config)

type config struct {
	logger   *zap.Logger
	coverage CoveragePolicy
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCoveragePolicy selects how the panel filter treats entities the
// snapshot does not cover.
func WithCoveragePolicy(p CoveragePolicy) Option {
	return func(c *config) {
		c.coverage = p
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		logger:   zap.NewNop(),
		coverage: CoverageIntersect,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
