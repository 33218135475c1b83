// Package pipeline reconciles the panel and snapshot sources into one
// merged table: normalize the snapshot, filter the panel, build the region
// lookup, then merge. Every stage is a pure function over immutable frames.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/spektr-org/ladder/table"
)

// Report summarizes one pipeline run.
type Report struct {
	PanelRows         int            `json:"panel_rows"`
	SnapshotRows      int            `json:"snapshot_rows"`
	RetainedPanelRows int            `json:"retained_panel_rows"`
	MergedRows        int            `json:"merged_rows"`
	Excluded          []string       `json:"excluded,omitempty"`
	DroppedDuplicates []table.Key    `json:"dropped_duplicates,omitempty"`
	Unresolved        []*table.Error `json:"-"`
	RegionConflicts   []string       `json:"region_conflicts,omitempty"`
}

// UnresolvedEntities lists the entities that fell back to the unknown region.
func (r *Report) UnresolvedEntities() []string {
	out := make([]string, len(r.Unresolved))
	for i, w := range r.Unresolved {
		out[i] = w.Entity
	}
	return out
}

// BuildMergedTable runs the full reconciliation over two loaded sources.
// Performs no I/O and never returns a partial table: any fatal stage error
// aborts the run. Calling it twice on the same inputs yields equal tables.
func BuildMergedTable(panel, snapshot *table.Frame, snapshotYear int, opts ...Option) (*table.Merged, *Report, error) {
	cfg := applyOptions(opts)
	log := cfg.logger.With(zap.Int("snapshot_year", snapshotYear))

	normalized := NormalizeSnapshot(snapshot, snapshotYear)

	filtered, excluded, err := FilterPanel(panel, normalized.Entities(), cfg.coverage)
	if err != nil {
		return nil, nil, err
	}
	if len(excluded) > 0 {
		log.Info("panel entities outside snapshot coverage excluded",
			zap.Int("entities", len(excluded)),
			zap.Strings("excluded", excluded))
	}

	lookup := NewRegionLookup(normalized)
	conflicts := lookup.Conflicts()
	for _, e := range conflicts {
		log.Warn("conflicting snapshot regions, last row wins", zap.String("entity", e))
	}

	merged, report, err := Merge(filtered, normalized, lookup, opts...)
	if err != nil {
		return nil, nil, err
	}

	report.PanelRows = panel.Len()
	report.SnapshotRows = snapshot.Len()
	report.RetainedPanelRows = filtered.Len()
	report.Excluded = excluded
	report.RegionConflicts = conflicts

	log.Info("merged table built",
		zap.Int("panel_rows", report.PanelRows),
		zap.Int("snapshot_rows", report.SnapshotRows),
		zap.Int("merged_rows", report.MergedRows),
		zap.Int("duplicates", len(report.DroppedDuplicates)),
		zap.Int("unresolved", len(report.Unresolved)))
	return merged, report, nil
}
