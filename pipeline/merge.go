package pipeline

import (
	"go.uber.org/zap"

	"github.com/spektr-org/ladder/schema"
	"github.com/spektr-org/ladder/table"
)

// ============================================================================
// MERGE — Filtered panel + normalized snapshot → table.Merged
// ============================================================================
// 1. Align snapshot columns to the panel's, keeping the raw region column
// 2. Concatenate panel then snapshot; dedupe on (entity, year), the
//    snapshot row wins, within one source the first row wins
// 3. Resolve every row's region through the lookup (misses → Unknown)
// 4. Drop the raw region column; the result carries one "region" column
// ============================================================================

// Merge combines a filtered panel and a normalized snapshot. No input frame
// is modified. The report carries only the merge-stage fields; see
// BuildMergedTable for the full run.
func Merge(panel, snapshot *table.Frame, lookup *RegionLookup, opts ...Option) (*table.Merged, *Report, error) {
	cfg := applyOptions(opts)
	report := &Report{}

	aligned, err := alignColumns(panel, snapshot)
	if err != nil {
		return nil, nil, err
	}

	records, dropped := dedupe(panel.Records(), snapshot.Records())
	for _, k := range dropped {
		cfg.logger.Debug("dropped duplicate row",
			zap.String("entity", k.Entity),
			zap.Int("year", k.Year))
	}
	if len(dropped) > 0 {
		cfg.logger.Info("deduplicated merged rows", zap.Int("dropped", len(dropped)))
	}
	report.DroppedDuplicates = dropped

	columns := make([]string, 0, len(aligned))
	for _, c := range aligned {
		if c != schema.ColRegionalIndicator {
			columns = append(columns, c)
		}
	}
	columns = append(columns, schema.ColRegion)
	if err := checkColumns(columns, schema.MergedColumns()); err != nil {
		err.Source = panel.Name()
		return nil, nil, err
	}

	rows := make([]table.Row, 0, len(records))
	warned := make(map[string]bool)
	for _, rec := range records {
		region, ok := lookup.Resolve(rec.Entity)
		if !ok && !warned[rec.Entity] {
			warned[rec.Entity] = true
			w := &table.Error{
				Kind:   table.KindUnresolvedRegion,
				Source: snapshot.Name(),
				Column: schema.ColRegionalIndicator,
				Entity: rec.Entity,
				Detail: "no region in snapshot, using " + table.UnknownRegion,
			}
			report.Unresolved = append(report.Unresolved, w)
			cfg.logger.Warn("unresolved region", zap.String("entity", rec.Entity))
		}
		rows = append(rows, toRow(rec, region))
	}

	report.MergedRows = len(rows)
	return table.NewMerged(rows), report, nil
}

// alignColumns returns the merge column order: the panel's columns followed
// by the snapshot's raw region column. Every panel column must exist in the
// snapshot.
func alignColumns(panel, snapshot *table.Frame) ([]string, error) {
	for _, c := range panel.Columns() {
		if !snapshot.HasColumn(c) {
			return nil, &table.Error{
				Kind:   table.KindSchemaMismatch,
				Source: snapshot.Name(),
				Column: c,
				Detail: "panel column missing from normalized snapshot",
			}
		}
	}
	if !snapshot.HasColumn(schema.ColRegionalIndicator) {
		return nil, &table.Error{
			Kind:   table.KindSchemaMismatch,
			Source: snapshot.Name(),
			Column: schema.ColRegionalIndicator,
			Detail: "region column missing",
		}
	}
	return append(panel.Columns(), schema.ColRegionalIndicator), nil
}

// dedupe concatenates panel then snapshot records and removes repeated
// (entity, year) keys. Dropped keys are returned in encounter order.
func dedupe(panel, snapshot []table.Record) ([]table.Record, []table.Key) {
	fromSnapshot := make(map[table.Key]bool, len(snapshot))
	for _, r := range snapshot {
		fromSnapshot[table.Key{Entity: r.Entity, Year: r.Year}] = true
	}

	seen := make(map[table.Key]bool, len(panel)+len(snapshot))
	out := make([]table.Record, 0, len(panel)+len(snapshot))
	var dropped []table.Key

	for _, r := range panel {
		k := table.Key{Entity: r.Entity, Year: r.Year}
		if fromSnapshot[k] || seen[k] {
			dropped = append(dropped, k)
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	for _, r := range snapshot {
		k := table.Key{Entity: r.Entity, Year: r.Year}
		if seen[k] {
			dropped = append(dropped, k)
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out, dropped
}

func toRow(rec table.Record, region string) table.Row {
	row := table.Row{Entity: rec.Entity, Year: rec.Year, Region: region}
	for _, m := range table.Metrics() {
		row.Metrics[m] = rec.Cell(m.Column())
	}
	return row
}

// checkColumns compares the merged column set against the canonical one.
// Order is free; a missing, unexpected or repeated column is reported by name.
func checkColumns(got, want []string) *table.Error {
	expected := make(map[string]bool, len(want))
	for _, c := range want {
		expected[c] = true
	}
	seen := make(map[string]bool, len(got))
	for _, c := range got {
		switch {
		case !expected[c]:
			return &table.Error{Kind: table.KindSchemaMismatch, Column: c, Detail: "unexpected column in merged table"}
		case seen[c]:
			return &table.Error{Kind: table.KindSchemaMismatch, Column: c, Detail: "duplicate column in merged table"}
		}
		seen[c] = true
	}
	for _, c := range want {
		if !seen[c] {
			return &table.Error{Kind: table.KindSchemaMismatch, Column: c, Detail: "column missing from merged table"}
		}
	}
	return nil
}
