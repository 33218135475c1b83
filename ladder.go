// Package ladder reconciles two national happiness datasets into one
// long-format table and answers read-only queries over it.
//
// Usage:
//
//	panel, snapshot, err := source.LoadSources(ctx, "panel.csv", "snapshot-2021.csv")
//	if err != nil { ... }
//
//	merged, report, err := pipeline.BuildMergedTable(panel, snapshot, 2021,
//	    pipeline.WithLogger(logger),
//	)
//	if err != nil { ... }
//
//	view := engine.Bind(merged)
//	top := engine.TopN(view, 2021, "Life Ladder", 10)
//	corr := engine.CorrelationMatrix(view)
//
// The panel is a multi-year history per country; the snapshot covers one
// year, uses its own column names and is the only source of regions.
// Failures are typed *table.Error values (source_unavailable,
// schema_mismatch, malformed_row, empty_intersection); an entity the
// snapshot cannot place gets the "Unknown" region and a warning in the
// report.
//
// Nothing here touches the network; sources are read once per run.
package ladder
