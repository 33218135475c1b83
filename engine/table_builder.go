package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from query outputs
// ============================================================================
// One builder per query kind. Numbers are formatted with a fixed number of
// decimals; missing values render as empty cells.
// ============================================================================

func textColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "text", Align: "left"}
}

func numberColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "number", Align: "right"}
}

func emptyTable(title string) *TableData {
	return &TableData{Title: title, Columns: []Column{}, Rows: [][]string{}}
}

// ============================================================================
// ROW TABLE — Row per record
// ============================================================================

// BuildRowTable lists every row of the view: dimensions, then measures
// other than year.
func BuildRowTable(title string, view RecordView, decimals int) *TableData {
	if view.Len() == 0 {
		return emptyTable(title)
	}

	dimKeys := view.DimensionKeys()
	mesKeys := MetricKeys(view)
	columns := make([]Column, 0, len(dimKeys)+len(mesKeys))
	for _, key := range dimKeys {
		columns = append(columns, textColumn(key, LabelForDimension(key)))
	}
	for _, key := range mesKeys {
		columns = append(columns, numberColumn(key, key))
	}

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, 0, len(columns))
		for _, key := range dimKeys {
			row = append(row, view.Dimension(i, key))
		}
		for _, key := range mesKeys {
			row = append(row, FormatFloat(view.Measure(i, key), decimals))
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("Total (%d rows)", view.Len()),
			Values: map[string]string{
				DimEntity: strconv.Itoa(len(UniqueValues(view, DimEntity))),
			},
		},
	}
}

// ============================================================================
// AGGREGATED TABLES
// ============================================================================

// BuildRegionTable renders per-region box statistics.
func BuildRegionTable(title string, stats []RegionStats, decimals int) *TableData {
	if len(stats) == 0 {
		return emptyTable(title)
	}
	columns := []Column{
		textColumn("region", "Region"),
		{Key: "count", Label: "Count", Type: "number", Align: "center"},
		numberColumn("min", "Min"),
		numberColumn("q1", "Q1"),
		numberColumn("median", "Median"),
		numberColumn("q3", "Q3"),
		numberColumn("max", "Max"),
	}
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Region,
			strconv.Itoa(s.Count),
			FormatFloat(s.Min, decimals),
			FormatFloat(s.Q1, decimals),
			FormatFloat(s.Median, decimals),
			FormatFloat(s.Q3, decimals),
			FormatFloat(s.Max, decimals),
		})
	}
	return &TableData{Title: title, Columns: columns, Rows: rows}
}

// BuildRankTable renders a top-N ranking.
func BuildRankTable(title, metric string, ranked []Ranked, decimals int) *TableData {
	if len(ranked) == 0 {
		return emptyTable(title)
	}
	columns := []Column{
		{Key: "rank", Label: "Rank", Type: "number", Align: "center"},
		textColumn(DimEntity, LabelForDimension(DimEntity)),
		textColumn(DimRegion, LabelForDimension(DimRegion)),
		numberColumn(metric, metric),
	}
	rows := make([][]string, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, []string{
			strconv.Itoa(r.Rank),
			r.Entity,
			r.Region,
			FormatFloat(r.Value, decimals),
		})
	}
	return &TableData{Title: title, Columns: columns, Rows: rows}
}

// BuildSeriesTable renders a single-entity time series.
func BuildSeriesTable(title, metric string, points []Point, decimals int) *TableData {
	if len(points) == 0 {
		return emptyTable(title)
	}
	columns := []Column{
		{Key: DimYear, Label: LabelForDimension(DimYear), Type: "number", Align: "center"},
		numberColumn(metric, metric),
	}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{strconv.Itoa(p.Year), FormatFloat(p.Value, decimals)})
	}
	return &TableData{Title: title, Columns: columns, Rows: rows}
}

// BuildScatterTable renders scatter pairs with their labels.
func BuildScatterTable(title, x, y string, points []ScatterPoint, decimals int) *TableData {
	if len(points) == 0 {
		return emptyTable(title)
	}
	columns := []Column{
		textColumn(DimEntity, LabelForDimension(DimEntity)),
		textColumn(DimRegion, LabelForDimension(DimRegion)),
		{Key: DimYear, Label: LabelForDimension(DimYear), Type: "number", Align: "center"},
		numberColumn("x", x),
		numberColumn("y", y),
	}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.Entity,
			p.Region,
			strconv.Itoa(p.Year),
			FormatFloat(p.X, decimals),
			FormatFloat(p.Y, decimals),
		})
	}
	return &TableData{Title: title, Columns: columns, Rows: rows}
}

// BuildDescribeTable renders a describe() summary, one row per measure.
func BuildDescribeTable(title string, summaries []MetricSummary, decimals int) *TableData {
	if len(summaries) == 0 {
		return emptyTable(title)
	}
	columns := []Column{
		textColumn("metric", "Metric"),
		{Key: "count", Label: "Count", Type: "number", Align: "center"},
		numberColumn("mean", "Mean"),
		numberColumn("std", "Std"),
		numberColumn("min", "Min"),
		numberColumn("25%", "25%"),
		numberColumn("50%", "50%"),
		numberColumn("75%", "75%"),
		numberColumn("max", "Max"),
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Metric,
			strconv.Itoa(s.Count),
			FormatFloat(s.Mean, decimals),
			FormatFloat(s.Std, decimals),
			FormatFloat(s.Min, decimals),
			FormatFloat(s.Q25, decimals),
			FormatFloat(s.Q50, decimals),
			FormatFloat(s.Q75, decimals),
			FormatFloat(s.Max, decimals),
		})
	}
	return &TableData{Title: title, Columns: columns, Rows: rows}
}

// BuildMatrixTable renders a correlation matrix with metric names on both
// axes.
func BuildMatrixTable(title string, m Matrix, decimals int) *TableData {
	if len(m.Metrics) == 0 {
		return emptyTable(title)
	}
	columns := make([]Column, 0, len(m.Metrics)+1)
	columns = append(columns, textColumn("metric", ""))
	for _, k := range m.Metrics {
		columns = append(columns, numberColumn(k, k))
	}
	rows := make([][]string, 0, len(m.Metrics))
	for i, k := range m.Metrics {
		row := make([]string, 0, len(columns))
		row = append(row, k)
		for j := range m.Metrics {
			row = append(row, FormatFloat(m.Values[i][j], decimals))
		}
		rows = append(rows, row)
	}
	return &TableData{Title: title, Columns: columns, Rows: rows}
}
