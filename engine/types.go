package engine

// ============================================================================
// ENGINE TYPES — Read-only queries over the merged happiness table
// ============================================================================
// Query (what to compute) → Execute → Result (render-ready TableData).
// The typed helpers (TopN, GroupByRegion, ...) can also be called directly.
// ============================================================================

// Query kinds understood by Execute.
const (
	KindDescribe = "describe"
	KindCorr     = "corr"
	KindRegions  = "regions"
	KindTop      = "top"
	KindSeries   = "series"
	KindScatter  = "scatter"
	KindRows     = "rows" // plain filtered rows, as used by year / entity
)

// ============================================================================
// QUERY — Contract between CLI (or any caller) and Engine
// ============================================================================

// Query defines what the engine should compute.
type Query struct {
	Kind    string   `json:"kind"`              // one of the Kind* constants
	Filters Filters  `json:"filters"`           // Which rows to include
	Metric  string   `json:"metric,omitempty"`  // empty → default metric
	Metrics []string `json:"metrics,omitempty"` // corr: empty → every metric
	X       string   `json:"x,omitempty"`       // scatter axes
	Y       string   `json:"y,omitempty"`
	Year    int      `json:"year,omitempty"`   // top: 0 → latest year in view
	Entity  string   `json:"entity,omitempty"` // series
	Limit   int      `json:"limit,omitempty"`  // top: 0 → default limit
	Title   string   `json:"title,omitempty"`
}

// Filters define which records to include.
// Keys are dimension names. Values are allowed values.
// OR within a dimension, AND across dimensions. Empty = all.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions"`
}

// HasFilter returns true if a specific dimension filter is set.
func (f Filters) HasFilter(dimension string) bool {
	if f.Dimensions == nil {
		return false
	}
	vals, ok := f.Dimensions[dimension]
	return ok && len(vals) > 0
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	if f.Dimensions == nil {
		return true
	}
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ============================================================================
// RESULT — Render-ready output
// ============================================================================

// Result is the engine's render-ready output.
type Result struct {
	Success   bool        `json:"success"`
	Kind      string      `json:"kind"`
	Title     string      `json:"title"`
	Summary   string      `json:"summary"`
	TableData *TableData  `json:"tableData,omitempty"`
	Data      interface{} `json:"-"` // typed payload, e.g. []Ranked for "top"; may hold NaN
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group is one bucket of rows sharing a dimension value.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// QUERY OUTPUTS
// ============================================================================

// RegionStats is the five-number summary of one metric within one region.
type RegionStats struct {
	Region string  `json:"region"`
	Count  int     `json:"count"` // non-missing values
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Ranked is one entry of a top-N ranking.
type Ranked struct {
	Rank   int     `json:"rank"`
	Entity string  `json:"entity"`
	Region string  `json:"region"`
	Value  float64 `json:"value"`
}

// Point is one observation of a single-entity time series.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// ScatterPoint pairs two metrics of one row.
type ScatterPoint struct {
	Entity string  `json:"entity"`
	Region string  `json:"region"`
	Year   int     `json:"year"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// MetricSummary mirrors a dataframe describe() column.
type MetricSummary struct {
	Metric string  `json:"metric"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Q50    float64 `json:"q50"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Matrix is a square correlation matrix; Values[i][j] pairs Metrics[i]
// with Metrics[j].
type Matrix struct {
	Metrics []string    `json:"metrics"`
	Values  [][]float64 `json:"values"`
}

// At returns the coefficient for two metrics, NaN when either is absent.
func (m Matrix) At(a, b string) float64 {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return nan()
	}
	return m.Values[i][j]
}

func (m Matrix) index(metric string) int {
	for i, k := range m.Metrics {
		if k == metric {
			return i
		}
	}
	return -1
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// Headers returns the column labels in order.
func (t *TableData) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label
	}
	return out
}
