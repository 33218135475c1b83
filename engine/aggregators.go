package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// AGGREGATORS — Grouping, Summary Statistics and Ranking via RecordView
// ============================================================================
// All functions operate on RecordView with zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// Missing measures (NaN) are skipped everywhere.
// Quantiles use the empirical (lower) definition: for n values the median is
// the element at position ceil(n/2).
// ============================================================================

// ============================================================================
// GROUPING
// ============================================================================

// GroupBy buckets rows by a dimension value, in first-seen order.
func GroupBy(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			Count: len(grouped[key]),
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// GroupByRegion computes the box statistics of metric per region, sorted by
// region name. Regions without a single value for the metric are omitted.
func GroupByRegion(view RecordView, metric string) []RegionStats {
	groups := GroupBy(view, DimRegion)
	SortGroups(groups, "label_asc")

	out := make([]RegionStats, 0, len(groups))
	for _, g := range groups {
		values := sortedValues(g.View, metric)
		if len(values) == 0 {
			continue
		}
		out = append(out, RegionStats{
			Region: g.Key,
			Count:  len(values),
			Min:    values[0],
			Q1:     quantile(0.25, values),
			Median: quantile(0.5, values),
			Q3:     quantile(0.75, values),
			Max:    values[len(values)-1],
		})
	}
	return out
}

// ============================================================================
// RANKING
// ============================================================================

// TopN ranks entities by metric within one year, highest first. Ties are
// broken by entity name. Rows missing the metric are excluded. n <= 0, or n
// larger than what is available, returns every ranked row.
func TopN(view RecordView, year int, metric string, n int) []Ranked {
	inYear := FilterByYear(view, year)

	ranked := make([]Ranked, 0, inYear.Len())
	for i := 0; i < inYear.Len(); i++ {
		v := inYear.Measure(i, metric)
		if math.IsNaN(v) {
			continue
		}
		ranked = append(ranked, Ranked{
			Entity: inYear.Dimension(i, DimEntity),
			Region: inYear.Dimension(i, DimRegion),
			Value:  v,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Entity < ranked[j].Entity
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// EntitySeries returns one entity's values of metric, ascending by year.
// Years where the metric is missing are skipped.
func EntitySeries(view RecordView, entity string, metric string) []Point {
	rows := FilterByEntity(view, entity)

	points := make([]Point, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		v := rows.Measure(i, metric)
		if math.IsNaN(v) {
			continue
		}
		year, err := strconv.Atoi(rows.Dimension(i, DimYear))
		if err != nil {
			continue
		}
		points = append(points, Point{Year: year, Value: v})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points
}

// Scatter pairs metrics x and y for every row carrying both.
func Scatter(view RecordView, x, y string) []ScatterPoint {
	points := make([]ScatterPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		xv, yv := view.Measure(i, x), view.Measure(i, y)
		if math.IsNaN(xv) || math.IsNaN(yv) {
			continue
		}
		year, _ := strconv.Atoi(view.Dimension(i, DimYear))
		points = append(points, ScatterPoint{
			Entity: view.Dimension(i, DimEntity),
			Region: view.Dimension(i, DimRegion),
			Year:   year,
			X:      xv,
			Y:      yv,
		})
	}
	return points
}

// ============================================================================
// SUMMARY STATISTICS
// ============================================================================

// Describe summarizes every measure of the view: count, mean, sample
// standard deviation, min, quartiles and max. Statistics of a measure with
// no values are NaN.
func Describe(view RecordView) []MetricSummary {
	keys := view.MeasureKeys()
	out := make([]MetricSummary, 0, len(keys))
	for _, key := range keys {
		values := sortedValues(view, key)
		s := MetricSummary{Metric: key, Count: len(values)}
		if len(values) == 0 {
			s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan(), nan(), nan(), nan(), nan(), nan(), nan()
			out = append(out, s)
			continue
		}
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
		s.Min = values[0]
		s.Q25 = quantile(0.25, values)
		s.Q50 = quantile(0.5, values)
		s.Q75 = quantile(0.75, values)
		s.Max = values[len(values)-1]
		out = append(out, s)
	}
	return out
}

// MeanMeasure averages a measure over the view, NaN when no value is present.
func MeanMeasure(view RecordView, measure string) float64 {
	values := Values(view, measure)
	if len(values) == 0 {
		return nan()
	}
	return stat.Mean(values, nil)
}

// Values collects the non-missing values of a measure in row order.
func Values(view RecordView, measure string) []float64 {
	out := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if v := view.Measure(i, measure); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func sortedValues(view RecordView, measure string) []float64 {
	values := Values(view, measure)
	sort.Float64s(values)
	return values
}

// quantile interpolates linearly between the order statistics around
// (n-1)*p, the convention of box plots and dataframe summaries.
// Expects sorted, non-empty input.
func quantile(p float64, sorted []float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func nan() float64 { return math.NaN() }

// ============================================================================
// DISTINCT VALUES
// ============================================================================

// Years returns the distinct years of the view, ascending.
func Years(view RecordView) []int {
	var out []int
	for _, s := range UniqueValues(view, DimYear) {
		if y, err := strconv.Atoi(s); err == nil {
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

// Entities returns the distinct entity names of the view, sorted.
func Entities(view RecordView) []string {
	out := UniqueValues(view, DimEntity)
	sort.Strings(out)
	return out
}

// Regions returns the distinct regions of the view, sorted.
func Regions(view RecordView) []string {
	out := UniqueValues(view, DimRegion)
	sort.Strings(out)
	return out
}

// UniqueValues returns distinct values for a dimension across a view.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts groups by the specified sort mode.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "count_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	case "count_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count < groups[j].Count })
	case "label_asc", "alpha_asc":
		sort.SliceStable(groups, func(i, j int) bool { return strings.ToLower(groups[i].Key) < strings.ToLower(groups[j].Key) })
	case "label_desc":
		sort.SliceStable(groups, func(i, j int) bool { return strings.ToLower(groups[i].Key) > strings.ToLower(groups[j].Key) })
	default:
		// preserve grouping order
	}
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatFloat renders v with the given number of decimals; NaN renders empty.
func FormatFloat(v float64, decimals int) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// LabelForDimension returns a capitalized label for a dimension.
func LabelForDimension(dimension string) string {
	if len(dimension) == 0 {
		return ""
	}
	return strings.ToUpper(dimension[:1]) + dimension[1:]
}
