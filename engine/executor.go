package engine

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spektr-org/ladder/schema"
)

// ============================================================================
// EXECUTOR — Query Dispatcher
// ============================================================================
// Entry point: Execute(query, view, opts...)
//
// Pipeline:
//   1. Apply filters from Query → SubView
//   2. Resolve metric names against the view's measures
//   3. Dispatch to the typed query (TopN, GroupByRegion, ...)
//   4. Build render-ready TableData
//   5. Return Result (typed payload in Result.Data)
//
// Zero data copy: the engine reads the merged table through RecordView.
// ============================================================================

var (
	// ErrUnknownMetric is returned when a query names a measure the view lacks.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrUnknownKind is returned for a query kind Execute does not handle.
	ErrUnknownKind = errors.New("unknown query kind")
)

// Execute runs a Query against a RecordView and returns a render-ready Result.
//
// Options:
//   - WithDefaultMetric(name): metric when Query.Metric is empty
//   - WithDefaultLimit(n): top-N size when Query.Limit is 0
//   - WithDecimals(n): precision of numeric cells
//   - WithLogger(l)
func Execute(q Query, view RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	// 1. Apply filters → SubView (zero-copy)
	filtered := ApplyFilters(view, q.Filters)
	cfg.Logger.Debug("executing query",
		zap.String("kind", q.Kind),
		zap.Int("rows", view.Len()),
		zap.Int("filtered", filtered.Len()))

	metricName := q.Metric
	if metricName == "" {
		metricName = cfg.DefaultMetric
	}

	result := &Result{Success: true, Kind: q.Kind, Title: q.Title}

	switch q.Kind {
	case KindDescribe:
		summaries := Describe(filtered)
		result.setTitle("Summary statistics")
		result.Data = summaries
		result.TableData = BuildDescribeTable(result.Title, summaries, cfg.Decimals)
		result.Summary = fmt.Sprintf("%d rows, %d measures", filtered.Len(), len(summaries))

	case KindCorr:
		metrics, err := resolveMetrics(view, q.Metrics)
		if err != nil {
			return nil, err
		}
		m := CorrelationMatrix(filtered, metrics...)
		result.setTitle("Correlation matrix")
		result.Data = m
		result.TableData = BuildMatrixTable(result.Title, m, cfg.Decimals)
		result.Summary = fmt.Sprintf("Pearson, pairwise complete over %d rows", filtered.Len())

	case KindRegions:
		metric, err := ResolveMetric(view, metricName)
		if err != nil {
			return nil, err
		}
		stats := GroupByRegion(filtered, metric)
		result.setTitle(metric + " by region")
		result.Data = stats
		result.TableData = BuildRegionTable(result.Title, stats, cfg.Decimals)
		result.Summary = fmt.Sprintf("%d regions", len(stats))

	case KindTop:
		metric, err := ResolveMetric(view, metricName)
		if err != nil {
			return nil, err
		}
		year := q.Year
		if year == 0 {
			years := Years(filtered)
			if len(years) == 0 {
				return emptyResult(result), nil
			}
			year = years[len(years)-1]
		}
		limit := q.Limit
		if limit == 0 {
			limit = cfg.DefaultLimit
		}
		ranked := TopN(filtered, year, metric, limit)
		result.setTitle(fmt.Sprintf("Top %d by %s, %d", len(ranked), metric, year))
		result.Data = ranked
		result.TableData = BuildRankTable(result.Title, metric, ranked, cfg.Decimals)
		result.Summary = fmt.Sprintf("%d entities ranked", len(ranked))

	case KindSeries:
		if q.Entity == "" {
			return nil, fmt.Errorf("series query needs an entity")
		}
		metric, err := ResolveMetric(view, metricName)
		if err != nil {
			return nil, err
		}
		points := EntitySeries(filtered, q.Entity, metric)
		result.setTitle(fmt.Sprintf("%s, %s", q.Entity, metric))
		result.Data = points
		result.TableData = BuildSeriesTable(result.Title, metric, points, cfg.Decimals)
		result.Summary = fmt.Sprintf("%d years", len(points))

	case KindScatter:
		x, err := ResolveMetric(view, q.X)
		if err != nil {
			return nil, err
		}
		y, err := ResolveMetric(view, q.Y)
		if err != nil {
			return nil, err
		}
		points := Scatter(filtered, x, y)
		result.setTitle(fmt.Sprintf("%s vs %s", y, x))
		result.Data = points
		result.TableData = BuildScatterTable(result.Title, x, y, points, cfg.Decimals)
		result.Summary = fmt.Sprintf("%d points, r = %s", len(points),
			FormatFloat(Correlation(filtered, x, y), cfg.Decimals))

	case KindRows, "":
		result.Kind = KindRows
		result.setTitle("Rows")
		result.TableData = BuildRowTable(result.Title, filtered, cfg.Decimals)
		result.Summary = fmt.Sprintf("%d rows", filtered.Len())

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, q.Kind)
	}

	return result, nil
}

func (r *Result) setTitle(fallback string) {
	if r.Title == "" {
		r.Title = fallback
	}
}

func emptyResult(r *Result) *Result {
	r.Summary = "No rows match the query filters."
	r.TableData = emptyTable(r.Title)
	return r
}

// ============================================================================
// METRIC RESOLUTION
// ============================================================================

// ResolveMetric maps a user-supplied name onto one of the view's measures.
// Accepts the exact column name, any casing of it, or its snake_case key
// ("log_gdp_per_capita").
func ResolveMetric(view RecordView, name string) (string, error) {
	name = strings.TrimSpace(name)
	keys := view.MeasureKeys()
	for _, k := range keys {
		if k == name {
			return k, nil
		}
	}
	for _, k := range keys {
		if strings.EqualFold(k, name) || schema.Key(k) == schema.Key(name) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %s)", ErrUnknownMetric, name, strings.Join(keys, ", "))
}

func resolveMetrics(view RecordView, names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		m, err := ResolveMetric(view, n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
