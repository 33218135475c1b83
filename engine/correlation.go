package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix computes pairwise Pearson coefficients between metrics.
// Each pair uses only the rows where both values are present; a pair with
// fewer than two such rows, or with a constant side, is NaN. With no
// metrics given, every measure of the view is used, year included.
func CorrelationMatrix(view RecordView, metrics ...string) Matrix {
	if len(metrics) == 0 {
		metrics = view.MeasureKeys()
	}

	columns := make([][]float64, len(metrics))
	for k, m := range metrics {
		col := make([]float64, view.Len())
		for i := range col {
			col[i] = view.Measure(i, m)
		}
		columns[k] = col
	}

	values := make([][]float64, len(metrics))
	for i := range values {
		values[i] = make([]float64, len(metrics))
	}
	for i := range metrics {
		for j := i; j < len(metrics); j++ {
			r := pairwise(columns[i], columns[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			values[i][j] = r
			values[j][i] = r
		}
	}

	return Matrix{Metrics: append([]string(nil), metrics...), Values: values}
}

// Correlation is the Pearson coefficient of two metrics over complete pairs.
func Correlation(view RecordView, x, y string) float64 {
	return CorrelationMatrix(view, x, y).Values[0][1]
}

func pairwise(a, b []float64) float64 {
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}

// MetricKeys returns the view's measures other than year.
func MetricKeys(view RecordView) []string {
	var out []string
	for _, k := range view.MeasureKeys() {
		if k != DimYear {
			out = append(out, k)
		}
	}
	return out
}
