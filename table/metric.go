package table

import "github.com/spektr-org/ladder/schema"

// Metric indexes the seven metrics carried by a merged row.
type Metric int

const (
	LifeLadder Metric = iota
	LogGDP
	SocialSupport
	LifeExpectancy
	Freedom
	Generosity
	Corruption

	MetricCount
)

var metricColumns = [MetricCount]string{
	LifeLadder:     schema.ColLifeLadder,
	LogGDP:         schema.ColLogGDP,
	SocialSupport:  schema.ColSocialSupport,
	LifeExpectancy: schema.ColLifeExpectancy,
	Freedom:        schema.ColFreedom,
	Generosity:     schema.ColGenerosity,
	Corruption:     schema.ColCorruption,
}

// Column returns the canonical column name of the metric.
func (m Metric) Column() string {
	if m < 0 || m >= MetricCount {
		return ""
	}
	return metricColumns[m]
}

func (m Metric) String() string { return m.Column() }

// Metrics lists every metric in column order.
func Metrics() []Metric {
	out := make([]Metric, MetricCount)
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}

// MetricByColumn resolves a canonical column name.
func MetricByColumn(name string) (Metric, bool) {
	for i, c := range metricColumns {
		if c == name {
			return Metric(i), true
		}
	}
	return 0, false
}
