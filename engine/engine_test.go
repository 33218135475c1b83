package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/ladder/schema"
	"github.com/spektr-org/ladder/table"
)

// ============================================================================
// FIXTURES
// ============================================================================

// row builds a merged row with Life Ladder and Log GDP set; NaN leaves a
// metric missing.
func row(entity string, year int, region string, ladder, gdp float64) table.Row {
	r := table.Row{Entity: entity, Year: year, Region: region}
	r.Metrics[table.LifeLadder] = table.Float(ladder)
	r.Metrics[table.LogGDP] = table.Float(gdp)
	return r
}

func sampleView() RecordView {
	return Bind(table.NewMerged([]table.Row{
		row("Wonderland", 2020, "Fictiona", 7.0, 10.0),
		row("Elbonia", 2020, "Muddy Lands", 4.0, 8.0),
		row("Freedonia", 2020, "Fictiona", 6.0, 9.5),
		row("Atlantis", 2020, table.UnknownRegion, math.NaN(), 9.0),
		row("Wonderland", 2021, "Fictiona", 7.5, 10.1),
		row("Elbonia", 2021, "Muddy Lands", 4.5, math.NaN()),
		row("Wonderland", 2019, "Fictiona", 6.8, 9.9),
	}))
}

// ============================================================================
// BIND
// ============================================================================

func TestBind_Keys(t *testing.T) {
	view := sampleView()

	assert.Equal(t, []string{DimEntity, DimYear, DimRegion}, view.DimensionKeys())

	want := append([]string{schema.ColYear}, schema.MetricColumns()...)
	assert.Equal(t, want, view.MeasureKeys())
	assert.Equal(t, schema.MetricColumns(), MetricKeys(view))
}

func TestBind_Access(t *testing.T) {
	view := sampleView()
	require.Equal(t, 7, view.Len())

	assert.Equal(t, "Wonderland", view.Dimension(0, DimEntity))
	assert.Equal(t, "2020", view.Dimension(0, DimYear))
	assert.Equal(t, "Fictiona", view.Dimension(0, DimRegion))
	assert.Equal(t, 2020.0, view.Measure(0, schema.ColYear))
	assert.Equal(t, 7.0, view.Measure(0, schema.ColLifeLadder))

	assert.True(t, math.IsNaN(view.Measure(3, schema.ColLifeLadder)), "missing reads as NaN")
	assert.True(t, math.IsNaN(view.Measure(0, schema.ColGenerosity)))
	assert.True(t, math.IsNaN(view.Measure(0, "no such measure")))
	assert.True(t, math.IsNaN(view.Measure(99, schema.ColLifeLadder)))
	assert.Equal(t, "", view.Dimension(-1, DimEntity))
	assert.Equal(t, "", view.Dimension(0, "no such dimension"))
}

// ============================================================================
// FILTERS
// ============================================================================

func TestApplyFilters(t *testing.T) {
	view := sampleView()

	t.Run("empty returns same view", func(t *testing.T) {
		assert.Same(t, view, ApplyFilters(view, Filters{}))
		assert.Same(t, view, ApplyFilters(view, Filters{Dimensions: map[string][]string{DimRegion: {}}}))
	})

	t.Run("case-insensitive OR within dimension", func(t *testing.T) {
		out := ApplyFilters(view, Filters{Dimensions: map[string][]string{
			DimEntity: {"wonderland", "ELBONIA"},
		}})
		assert.Equal(t, 5, out.Len())
	})

	t.Run("AND across dimensions", func(t *testing.T) {
		out := ApplyFilters(view, Filters{Dimensions: map[string][]string{
			DimRegion: {"fictiona"},
			DimYear:   {"2020"},
		}})
		assert.Equal(t, []string{"Freedonia", "Wonderland"}, Entities(out))
	})

	t.Run("no match", func(t *testing.T) {
		out := ApplyFilters(view, Filters{Dimensions: map[string][]string{DimRegion: {"Atlantica"}}})
		assert.Equal(t, 0, out.Len())
	})
}

func TestFilterHelpers(t *testing.T) {
	view := sampleView()

	assert.Equal(t, 4, FilterByYear(view, 2020).Len())
	assert.Equal(t, 0, FilterByYear(view, 1999).Len())
	assert.Equal(t, 3, FilterByEntity(view, "Wonderland").Len())
	assert.Equal(t, 2, FilterByRegion(view, "muddy lands").Len())

	high := Where(view, func(i int) bool { return view.Measure(i, schema.ColLifeLadder) > 6.5 })
	assert.Equal(t, 3, high.Len())

	// nested sub views resolve through their parent
	nested := FilterByYear(FilterByEntity(view, "Wonderland"), 2021)
	require.Equal(t, 1, nested.Len())
	assert.Equal(t, 7.5, nested.Measure(0, schema.ColLifeLadder))
}

func TestFilters_State(t *testing.T) {
	var f Filters
	assert.True(t, f.IsEmpty())
	assert.False(t, f.HasFilter(DimYear))

	f = Filters{Dimensions: map[string][]string{DimYear: {"2020"}, DimRegion: nil}}
	assert.False(t, f.IsEmpty())
	assert.True(t, f.HasFilter(DimYear))
	assert.False(t, f.HasFilter(DimRegion))
}

// ============================================================================
// DISTINCT VALUES & FORMATTING
// ============================================================================

func TestDistinctValues(t *testing.T) {
	view := sampleView()
	assert.Equal(t, []int{2019, 2020, 2021}, Years(view))
	assert.Equal(t, []string{"Atlantis", "Elbonia", "Freedonia", "Wonderland"}, Entities(view))
	assert.Equal(t, []string{"Fictiona", "Muddy Lands", table.UnknownRegion}, Regions(view))
	assert.Equal(t, []string{"Wonderland", "Elbonia", "Freedonia", "Atlantis"}, UniqueValues(view, DimEntity))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "7.125", FormatFloat(7.1249999, 3))
	assert.Equal(t, "7", FormatFloat(7.0, 0))
	assert.Equal(t, "", FormatFloat(math.NaN(), 3))
	assert.Equal(t, "Region", LabelForDimension(DimRegion))
	assert.Equal(t, "", LabelForDimension(""))
}

// ============================================================================
// DOMAIN ADAPTER
// ============================================================================

type observation struct {
	Country string
	Score   float64
}

func TestDomainAdapter(t *testing.T) {
	adapter := NewDomainAdapter[observation]().
		Dimension("country", func(o observation) string { return o.Country }).
		Measure("score", func(o observation) float64 { return o.Score }).
		Measure("score", func(o observation) float64 { return o.Score * 2 }) // re-registering replaces

	view := adapter.Bind([]observation{{"A", 1}, {"B", 2}})
	assert.Equal(t, []string{"country"}, view.DimensionKeys())
	assert.Equal(t, []string{"score"}, view.MeasureKeys())
	assert.Equal(t, 4.0, view.Measure(1, "score"))
	assert.Equal(t, 3.0, MeanMeasure(view, "score"))
}
