package table

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/ladder/schema"
)

// ============================================================================
// VALUES
// ============================================================================

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    Value
		wantErr bool
	}{
		{"6.1", Float(6.1), false},
		{" -0.25 ", Float(-0.25), false},
		{"1e3", Float(1000), false},
		{"", Missing, false},
		{"NaN", Missing, false},
		{"NA", Missing, false},
		{"abc", Missing, true},
		{"1,5", Missing, true},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%q", tt.in)
			continue
		}
		require.NoError(t, err, "%q", tt.in)
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}

func TestValue(t *testing.T) {
	assert.Equal(t, Missing, Float(math.NaN()))
	assert.False(t, Value{}.Valid, "zero value is missing")
	assert.True(t, math.IsNaN(Missing.OrNaN()))
	assert.Equal(t, 2.5, Float(2.5).OrNaN())
	assert.Equal(t, "7.842", Float(7.842).String())
	assert.Equal(t, "", Missing.String())
}

// ============================================================================
// METRICS
// ============================================================================

func TestMetrics(t *testing.T) {
	require.Len(t, Metrics(), int(MetricCount))
	for i, m := range Metrics() {
		assert.Equal(t, schema.MetricColumns()[i], m.Column())
		back, ok := MetricByColumn(m.Column())
		assert.True(t, ok)
		assert.Equal(t, m, back)
	}
	_, ok := MetricByColumn(schema.ColLadderScore)
	assert.False(t, ok)
	assert.Equal(t, "", Metric(-1).Column())
	assert.Equal(t, "Generosity", Generosity.String())
}

// ============================================================================
// ERRORS
// ============================================================================

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{
			&Error{Kind: KindSchemaMismatch, Source: "snapshot", Path: "s.csv", Column: "Ladder score", Detail: "required column not found"},
			`snapshot (s.csv): schema mismatch: column "Ladder score": required column not found`,
		},
		{
			&Error{Kind: KindMalformedRow, Source: "panel", Line: 12, Column: "year", Detail: `year "x" is not an integer`},
			`panel: malformed row: line 12: column "year": year "x" is not an integer`,
		},
		{
			&Error{Kind: KindUnresolvedRegion, Entity: "Atlantis"},
			`unresolved region: entity "Atlantis"`,
		},
		{
			&Error{Kind: KindSourceUnavailable, Source: "panel", Err: fs.ErrNotExist},
			`panel: source unavailable: file does not exist`,
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestError_Matching(t *testing.T) {
	base := &Error{Kind: KindSourceUnavailable, Source: "panel", Err: fs.ErrNotExist}
	wrapped := fmt.Errorf("load: %w", base)

	assert.True(t, errors.Is(wrapped, ErrSourceUnavailable))
	assert.False(t, errors.Is(wrapped, ErrSchemaMismatch))
	assert.True(t, errors.Is(wrapped, fs.ErrNotExist), "unwraps to the cause")

	assert.Equal(t, KindSourceUnavailable, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))

	assert.True(t, IsFatal(wrapped))
	assert.True(t, IsFatal(errors.New("boom")))
	assert.False(t, IsFatal(&Error{Kind: KindUnresolvedRegion}))
	assert.False(t, IsFatal(nil))
}

// ============================================================================
// FRAMES
// ============================================================================

func TestFrame_ReadOnly(t *testing.T) {
	cols := []string{schema.ColEntity, schema.ColLifeLadder}
	f := NewFrame(Meta{Name: "panel"}, cols, []Record{
		{Entity: "Wonderland", Year: 2005, Cells: map[string]Value{schema.ColLifeLadder: Float(6)}},
		{Entity: "Elbonia", Year: 2005, Cells: map[string]Value{}},
		{Entity: "Wonderland", Year: 2006, Cells: map[string]Value{}},
	})

	r := f.Record(0)
	r.Cells[schema.ColLifeLadder] = Float(1)
	r.Entity = "changed"
	assert.Equal(t, Float(6), f.Record(0).Cell(schema.ColLifeLadder))
	assert.Equal(t, "Wonderland", f.Record(0).Entity)

	got := f.Columns()
	got[0] = "changed"
	assert.True(t, f.HasColumn(schema.ColEntity))

	for _, rec := range f.Records() {
		rec.Cells["x"] = Float(1)
	}
	assert.NotContains(t, f.Record(1).Cells, "x")

	assert.Equal(t, []string{"Wonderland", "Elbonia"}, f.Entities())
	assert.False(t, f.Record(1).Cell(schema.ColLifeLadder).Valid)
}

// ============================================================================
// MERGED
// ============================================================================

func TestMerged(t *testing.T) {
	var a, b, c Row
	a = Row{Entity: "Wonderland", Year: 2006, Region: "Fictiona"}
	a.Metrics[LifeLadder] = Float(6.2)
	b = Row{Entity: "Elbonia", Year: 2005, Region: "Muddy Lands"}
	c = Row{Entity: "Wonderland", Year: 2005, Region: "Fictiona"}

	m := NewMerged([]Row{a, b, c})
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, schema.MergedColumns(), m.Columns())
	assert.Equal(t, []int{2005, 2006}, m.Years())
	assert.Equal(t, []string{"Elbonia", "Wonderland"}, m.Entities())

	row, ok := m.Lookup("Wonderland", 2006)
	require.True(t, ok)
	assert.Equal(t, Float(6.2), row.Metric(LifeLadder))
	assert.Equal(t, Key{Entity: "Wonderland", Year: 2006}, row.Key())
	assert.Equal(t, Missing, row.Metric(MetricCount))

	_, ok = m.Lookup("Wonderland", 2021)
	assert.False(t, ok)

	rows := m.Rows()
	rows[0].Region = "changed"
	assert.Equal(t, "Fictiona", m.Row(0).Region)
}
