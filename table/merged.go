package table

import (
	"sort"

	"github.com/spektr-org/ladder/schema"
)

// UnknownRegion marks rows whose entity had no region in the snapshot.
const UnknownRegion = "Unknown"

// Key identifies one merged row.
type Key struct {
	Entity string
	Year   int
}

// Row is one (entity, year) observation of the merged table.
type Row struct {
	Entity  string
	Year    int
	Region  string
	Metrics [MetricCount]Value
}

// Key returns the (entity, year) identity of the row.
func (r Row) Key() Key { return Key{Entity: r.Entity, Year: r.Year} }

// Metric returns one metric value.
func (r Row) Metric(m Metric) Value {
	if m < 0 || m >= MetricCount {
		return Missing
	}
	return r.Metrics[m]
}

// Merged is the reconciled long-format table. It is read-only after
// construction and safe for concurrent readers.
type Merged struct {
	rows  []Row
	index map[Key]int
}

// NewMerged takes ownership of rows. Keys are expected to be unique; on a
// repeated key the index points at the first occurrence.
func NewMerged(rows []Row) *Merged {
	index := make(map[Key]int, len(rows))
	for i, r := range rows {
		if _, ok := index[r.Key()]; !ok {
			index[r.Key()] = i
		}
	}
	return &Merged{rows: rows, index: index}
}

// Columns is always schema.MergedColumns().
func (m *Merged) Columns() []string { return schema.MergedColumns() }

func (m *Merged) Len() int { return len(m.rows) }

// Row returns row i by value.
func (m *Merged) Row(i int) Row { return m.rows[i] }

// Rows returns a copy of every row.
func (m *Merged) Rows() []Row {
	out := make([]Row, len(m.rows))
	copy(out, m.rows)
	return out
}

// Lookup finds the row for (entity, year).
func (m *Merged) Lookup(entity string, year int) (Row, bool) {
	i, ok := m.index[Key{Entity: entity, Year: year}]
	if !ok {
		return Row{}, false
	}
	return m.rows[i], true
}

// Years returns the distinct years, ascending.
func (m *Merged) Years() []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range m.rows {
		if !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}

// Entities returns the distinct entity names, sorted.
func (m *Merged) Entities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range m.rows {
		if !seen[r.Entity] {
			seen[r.Entity] = true
			out = append(out, r.Entity)
		}
	}
	sort.Strings(out)
	return out
}
