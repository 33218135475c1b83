package table

// ============================================================================
// FRAME — Source-shaped table used while reconciling the two sources
// ============================================================================
// Identity fields (entity, year, raw region) are typed; numeric cells are
// keyed by column name so that renaming and column dropping stay explicit.
// A Frame is never modified after construction: each pipeline stage reads
// one Frame and builds a new one.
// ============================================================================

// Record is one source row.
type Record struct {
	Entity string
	Year   int    // 0 until stamped, for sources without a year column
	Region string // raw regional indicator, snapshot only
	Cells  map[string]Value
	Line   int // 1-based source line, 0 when not read from a file
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	cells := make(map[string]Value, len(r.Cells))
	for k, v := range r.Cells {
		cells[k] = v
	}
	r.Cells = cells
	return r
}

// Cell returns the value of a numeric column, Missing when absent.
func (r Record) Cell(column string) Value {
	return r.Cells[column]
}

// Meta identifies where a frame came from.
type Meta struct {
	Name    string // "panel" or "snapshot"
	Path    string // empty for derived frames
	Skipped int    // malformed rows skipped in lenient mode
}

// Frame is an ordered, read-only sequence of records with ordered columns.
type Frame struct {
	meta    Meta
	columns []string
	records []Record
}

// NewFrame takes ownership of columns and records; callers must not modify
// them afterwards.
func NewFrame(meta Meta, columns []string, records []Record) *Frame {
	return &Frame{meta: meta, columns: columns, records: records}
}

func (f *Frame) Meta() Meta   { return f.meta }
func (f *Frame) Name() string { return f.meta.Name }
func (f *Frame) Len() int     { return len(f.records) }

// Columns returns a copy of the column list.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// HasColumn reports whether the frame carries the column.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Record returns a copy of row i.
func (f *Frame) Record(i int) Record {
	return f.records[i].Clone()
}

// Records returns copies of every row, in order.
func (f *Frame) Records() []Record {
	out := make([]Record, len(f.records))
	for i, r := range f.records {
		out[i] = r.Clone()
	}
	return out
}

// Entities returns distinct entity names in first-seen order.
func (f *Frame) Entities() []string {
	seen := make(map[string]bool, len(f.records))
	var out []string
	for _, r := range f.records {
		if !seen[r.Entity] {
			seen[r.Entity] = true
			out = append(out, r.Entity)
		}
	}
	return out
}
