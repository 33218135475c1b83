package engine

import (
	"math"
	"strconv"

	"github.com/spektr-org/ladder/schema"
	"github.com/spektr-org/ladder/table"
)

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns the merged table. It reads through this interface.
//
// Implementations:
//   DomainView[T]   reads typed structs via accessor functions (zero-copy)
//   SubView         filtered subset (indices into parent, zero-copy)
//
// Bind(merged) is the usual entry point. Missing measures read as NaN.
// ============================================================================

// Dimension keys exposed by Bind.
const (
	DimEntity = schema.ColEntity
	DimYear   = schema.ColYear
	DimRegion = schema.ColRegion
)

// RecordView provides indexed access to a dataset.
// The engine calls Dimension/Measure in tight loops; keep implementations fast.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64 // NaN when missing
	DimensionKeys() []string               // available dimension keys
	MeasureKeys() []string                 // available measure keys
}

// ============================================================================
// MERGED TABLE BINDING
// ============================================================================

var rowAdapter = newRowAdapter()

func newRowAdapter() *DomainAdapter[table.Row] {
	a := NewDomainAdapter[table.Row]().
		Dimension(DimEntity, func(r table.Row) string { return r.Entity }).
		Dimension(DimYear, func(r table.Row) string { return strconv.Itoa(r.Year) }).
		Dimension(DimRegion, func(r table.Row) string { return r.Region }).
		Measure(schema.ColYear, func(r table.Row) float64 { return float64(r.Year) })
	for _, m := range table.Metrics() {
		m := m
		a.Measure(m.Column(), func(r table.Row) float64 { return r.Metrics[m].OrNaN() })
	}
	return a
}

// Bind exposes a merged table as a RecordView. Dimensions are entity, year
// and region; measures are year followed by the seven metrics, keyed by
// column name. The row slice is copied once at bind time; the view is
// read-only and safe for concurrent readers.
func Bind(m *table.Merged) RecordView {
	return rowAdapter.Bind(m.Rows())
}

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent, no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return math.NaN()
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[Observation]().
//	    Dimension("country", func(o Observation) string { return o.Country }).
//	    Measure("score", func(o Observation) float64 { return o.Score })
//
//	view := adapter.Bind(observations)
//	top := engine.TopN(view, 2021, "score", 10)
//
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	dimOrder []string
	mesOrder []string
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.mesOrder = append(a.mesOrder, key)
	}
	a.meas[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. Zero-copy: holds a reference.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:     data,
		dims:     a.dims,
		meas:     a.meas,
		dimKeys:  a.dimOrder,
		measKeys: a.mesOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
	dimKeys  []string
	measKeys []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return ""
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.data) {
		return math.NaN()
	}
	if fn, ok := v.meas[key]; ok {
		return fn(v.data[i])
	}
	return math.NaN()
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.measKeys }
