package engine

import (
	"strconv"
	"strings"
)

// ============================================================================
// FILTERS — Generic Dimension-Based Filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL dimension constraints per record in one loop.
// Returns a SubView (index list into parent), zero data copy.
// ============================================================================

// ApplyFilters returns a view of records matching all dimension filters.
// Dimensions are AND-combined; values within a dimension are OR-combined.
// Matching is case-insensitive. Empty filter = no restriction (returns
// original view).
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	// Pre-build lowercase lookup sets for each dimension filter
	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toLowerSet(allowed)
		}
	}

	if len(sets) == 0 {
		return view
	}

	// Single pass: a record passes if it matches ALL dimension filters
	return Where(view, func(i int) bool {
		for dim, set := range sets {
			if !set[strings.ToLower(view.Dimension(i, dim))] {
				return false
			}
		}
		return true
	})
}

// FilterByYear keeps rows observed in year.
func FilterByYear(view RecordView, year int) RecordView {
	y := strconv.Itoa(year)
	return Where(view, func(i int) bool { return view.Dimension(i, DimYear) == y })
}

// FilterByEntity keeps rows of the named entities (case-insensitive).
func FilterByEntity(view RecordView, names ...string) RecordView {
	return ApplyFilters(view, Filters{Dimensions: map[string][]string{DimEntity: names}})
}

// FilterByRegion keeps rows of the named regions (case-insensitive).
func FilterByRegion(view RecordView, regions ...string) RecordView {
	return ApplyFilters(view, Filters{Dimensions: map[string][]string{DimRegion: regions}})
}

// Where keeps the rows for which keep returns true.
func Where(view RecordView, keep func(i int) bool) RecordView {
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
