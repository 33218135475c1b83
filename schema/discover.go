package schema

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ============================================================================
// PROFILING — Heuristic column inspection for raw tabular sources
// ============================================================================
// Inspects a header plus raw rows and reports, per column:
//   1. Detected type (int, float, string) from 80%+ of non-missing values
//   2. Missing / unique counts and a few sorted sample values
//   3. Whether the column is declared by a layout, and whether it is required
//
// Used by `ladder inspect` and by the loader to suggest close header matches
// when a required column is absent.
// ============================================================================

// ColumnProfile describes one column of a raw source.
type ColumnProfile struct {
	Name     string   `json:"name"`
	Key      string   `json:"key"`
	Kind     Kind     `json:"kind"`
	Missing  int      `json:"missing"`
	Unique   int      `json:"unique"`
	Samples  []string `json:"samples"`
	Declared bool     `json:"declared"`
	Required bool     `json:"required"`
}

// SourceProfile is the profile of a whole raw source against a layout.
type SourceProfile struct {
	Layout  string          `json:"layout"`
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
	Absent  []string        `json:"absent,omitempty"` // required columns not in header
}

// Profile inspects header + rows. Every row is examined; sources here are
// small (thousands of rows).
func Profile(header []string, rows [][]string, layout Layout) SourceProfile {
	p := SourceProfile{
		Layout:  layout.Name,
		Rows:    len(rows),
		Columns: make([]ColumnProfile, len(header)),
	}

	present := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		present[h] = true
		p.Columns[i] = profileColumn(h, i, rows, layout)
	}

	for _, name := range layout.Required() {
		if !present[name] {
			p.Absent = append(p.Absent, name)
		}
	}
	return p
}

func profileColumn(header string, index int, rows [][]string, layout Layout) ColumnProfile {
	col := ColumnProfile{
		Name: header,
		Key:  toSnakeCase(header),
	}
	if spec, ok := layout.Lookup(header); ok {
		col.Declared = true
		col.Required = spec.Required
	}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)
	for _, row := range rows {
		if index >= len(row) {
			col.Missing++
			continue
		}
		val := strings.TrimSpace(row[index])
		if IsMissing(val) {
			col.Missing++
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
	}

	col.Unique = len(uniqueSet)
	col.Samples = collectSamples(uniqueSet, 5)
	col.Kind = detectType(values)
	return col
}

// IsMissing reports whether a raw cell denotes an absent value.
func IsMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NaN", "nan", "NA", "N/A", "n/a", "null", "NULL":
		return true
	}
	return false
}

// ============================================================================
// SUGGESTIONS
// ============================================================================

// Suggest returns header names that plausibly mean the missing column, best
// match first. Matching is on snake_case tokens: a candidate must share at
// least half of the longer name's tokens.
func Suggest(missing string, header []string) []string {
	want := tokens(missing)
	if len(want) == 0 {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}
	var found []scored
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h == missing {
			continue
		}
		have := tokens(h)
		if len(have) == 0 {
			continue
		}
		shared := 0
		for t := range want {
			if have[t] {
				shared++
			}
		}
		longest := len(want)
		if len(have) > longest {
			longest = len(have)
		}
		score := float64(shared) / float64(longest)
		if score >= 0.5 {
			found = append(found, scored{name: h, score: score})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].score > found[j].score })
	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.name
	}
	return out
}

func tokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Split(toSnakeCase(s), "_") {
		t = strings.Trim(t, ":+()")
		if t != "" {
			set[t] = true
		}
	}
	return set
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType requires 80%+ of non-missing values to match for int/float.
func detectType(values []string) Kind {
	if len(values) == 0 {
		return KindString
	}

	intCount := 0
	floatCount := 0
	for _, v := range values {
		if _, err := strconv.Atoi(v); err == nil {
			intCount++
			floatCount++
			continue
		}
		if isNumeric(v) {
			floatCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)
	if threshold == 0 {
		threshold = 1
	}
	if intCount >= threshold && intCount == floatCount {
		return KindInt
	}
	if floatCount >= threshold {
		return KindFloat
	}
	return KindString
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "") // "1,234.56"
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// Key returns the snake_case key of a column name, e.g. "Log GDP per capita"
// → "log_gdp_per_capita".
func Key(name string) string { return toSnakeCase(strings.TrimSpace(name)) }

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

// collectSamples picks up to maxSamples values, sorted for deterministic output.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
