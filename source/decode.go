package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/spektr-org/ladder/schema"
	"github.com/spektr-org/ladder/table"
)

// ============================================================================
// DECODE — Raw rows → validated table.Frame against a schema.Layout
// ============================================================================
// 1. Every required layout column must be in the header (SchemaMismatch)
// 2. Declared columns are kept in header order; undeclared ones are skipped
// 3. Each row is validated: non-empty entity, integer year within bounds,
//    numeric or missing metric cells (MalformedRow)
// ============================================================================

type binding struct {
	spec  schema.ColumnSpec
	index int
}

func decode(ctx context.Context, raw *rawTable, layout schema.Layout, path string, cfg *config) (*table.Frame, error) {
	present := make(map[string]int, len(raw.header))
	for i, h := range raw.header {
		if _, dup := present[h]; !dup {
			present[h] = i
		}
	}

	for _, name := range layout.Required() {
		if _, ok := present[name]; ok {
			continue
		}
		e := &table.Error{
			Kind:   table.KindSchemaMismatch,
			Source: layout.Name,
			Path:   path,
			Column: name,
			Detail: "required column not found",
		}
		if near := schema.Suggest(name, raw.header); len(near) > 0 {
			e.Detail += fmt.Sprintf(" (did you mean %q?)", near[0])
		}
		return nil, e
	}

	var bindings []binding
	var columns []string
	for i, h := range raw.header {
		spec, ok := layout.Lookup(h)
		if !ok || present[h] != i {
			continue
		}
		bindings = append(bindings, binding{spec: spec, index: i})
		columns = append(columns, h)
	}

	records := make([]table.Record, 0, len(raw.rows))
	skipped := raw.skipped
	for n, row := range raw.rows {
		if n%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := decodeRow(row, raw.lines[n], len(raw.header), bindings, cfg)
		if err != nil {
			err.Source = layout.Name
			err.Path = path
			if cfg.skipMalformed {
				skipped++
				cfg.logger.Warn("skipping malformed row",
					zap.String("source", layout.Name),
					zap.Int("line", err.Line),
					zap.String("column", err.Column),
					zap.String("detail", err.Detail))
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}

	meta := table.Meta{Name: layout.Name, Path: path, Skipped: skipped}
	return table.NewFrame(meta, columns, records), nil
}

func decodeRow(row []string, line, width int, bindings []binding, cfg *config) (table.Record, *table.Error) {
	malformed := func(column, detail string) *table.Error {
		return &table.Error{Kind: table.KindMalformedRow, Line: line, Column: column, Detail: detail}
	}

	if len(row) != width {
		return table.Record{}, malformed("", fmt.Sprintf("row has %d fields, header has %d", len(row), width))
	}

	rec := table.Record{Line: line, Cells: make(map[string]table.Value, len(bindings))}
	for _, b := range bindings {
		cell := strings.TrimSpace(row[b.index])
		name := b.spec.Name

		switch b.spec.Role {
		case schema.RoleEntity:
			rec.Entity = NormalizeEntity(cell)
			if rec.Entity == "" {
				return table.Record{}, malformed(name, "empty entity name")
			}

		case schema.RoleYear:
			year, err := strconv.Atoi(cell)
			if err != nil {
				return table.Record{}, malformed(name, fmt.Sprintf("year %q is not an integer", cell))
			}
			if year < cfg.minYear || year > cfg.maxYear {
				return table.Record{}, malformed(name, fmt.Sprintf("year %d outside %d-%d", year, cfg.minYear, cfg.maxYear))
			}
			rec.Year = year

		case schema.RoleRegion:
			rec.Region = strings.Join(strings.Fields(cell), " ")

		case schema.RoleMetric:
			v, err := table.ParseValue(cell)
			if err != nil {
				return table.Record{}, malformed(name, err.Error())
			}
			rec.Cells[name] = v
		}
	}
	return rec, nil
}

// NormalizeEntity trims, collapses inner whitespace and applies Unicode NFC
// so that "Côte d'Ivoire" matches across files with different encodings.
func NormalizeEntity(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
