package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spektr-org/ladder/table"
)

// ============================================================================
// RAW READERS — Header + string cells from delimited files and workbooks
// ============================================================================
// Format is picked by extension:
//   .xlsx / .xlsm  → excelize, first sheet unless WithSheet
//   .tsv           → tab-delimited
//   anything else  → comma-delimited (or WithDelimiter)
// ============================================================================

// rawTable keeps the source line of every row for error messages.
type rawTable struct {
	header  []string
	rows    [][]string
	lines   []int
	skipped int
}

// ReadRaw returns the header and unvalidated rows of a source.
func ReadRaw(ctx context.Context, path string, opts ...Option) ([]string, [][]string, error) {
	cfg := applyOptions(opts)
	raw, err := readRaw(ctx, path, cfg)
	if err != nil {
		return nil, nil, err
	}
	return raw.header, raw.rows, nil
}

func readRaw(ctx context.Context, path string, cfg *config) (*rawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(ctx, path, cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	comma := cfg.delimiter
	if comma == 0 {
		comma = ','
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			comma = '\t'
		}
	}
	return readDelimited(ctx, f, comma, cfg)
}

func readDelimited(ctx context.Context, r io.Reader, comma rune, cfg *config) (*rawTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // width is checked per row with the line number
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	header = cleanHeader(header)

	raw := &rawTable{header: header}
	for n := 0; ; n++ {
		if n%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			if cfg.skipMalformed {
				raw.skipped++
				cfg.logger.Warn("skipping unparsable row", zap.Int("line", pe.Line), zap.Error(pe.Err))
				continue
			}
			return nil, &table.Error{Kind: table.KindMalformedRow, Line: pe.Line, Err: pe.Err}
		}

		line, _ := reader.FieldPos(0)
		raw.rows = append(raw.rows, row)
		raw.lines = append(raw.lines, line)
	}
	return raw, nil
}

func readWorkbook(ctx context.Context, path string, cfg *config) (*rawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := cfg.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	raw := &rawTable{header: cleanHeader(rows[0])}
	for i, row := range rows[1:] {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if blank(row) {
			continue
		}
		// GetRows drops trailing empty cells.
		for len(row) < len(raw.header) {
			row = append(row, "")
		}
		raw.rows = append(raw.rows, row)
		raw.lines = append(raw.lines, i+2)
	}
	return raw, nil
}

// cleanHeader trims cells and strips a UTF-8 byte order mark.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
