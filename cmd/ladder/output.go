package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spektr-org/ladder/engine"
)

// ============================================================================
// OUTPUT — Terminal table, CSV, JSON or xlsx
// ============================================================================

// emit writes result to --out or stdout in the configured format. An .xlsx
// --out path always writes a workbook.
func (c *cli) emit(cmd *cobra.Command, result *engine.Result) error {
	if c.outPath == "" {
		return writeResult(cmd.OutOrStdout(), result, c.cfg.Output.Format)
	}

	if strings.EqualFold(filepath.Ext(c.outPath), ".xlsx") {
		if err := writeWorkbook(c.outPath, result); err != nil {
			return err
		}
	} else {
		f, err := os.Create(c.outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		if err := writeResult(f, result, c.cfg.Output.Format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}
	c.logger.Info("output written", zap.String("path", c.outPath), zap.String("kind", result.Kind))
	return nil
}

func writeResult(w io.Writer, result *engine.Result, format string) error {
	switch format {
	case "json":
		return writeJSON(w, result)
	case "csv":
		return writeCSV(w, result.TableData)
	default:
		return writeTable(w, result)
	}
}

// writeTable renders a bordered terminal table with the title above and the
// summary below.
func writeTable(w io.Writer, result *engine.Result) error {
	td := result.TableData
	if result.Title != "" {
		fmt.Fprintln(w, result.Title)
	}
	if td == nil || len(td.Rows) == 0 {
		fmt.Fprintln(w, "No rows.")
	} else {
		table := tablewriter.NewWriter(w)
		table.SetHeader(td.Headers())
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetColumnAlignment(alignments(td.Columns))
		table.AppendBulk(td.Rows)
		table.Render()
	}
	if result.Summary != "" {
		fmt.Fprintln(w, result.Summary)
	}
	return nil
}

func alignments(columns []engine.Column) []int {
	out := make([]int, len(columns))
	for i, c := range columns {
		switch c.Align {
		case "right":
			out[i] = tablewriter.ALIGN_RIGHT
		case "center":
			out[i] = tablewriter.ALIGN_CENTER
		default:
			out[i] = tablewriter.ALIGN_LEFT
		}
	}
	return out
}

// writeCSV emits header + rows, ready for Sheets/Excel.
func writeCSV(w io.Writer, td *engine.TableData) error {
	cw := csv.NewWriter(w)
	if td != nil && len(td.Columns) > 0 {
		if err := cw.Write(td.Headers()); err != nil {
			return err
		}
		if err := cw.WriteAll(td.Rows); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	return nil
}

// writeWorkbook saves the table as a single-sheet workbook. Numeric columns
// are written as numbers.
func writeWorkbook(path string, result *engine.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	td := result.TableData
	if td != nil && len(td.Columns) > 0 {
		header := make([]interface{}, len(td.Columns))
		for i, h := range td.Headers() {
			header[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		for r, row := range td.Rows {
			cells := make([]interface{}, len(row))
			for i, v := range row {
				cells[i] = workbookCell(td.Columns[i], v)
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func workbookCell(col engine.Column, v string) interface{} {
	if col.Type != "number" || v == "" {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return f
}
