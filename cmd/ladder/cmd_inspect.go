package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/ladder/engine"
	"github.com/spektr-org/ladder/schema"
	"github.com/spektr-org/ladder/source"
)

func newInspectCmd(c *cli) *cobra.Command {
	var layoutName string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Profile a source's columns against the panel or snapshot layout",
		Long: `Reads a source without validating it and reports, per column, the
detected type, missing and unique counts, sample values and whether the
layout declares or requires it. Required columns absent from the header
are listed with close matches. Useful to diagnose schema mismatches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			opts := append(c.cfg.SourceOptions(), source.WithLogger(c.logger))
			header, rows, err := source.ReadRaw(cmd.Context(), path, opts...)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			layout, err := pickLayout(layoutName, header)
			if err != nil {
				return err
			}
			profile := schema.Profile(header, rows, layout)

			if c.cfg.Output.Format == "json" && c.outPath == "" {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			return c.emit(cmd, &engine.Result{
				Success:   true,
				Kind:      "inspect",
				Title:     fmt.Sprintf("%s (%s layout, %d rows)", path, profile.Layout, profile.Rows),
				Summary:   absentSummary(profile, header),
				TableData: profileTable(profile),
			})
		},
	}
	cmd.Flags().StringVarP(&layoutName, "layout", "l", "", "Layout to check against: panel or snapshot (default: guessed from header)")
	return cmd
}

// pickLayout honors an explicit name, otherwise guesses: a header carrying
// the regional indicator is a snapshot.
func pickLayout(name string, header []string) (schema.Layout, error) {
	switch strings.ToLower(name) {
	case "panel":
		return schema.PanelLayout(), nil
	case "snapshot":
		return schema.SnapshotLayout(), nil
	case "":
		for _, h := range header {
			if strings.TrimSpace(h) == schema.ColRegionalIndicator {
				return schema.SnapshotLayout(), nil
			}
		}
		return schema.PanelLayout(), nil
	}
	return schema.Layout{}, fmt.Errorf("unknown layout %q (want panel or snapshot)", name)
}

func profileTable(p schema.SourceProfile) *engine.TableData {
	td := &engine.TableData{
		Columns: []engine.Column{
			{Key: "column", Label: "Column", Type: "text", Align: "left"},
			{Key: "type", Label: "Type", Type: "text", Align: "left"},
			{Key: "missing", Label: "Missing", Type: "number", Align: "right"},
			{Key: "unique", Label: "Unique", Type: "number", Align: "right"},
			{Key: "layout", Label: "Layout", Type: "text", Align: "left"},
			{Key: "samples", Label: "Samples", Type: "text", Align: "left"},
		},
	}
	for _, col := range p.Columns {
		status := "ignored"
		switch {
		case col.Required:
			status = "required"
		case col.Declared:
			status = "optional"
		}
		td.Rows = append(td.Rows, []string{
			col.Name,
			col.Kind.String(),
			strconv.Itoa(col.Missing),
			strconv.Itoa(col.Unique),
			status,
			strings.Join(col.Samples, "; "),
		})
	}
	return td
}

func absentSummary(p schema.SourceProfile, header []string) string {
	if len(p.Absent) == 0 {
		return "all required columns present"
	}
	parts := make([]string, 0, len(p.Absent))
	for _, name := range p.Absent {
		part := fmt.Sprintf("missing %q", name)
		if near := schema.Suggest(name, header); len(near) > 0 {
			part += fmt.Sprintf(" (did you mean %q?)", near[0])
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
