package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/ladder/engine"
	"github.com/spektr-org/ladder/pipeline"
)

func newMergeCmd(c *cli) *cobra.Command {
	var reportOnly bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Build the merged table and print it",
		Long: `Loads both sources, reconciles them and prints the merged table:
Country name, year, the seven metrics and region, one row per
(country, year). A run report goes to stderr (or into the JSON output).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, report, err := c.build(cmd.Context())
			if err != nil {
				return err
			}

			if reportOnly {
				return writeReport(cmd.OutOrStdout(), report)
			}

			result, err := engine.Execute(engine.Query{Kind: engine.KindRows, Title: "Merged table"},
				engine.Bind(merged), c.engineOptions()...)
			if err != nil {
				return err
			}

			if c.cfg.Output.Format == "json" && c.outPath == "" {
				return writeJSON(cmd.OutOrStdout(), struct {
					Report *pipeline.Report `json:"report"`
					Result *engine.Result   `json:"result"`
				}{report, result})
			}
			if err := c.emit(cmd, result); err != nil {
				return err
			}
			return writeReport(cmd.ErrOrStderr(), report)
		},
	}
	cmd.Flags().BoolVar(&reportOnly, "report", false, "Print only the run report")
	return cmd
}

func writeReport(w io.Writer, r *pipeline.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "panel rows:          %d\n", r.PanelRows)
	fmt.Fprintf(&b, "snapshot rows:       %d\n", r.SnapshotRows)
	fmt.Fprintf(&b, "retained panel rows: %d\n", r.RetainedPanelRows)
	fmt.Fprintf(&b, "merged rows:         %d\n", r.MergedRows)
	fmt.Fprintf(&b, "dropped duplicates:  %d\n", len(r.DroppedDuplicates))
	if len(r.Excluded) > 0 {
		fmt.Fprintf(&b, "excluded entities:   %s\n", strings.Join(r.Excluded, ", "))
	}
	if len(r.Unresolved) > 0 {
		fmt.Fprintf(&b, "unknown region:      %s\n", strings.Join(r.UnresolvedEntities(), ", "))
	}
	if len(r.RegionConflicts) > 0 {
		fmt.Fprintf(&b, "region conflicts:    %s\n", strings.Join(r.RegionConflicts, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
