package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/ladder/config"
	"github.com/spektr-org/ladder/engine"
	"github.com/spektr-org/ladder/logging"
	"github.com/spektr-org/ladder/pipeline"
	"github.com/spektr-org/ladder/source"
	"github.com/spektr-org/ladder/table"
)

// ============================================================================
// LADDER CLI — Reconcile happiness datasets and query the merged table
// ============================================================================

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		printError(cmd.ErrOrStderr(), err)
		stop()
		os.Exit(1)
	}
}

// cli carries flag values and the state built in PersistentPreRunE.
type cli struct {
	configPath   string
	panelPath    string
	snapshotPath string
	snapshotYear int
	coverage     string
	format       string
	outPath      string
	verbose      bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "ladder",
		Short: "Reconcile the happiness panel and snapshot, then query the merged table",
		Long: `ladder loads a multi-year happiness panel and a single-year snapshot,
renames the snapshot onto panel naming, keeps the entities both cover,
backfills regions from the snapshot and merges everything into one
long-format table with one row per (country, year).

Query commands print terminal tables, CSV or JSON.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&c.panelPath, "panel", "", "Panel source (csv, tsv or xlsx)")
	flags.StringVar(&c.snapshotPath, "snapshot", "", "Snapshot source (csv, tsv or xlsx)")
	flags.IntVar(&c.snapshotYear, "snapshot-year", pipeline.DefaultSnapshotYear, "Year stamped on snapshot rows")
	flags.StringVar(&c.coverage, "coverage", string(pipeline.CoverageIntersect), "Panel coverage: intersect or panel")
	flags.StringVarP(&c.format, "format", "f", "table", "Output format: table, csv, json")
	flags.StringVarP(&c.outPath, "out", "o", "", "Write output to file instead of stdout (.xlsx writes a workbook)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newMergeCmd(c), newQueryCmd(c), newInspectCmd(c))
	return root
}

// setup layers flags over env over the config file, then builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("panel") {
		cfg.Sources.PanelPath = c.panelPath
	}
	if flags.Changed("snapshot") {
		cfg.Sources.SnapshotPath = c.snapshotPath
	}
	if flags.Changed("snapshot-year") {
		cfg.Merge.SnapshotYear = c.snapshotYear
	}
	if flags.Changed("coverage") {
		cfg.Merge.Coverage = c.coverage
	}
	if flags.Changed("format") {
		cfg.Output.Format = c.format
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, c.verbose)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

// build loads both sources and runs the reconciliation pipeline.
func (c *cli) build(ctx context.Context) (*table.Merged, *pipeline.Report, error) {
	if c.cfg.Sources.PanelPath == "" || c.cfg.Sources.SnapshotPath == "" {
		return nil, nil, errors.New("both --panel and --snapshot are required (or sources.panel_path / sources.snapshot_path)")
	}

	srcOpts := append(c.cfg.SourceOptions(), source.WithLogger(c.logger))
	panel, snapshot, err := source.LoadSources(ctx, c.cfg.Sources.PanelPath, c.cfg.Sources.SnapshotPath, srcOpts...)
	if err != nil {
		return nil, nil, err
	}

	pipeOpts := append(c.cfg.PipelineOptions(), pipeline.WithLogger(c.logger))
	return pipeline.BuildMergedTable(panel, snapshot, c.cfg.Merge.SnapshotYear, pipeOpts...)
}

func (c *cli) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithDefaultLimit(c.cfg.Output.TopN),
		engine.WithDecimals(c.cfg.Output.Decimals),
		engine.WithLogger(c.logger),
	}
}

// ============================================================================
// ERROR OUTPUT
// ============================================================================

func printError(w io.Writer, err error) {
	var te *table.Error
	if errors.As(err, &te) {
		fmt.Fprintf(w, "Error [%s]: %v\n", te.Kind, err)
		if te.Source != "" {
			fmt.Fprintf(w, "  source: %s\n", te.Source)
		}
		if te.Column != "" {
			fmt.Fprintf(w, "  column: %s\n", te.Column)
		}
		if te.Entity != "" {
			fmt.Fprintf(w, "  entity: %s\n", te.Entity)
		}
		if te.Line > 0 {
			fmt.Fprintf(w, "  line:   %d\n", te.Line)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
