package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spektr-org/ladder/engine"
	"github.com/spektr-org/ladder/source"
)

// ============================================================================
// QUERY COMMANDS — One subcommand per engine query kind
// ============================================================================

// queryFlags are shared by every query subcommand.
type queryFlags struct {
	metric  string
	year    int
	regions []string
}

func newQueryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a read-only query over the merged table",
	}

	cmd.AddCommand(
		newDescribeCmd(c),
		newCorrCmd(c),
		newRegionsCmd(c),
		newTopCmd(c),
		newSeriesCmd(c),
		newYearCmd(c),
		newEntityCmd(c),
		newScatterCmd(c),
	)
	return cmd
}

// run builds the merged table, executes q and prints the result.
func (c *cli) run(cmd *cobra.Command, q engine.Query) error {
	merged, _, err := c.build(cmd.Context())
	if err != nil {
		return err
	}
	result, err := engine.Execute(q, engine.Bind(merged), c.engineOptions()...)
	if err != nil {
		return err
	}
	return c.emit(cmd, result)
}

func (f *queryFlags) filters() engine.Filters {
	dims := map[string][]string{}
	if f.year != 0 {
		dims[engine.DimYear] = []string{strconv.Itoa(f.year)}
	}
	if len(f.regions) > 0 {
		dims[engine.DimRegion] = f.regions
	}
	return engine.Filters{Dimensions: dims}
}

func (f *queryFlags) bind(cmd *cobra.Command, withMetric bool) {
	if withMetric {
		cmd.Flags().StringVarP(&f.metric, "metric", "m", "", `Metric column or key, e.g. "Life Ladder" or log_gdp_per_capita`)
	}
	cmd.Flags().IntVarP(&f.year, "year", "y", 0, "Restrict to one year")
	cmd.Flags().StringSliceVarP(&f.regions, "region", "r", nil, "Restrict to regions (repeatable)")
}

func newDescribeCmd(c *cli) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Count, mean, std, min, quartiles and max of every metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, engine.Query{Kind: engine.KindDescribe, Filters: f.filters()})
		},
	}
	f.bind(cmd, false)
	return cmd
}

func newCorrCmd(c *cli) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "corr [metric...]",
		Short: "Pearson correlation matrix (every measure, year included, when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, engine.Query{Kind: engine.KindCorr, Metrics: args, Filters: f.filters()})
		},
	}
	f.bind(cmd, false)
	return cmd
}

func newRegionsCmd(c *cli) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Per-region min, quartiles and max of one metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, engine.Query{Kind: engine.KindRegions, Metric: f.metric, Filters: f.filters()})
		},
	}
	f.bind(cmd, true)
	return cmd
}

func newTopCmd(c *cli) *cobra.Command {
	f := &queryFlags{}
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Top-N entities by a metric in one year (latest year by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := engine.Query{Kind: engine.KindTop, Metric: f.metric, Year: f.year, Limit: limit}
			if len(f.regions) > 0 {
				q.Filters = engine.Filters{Dimensions: map[string][]string{engine.DimRegion: f.regions}}
			}
			return c.run(cmd, q)
		},
	}
	f.bind(cmd, true)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "How many entities (0: output.top_n, negative: all)")
	return cmd
}

func newSeriesCmd(c *cli) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "series <entity>",
		Short: "One entity's metric over time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, engine.Query{Kind: engine.KindSeries, Entity: source.NormalizeEntity(args[0]), Metric: f.metric})
		},
	}
	cmd.Flags().StringVarP(&f.metric, "metric", "m", "", "Metric column or key")
	return cmd
}

func newYearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "year <year>",
		Short: "Every merged row of one year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("year %q is not an integer", args[0])
			}
			return c.run(cmd, engine.Query{
				Kind:    engine.KindRows,
				Title:   fmt.Sprintf("Year %d", year),
				Filters: engine.Filters{Dimensions: map[string][]string{engine.DimYear: {strconv.Itoa(year)}}},
			})
		},
	}
}

func newEntityCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "entity <name>...",
		Short: "Every merged row of the named entities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, engine.Query{
				Kind:    engine.KindRows,
				Title:   "Entities",
				Filters: engine.Filters{Dimensions: map[string][]string{engine.DimEntity: entityArgs(args)}},
			})
		},
	}
}

// entityArgs spells command-line entity names the way the loader does.
func entityArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = source.NormalizeEntity(a)
	}
	return out
}

func newScatterCmd(c *cli) *cobra.Command {
	f := &queryFlags{}
	var x, y string
	cmd := &cobra.Command{
		Use:   "scatter",
		Short: "Pairs of two metrics with entity and region labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, engine.Query{Kind: engine.KindScatter, X: x, Y: y, Filters: f.filters()})
		},
	}
	f.bind(cmd, false)
	cmd.Flags().StringVar(&x, "x-metric", "Log GDP per capita", "Metric on the x axis")
	cmd.Flags().StringVar(&y, "y-metric", "Life Ladder", "Metric on the y axis")
	return cmd
}
