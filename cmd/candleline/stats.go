package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/metric"
)

func buildStatsCmd() *cobra.Command {
	var (
		code, period, anchor string
		limit, samples, bins int
		seed                 int64
	)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the bars of a chart window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}

			source, err := openSource(cfg.Source, log)
			if err != nil {
				return err
			}

			end, err := parseDate(anchor)
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = cfg.Chart.Limit
			}

			bars, err := fetchBars(cmd.Context(), source, code, period, end, limit)
			if err != nil {
				return err
			}
			if len(bars) == 0 {
				return fmt.Errorf("no bars for %s %s", code, period)
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			summary := metric.Summarize(bars, samples, rand.New(rand.NewSource(seed)))
			printSummary(code, period, summary)

			if len(summary.Returns) > 1 {
				fmt.Println("\nClose-to-close returns, percent")
				hist := histogram.Hist(bins, summary.Returns)
				return histogram.Fprint(os.Stdout, hist, histogram.Linear(10))
			}
			return nil
		},
	}

	statsCmd.Flags().StringVarP(&code, "code", "s", "", "Code (e.g. SH600519)")
	statsCmd.Flags().StringVarP(&period, "period", "t", "1d", "Period (e.g. 1d)")
	statsCmd.Flags().StringVarP(&anchor, "anchor", "a", "", "Last bar date, latest when empty")
	statsCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Bars in the window (default chart.limit)")
	statsCmd.Flags().IntVar(&samples, "samples", 1000, "Bootstrap samples of the mean return")
	statsCmd.Flags().IntVar(&bins, "bins", 15, "Histogram bins")
	statsCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed, time based when zero")
	_ = statsCmd.MarkFlagRequired("code")

	return statsCmd
}

func printSummary(code, period string, s metric.Summary) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	table.AppendBulk([][]string{
		{"Chart", code + " " + period},
		{"Bars", fmt.Sprint(s.Bars)},
		{"First close", chart.FormatPrice(s.First)},
		{"Last close", chart.FormatPrice(s.Last)},
		{"Change", chart.FormatPercent(s.Change)},
		{"High", chart.FormatPrice(s.High)},
		{"Low", chart.FormatPrice(s.Low)},
		{"Mean return", chart.FormatPercent(s.MeanReturn)},
		{"Std dev", chart.FormatPercent(s.StdDev)},
		{"Max drawdown", chart.FormatPercent(s.MaxDrawdown)},
		{"Mean return 95% CI", fmt.Sprintf("%s .. %s",
			chart.FormatPercent(s.Interval.Lower), chart.FormatPercent(s.Interval.Upper))},
	})

	table.Render()
}
