package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
)

func buildLinesCmd() *cobra.Command {
	var code, period string

	linesCmd := &cobra.Command{
		Use:   "lines",
		Short: "Manage stored trend lines",
	}
	linesCmd.PersistentFlags().StringVarP(&code, "code", "s", "", "Code (e.g. SH600519)")
	linesCmd.PersistentFlags().StringVarP(&period, "period", "t", "1d", "Period (e.g. 1d)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the trend lines of a chart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(func(store core.LineStorage) error {
				lines, err := store.Lines(cmd.Context(), code, period)
				if err != nil {
					return err
				}
				printLines(lines)
				return nil
			})
		},
	}
	_ = listCmd.MarkFlagRequired("code")

	var (
		price                float64
		startDate, endDate   string
		startPrice, endPrice float64
	)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a horizontal line (--price) or a segment (--start/--end dates and prices)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := lineFromFlags(cmd, code, period, price, startDate, startPrice, endDate, endPrice)
			if err != nil {
				return err
			}

			return withStorage(func(store core.LineStorage) error {
				if err := store.SaveLines(cmd.Context(), []*core.TrendLine{line}); err != nil {
					return err
				}
				fmt.Println("saved", line)
				return nil
			})
		},
	}
	addCmd.Flags().Float64Var(&price, "price", 0, "Price of a horizontal line")
	addCmd.Flags().StringVar(&startDate, "start", "", "Segment start date")
	addCmd.Flags().Float64Var(&startPrice, "start-price", 0, "Segment start price")
	addCmd.Flags().StringVar(&endDate, "end", "", "Segment end date")
	addCmd.Flags().Float64Var(&endPrice, "end-price", 0, "Segment end price")
	_ = addCmd.MarkFlagRequired("code")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a trend line by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}

			return withStorage(func(store core.LineStorage) error {
				if err := store.DeleteLine(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Println("deleted", id)
				return nil
			})
		},
	}

	linesCmd.AddCommand(listCmd, addCmd, deleteCmd)
	return linesCmd
}

func withStorage(fn func(core.LineStorage) error) error {
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	store, closer, err := openStorage(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	return fn(store)
}

func lineFromFlags(cmd *cobra.Command, code, period string, price float64,
	startDate string, startPrice float64, endDate string, endPrice float64) (*core.TrendLine, error) {

	if cmd.Flags().Changed("price") {
		return core.NewHorizontal(code, period, price), nil
	}

	start, err := parseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return nil, err
	}

	line := core.NewSegment(code, period, start.UnixMilli(), startPrice, end.UnixMilli(), endPrice)
	if err := line.Validate(); err != nil {
		return nil, err
	}
	return line, nil
}

func printLines(lines []*core.TrendLine) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Code", "Period", "Kind", "Start", "Start Price", "End", "End Price"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, line := range lines {
		row := []string{strconv.FormatInt(line.ID, 10), line.Code, line.Period, string(line.Kind)}
		if line.Kind == core.LineHorizontal {
			row = append(row, "-", chart.FormatPrice(line.Price), "-", chart.FormatPrice(line.Price))
		} else {
			row = append(row,
				chart.FormatBarTime(time.UnixMilli(line.StartTime)), chart.FormatPrice(line.StartPrice),
				chart.FormatBarTime(time.UnixMilli(line.EndTime)), chart.FormatPrice(line.EndPrice))
		}
		table.Append(row)
	}

	table.SetFooter([]string{"", "", "", "", "", "", "TOTAL", strconv.Itoa(len(lines))})
	table.Render()
}
