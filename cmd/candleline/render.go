package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raykavin/candleline"
)

func buildRenderCmd() *cobra.Command {
	var (
		code, period, output, anchor string
		width, height                float64
		intraday                     bool
	)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a chart with its trend lines to SVG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if width <= 0 {
				width = cfg.Chart.Width
			}
			if height <= 0 {
				height = cfg.Chart.Height
			}
			if intraday {
				return runRenderMinutes(cmd.Context(), code, anchor, output, width, height)
			}
			return runRender(cmd.Context(), code, period, anchor, output, width, height)
		},
	}

	renderCmd.Flags().StringVarP(&code, "code", "s", "", "Code (e.g. SH600519)")
	renderCmd.Flags().StringVarP(&period, "period", "t", "1d", "Period (e.g. 1d, week, 60m)")
	renderCmd.Flags().StringVarP(&anchor, "anchor", "a", "", "Last bar date (e.g. 2024-03-01), latest when empty")
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "Output file, stdout when empty")
	renderCmd.Flags().Float64Var(&width, "width", 0, "Chart width (default chart.width)")
	renderCmd.Flags().Float64Var(&height, "height", 0, "Price pane height (default chart.height)")
	renderCmd.Flags().BoolVar(&intraday, "intraday", false, "Render the one minute chart of the last trading day")
	_ = renderCmd.MarkFlagRequired("code")

	return renderCmd
}

func runRender(ctx context.Context, code, period, anchor, output string, width, height float64) error {
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	store, closer, err := openStorage(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	source, err := openSource(cfg.Source, log)
	if err != nil {
		return err
	}

	at, err := parseDate(anchor)
	if err != nil {
		return err
	}

	options := append(chartOptions(cfg, store, log), candleline.WithViewport(width, height))
	if !at.IsZero() {
		options = append(options, candleline.WithAnchor(at))
	}

	c, err := candleline.NewChart(code, period, source, options...)
	if err != nil {
		return err
	}

	if err := c.Start(ctx); err != nil {
		return err
	}
	c.Stop()

	if len(c.Bars()) == 0 {
		return fmt.Errorf("no bars for %s %s", code, period)
	}

	svg, err := c.SVG(ctx)
	if err != nil {
		return err
	}
	return writeSVG(output, svg)
}

func runRenderMinutes(ctx context.Context, code, anchor, output string, width, height float64) error {
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	source, err := openSource(cfg.Source, log)
	if err != nil {
		return err
	}

	at, err := parseDate(anchor)
	if err != nil {
		return err
	}
	if !at.IsZero() {
		at = at.Add(24*time.Hour - time.Millisecond)
	}

	points, err := candleline.LoadMinutes(ctx, source, code, at)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no minute bars for %s", code)
	}

	view := candleline.NewMinuteView(width, height, code, points)
	return writeSVG(output, candleline.RenderMinuteSVG(view))
}

func writeSVG(output string, svg []byte) error {
	if output == "" {
		_, err := os.Stdout.Write(svg)
		return err
	}
	return os.WriteFile(output, svg, 0o644)
}
