package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raykavin/candleline/pkg/annotation"
	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
)

// legacyStore is a line storage that still holds pixel anchored records
type legacyStore interface {
	LegacyLines(ctx context.Context, code, period string) ([]*core.LegacyPixelLine, error)
	ReplaceLegacy(ctx context.Context, id int64, line *core.TrendLine) error
}

func buildMigrateCmd() *cobra.Command {
	var (
		code, period, anchor string
		dryRun               bool
	)

	migrateCmd := &cobra.Command{
		Use:   "migrate-legacy",
		Short: "Re-anchor pixel anchored trend lines in price and time",
		Long: "Pixel anchored lines are skipped by every chart. This command maps them onto the bars\n" +
			"of the chart they were drawn on, at the configured chart size, and stores them in place.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(func(store core.LineStorage) error {
				legacy, ok := store.(legacyStore)
				if !ok {
					return fmt.Errorf("storage driver %q holds no legacy lines", cfg.Storage.Driver)
				}
				return runMigrate(cmd.Context(), legacy, code, period, anchor, dryRun)
			})
		},
	}

	migrateCmd.Flags().StringVarP(&code, "code", "s", "", "Code (e.g. SH600519)")
	migrateCmd.Flags().StringVarP(&period, "period", "t", "1d", "Period (e.g. 1d)")
	migrateCmd.Flags().StringVarP(&anchor, "anchor", "a", "", "Last bar date the lines were drawn against, latest when empty")
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the migrated lines without storing them")
	_ = migrateCmd.MarkFlagRequired("code")

	return migrateCmd
}

func runMigrate(ctx context.Context, store legacyStore, code, period, anchor string, dryRun bool) error {
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	records, err := store.LegacyLines(ctx, code, period)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no legacy lines for", code, period)
		return nil
	}

	source, err := openSource(cfg.Source, log)
	if err != nil {
		return err
	}

	end, err := parseDate(anchor)
	if err != nil {
		return err
	}

	settings := cfg.ChartSettings()
	vp := core.NewViewport(cfg.Chart.Width, cfg.Chart.Height, settings)

	bars, err := fetchBars(ctx, source, code, period, end, settings.Limit)
	if err != nil {
		return err
	}

	frame, err := chart.NewFrame(core.LastBars(bars, vp.BarCount), vp, settings)
	if err != nil {
		return err
	}

	var errs []error
	migrated := make([]*core.TrendLine, 0, len(records))
	for _, record := range records {
		line, err := annotation.Migrate(frame, record)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if !dryRun {
			if err := store.ReplaceLegacy(ctx, record.ID, line); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		line.ID = record.ID
		migrated = append(migrated, line)
	}

	printLines(migrated)
	log.Infof("migrated %d of %d legacy lines", len(migrated), len(records))
	return errors.Join(errs...)
}
