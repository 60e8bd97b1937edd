package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raykavin/candleline/pkg/download"
)

func buildDownloadCmd() *cobra.Command {
	var (
		code, period, output string
		startDate, endDate   string
		days, precision      int
	)

	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download historical bars into a csv feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, err := buildDownloadOptions(days, startDate, endDate, precision)
			if err != nil {
				return err
			}

			log, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}

			source, err := openSource(cfg.Source, log)
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("%s-%s.csv", code, period)
			}

			return download.NewDownloader(source, log, os.Stderr).Download(
				cmd.Context(),
				code,
				period,
				output,
				options...,
			)
		},
	}

	downloadCmd.Flags().StringVarP(&code, "code", "s", "", "Code (e.g. BTCUSDT)")
	downloadCmd.Flags().StringVarP(&period, "period", "t", "1d", "Period (e.g. 1d, 60m)")
	downloadCmd.Flags().IntVarP(&days, "days", "d", 0, "Number of days to download (default 30 days)")
	downloadCmd.Flags().StringVar(&startDate, "start", "", "Start date (e.g. 2024-01-01)")
	downloadCmd.Flags().StringVar(&endDate, "end", "", "End date (e.g. 2024-03-31)")
	downloadCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default CODE-period.csv)")
	downloadCmd.Flags().IntVar(&precision, "precision", 0, "Decimals written (default 4)")
	_ = downloadCmd.MarkFlagRequired("code")

	return downloadCmd
}

func buildDownloadOptions(days int, startDate, endDate string, precision int) ([]download.Option, error) {
	var options []download.Option

	if days > 0 {
		options = append(options, download.WithDays(days))
	}

	if startDate != "" || endDate != "" {
		if startDate == "" || endDate == "" {
			return nil, fmt.Errorf("START and END dates must be provided together")
		}

		start, err := parseDate(startDate)
		if err != nil {
			return nil, err
		}

		end, err := parseDate(endDate)
		if err != nil {
			return nil, err
		}

		options = append(options, download.WithInterval(start, end))
	}

	if precision > 0 {
		options = append(options, download.WithPrecision(precision))
	}

	return options, nil
}
