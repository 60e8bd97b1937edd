package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raykavin/candleline/pkg/config"
)

const dateLayout = "2006-01-02"

// Persistent flags
var (
	configPath string
	cfg        *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "candleline",
		Short:   "Candlestick charts with trend line annotations",
		Version: "1.0.0",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(configPath)
			return err
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Configuration file")

	rootCmd.AddCommand(
		buildServeCmd(),
		buildRenderCmd(),
		buildLinesCmd(),
		buildDownloadCmd(),
		buildStatsCmd(),
		buildMigrateCmd(),
		buildInitCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.WriteDefault(configPath); err != nil {
				return err
			}
			fmt.Println("configuration written to", configPath)
			return nil
		},
	}
}
