// Command partscan evaluates part scripts and reports the machining
// features and manufacturability issues of every part they define.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chazu/partscan/pkg/config"
	"github.com/chazu/partscan/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "partscan",
	Short: "Manufacturability feature extraction for machined parts",
	Long: `partscan builds solids from part scripts and detects the holes and
pockets a machinist would have to cut, then flags design-for-manufacturing
issues such as deep blind holes or parts larger than the machine envelope.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logger, err = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
