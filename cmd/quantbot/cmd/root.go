package cmd

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quantbot",
	Short: "SMA/EMA crossover paper-trading bot",
	Long: `Quantbot evaluates SMA/EMA crossover signals on a watch list of
stock symbols and turns them into sized paper-trading orders.

It provides tools for:
  - Running the signal & execution engine on a poll interval
  - Trading against a local simulator or the Alpaca paper API
  - Journaling every attempted trade to SQLite or CSV
  - Inspecting the recorded trade history`,
}

var logLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
}

func newLogger() zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
}
