package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/quantbot/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or write a default configuration",
	Long: `Show the default configuration as YAML, or write it to a file to
use as a starting point.

Example:
  quantbot config --write configs/sim.yaml`,
	RunE: runConfig,
}

var configWritePath string

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&configWritePath, "write", "", "write the default config to this path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := config.Default()

	if configWritePath != "" {
		if err := cfg.SaveToFile(configWritePath); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", configWritePath)
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
