package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/energylp/config"
	"github.com/kilianp07/energylp/core/assets"
	"github.com/kilianp07/energylp/core/metrics"
	"github.com/kilianp07/energylp/core/objective"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario without solving it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.Scenario(); err != nil {
			return err
		}
		if _, err := assets.NewAll(cfg.Assets); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d assets over %d intervals of %d minutes\n",
			cfgPath, len(cfg.Assets), cfg.Data.Series.Len(), cfg.FreqMins)
		return err
	},
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the asset types, objectives and metrics sinks",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "assets: %s\nobjectives: %s\nsinks: %s\n",
			strings.Join(assets.Types(), ", "), strings.Join(objective.Names(), ", "),
			strings.Join(metrics.SinkTypes(), ", "))
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, typesCmd)
}
