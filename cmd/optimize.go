package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/energylp/app"
	"github.com/kilianp07/energylp/config"
	"github.com/kilianp07/energylp/core/assets"
	"github.com/kilianp07/energylp/pkg/export"
)

var (
	outPath   string
	outFormat string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Solve a scenario and write the result table",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	optimizeCmd.Flags().StringVar(&outFormat, "format", "", "output format: csv or json")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if outPath != "" {
		cfg.Output.Path = outPath
	}
	if outFormat != "" {
		cfg.Output.Format = outFormat
		if err := cfg.Output.Validate(); err != nil {
			return err
		}
	}
	return optimize(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// optimize solves the scenario of cfg once and writes the result to the
// configured output or stdout.
func optimize(cfg *config.Config, stdout, stderr io.Writer) error {
	if err := cfg.Scenario(); err != nil {
		return err
	}
	log := newLogger("optimizer", cfg.Logging, stderr)

	as, err := assets.NewAll(cfg.Assets)
	if err != nil {
		return err
	}
	runner, err := app.NewRunner(cfg, log)
	if err != nil {
		return err
	}
	defer runner.Close()
	res, err := runner.Optimize(as, cfg.Data.Series)
	if err != nil {
		return err
	}

	out := stdout
	if cfg.Output.Path != "" {
		file, err := os.Create(cfg.Output.Path)
		if err != nil {
			return err
		}
		defer func() {
			if err := file.Close(); err != nil {
				log.Errorf("close %s: %v", cfg.Output.Path, err)
			}
		}()
		out = file
	}
	if err := export.Write(out, cfg.Output.Format, res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if !res.Feasible {
		return fmt.Errorf("run %s: no feasible solution", res.RunID)
	}
	return nil
}
