// Package cmd implements the energylp command line.
package cmd

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kilianp07/energylp/config"
	"github.com/kilianp07/energylp/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "energylp",
	Short:        "Energy asset optimisation with mixed-integer linear programming",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "scenario.yaml", "scenario file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// newLogger builds the zerolog logger described by cfg. Logs go to stderr so
// result tables on stdout stay machine readable.
func newLogger(component string, cfg config.LoggingConfig, errOut io.Writer) logger.Logger {
	if errOut == nil {
		errOut = os.Stderr
	}
	if cfg.Console || strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		errOut = zerolog.ConsoleWriter{Out: errOut, TimeFormat: time.RFC3339}
	}
	return logger.NewZerologLoggerWithWriter(component, errOut, cfg.Level)
}
