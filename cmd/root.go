package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/signalnine/asmqc/internal/config"
	"github.com/signalnine/asmqc/internal/logging"
	"github.com/signalnine/asmqc/internal/report"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	flagLogLevel  string
	flagLogFormat string
	flagFormat    string
	flagSave      bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "asmqc",
		Short:         "Run GAGE, RATT and REAPR assembly checks and collect their statistics",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "asmqc.yaml", "config file path (yaml or toml)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (overrides config)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text or json (overrides config)")
	root.PersistentFlags().StringVar(&flagFormat, "format", "table", "output format ("+strings.Join(report.Formats, ", ")+")")
	root.PersistentFlags().BoolVar(&flagSave, "save", false, "save a result record next to the tool output")
	root.AddCommand(newGageCmd())
	root.AddCommand(newRattCmd())
	root.AddCommand(newReaprCmd())
	root.AddCommand(newDummyCmd())
	root.AddCommand(newReportCmd())
	return root
}

func setup() error {
	if !slices.Contains(report.Formats, flagFormat) {
		return fmt.Errorf("unknown --format %q (want one of %s)", flagFormat, strings.Join(report.Formats, ", "))
	}
	loaded, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}
	return logging.Configure(cfg.Log.Level, cfg.Log.Format, nil)
}
