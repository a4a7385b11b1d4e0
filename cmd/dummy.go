package cmd

import (
	"github.com/signalnine/asmqc/internal/report"
	"github.com/signalnine/asmqc/internal/result"
	"github.com/signalnine/asmqc/internal/stats"
	"github.com/spf13/cobra"
)

func newDummyCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "dummy <gage|ratt|reapr>",
		Short:     "Print the all-NA statistics for a tool",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(stats.Gage), string(stats.Ratt), string(stats.Reapr)},
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := stats.ParseTool(args[0])
			if err != nil {
				return err
			}
			rec := &result.Record{Tool: tool, Stats: tool.Dummy()}
			return report.Generate([]*result.Record{rec}, flagFormat, cmd.OutOrStdout())
		},
	}
}
