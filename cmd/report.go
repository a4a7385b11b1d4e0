package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/signalnine/asmqc/internal/report"
	"github.com/signalnine/asmqc/internal/result"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [dir]",
		Short: "Render result records saved with --save",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			resolved, err := filepath.EvalSymlinks(dir)
			if err != nil {
				return fmt.Errorf("resolving results dir: %w", err)
			}
			records, err := result.CollectRecords(resolved)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no asmqc records under %s", dir)
			}
			return report.Generate(records, flagFormat, cmd.OutOrStdout())
		},
	}
}
