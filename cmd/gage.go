package cmd

import (
	"github.com/signalnine/asmqc/internal/gage"
	"github.com/signalnine/asmqc/internal/result"
	"github.com/signalnine/asmqc/internal/stats"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newGageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gage <reference> <scaffolds>",
		Short: "Compare scaffolds against a reference with GAGE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := result.NewRecord(stats.Gage, absInputs("reference", args[0], "scaffolds", args[1]))
			r := &gage.Runner{
				Exec:  newExecutor(cfg, args[0], args[1]),
				Log:   log.StandardLogger(),
				Dir:   cfg.Tools.GageDir,
				Shell: cfg.Tools.Sh,
			}
			s, err := r.Run(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return emit(cmd, rec, s, ".")
		},
	}
}
