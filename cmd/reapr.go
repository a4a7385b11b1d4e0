package cmd

import (
	"github.com/signalnine/asmqc/internal/reapr"
	"github.com/signalnine/asmqc/internal/result"
	"github.com/signalnine/asmqc/internal/stats"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newReaprCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reapr <assembly> <reads-fwd> <reads-rev> <bam> <outdir>",
		Short: "Find assembly errors with REAPR",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := reapr.Inputs{Assembly: args[0], ReadsFwd: args[1], ReadsRev: args[2], BAM: args[3]}
			rec := result.NewRecord(stats.Reapr, absInputs(
				"assembly", in.Assembly, "reads_fwd", in.ReadsFwd, "reads_rev", in.ReadsRev,
				"bam", in.BAM, "outdir", args[4]))
			exec := newExecutor(cfg, in.Assembly, in.ReadsFwd, in.ReadsRev, in.BAM)
			r := &reapr.Runner{
				Exec:      exec,
				Log:       log.StandardLogger(),
				Estimator: estimatorFor(cfg, exec),
				Reapr:     cfg.Tools.Reapr,
			}
			s, err := r.Run(cmd.Context(), in, args[4])
			if err != nil {
				return err
			}
			return emit(cmd, rec, s, args[4])
		},
	}
}
