package cmd

import (
	"strings"

	"github.com/signalnine/asmqc/internal/ratt"
	"github.com/signalnine/asmqc/internal/result"
	"github.com/signalnine/asmqc/internal/stats"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagRattConfig string
	flagTransfer   string
)

func newRattCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratt <embl-dir> <assembly> <outdir>",
		Short: "Transfer annotation onto an assembly with RATT",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := result.NewRecord(stats.Ratt, absInputs("embl_dir", args[0], "assembly", args[1], "outdir", args[2]))
			configFile := flagRattConfig
			if configFile == "" {
				configFile = cfg.Tools.RattConfig
			}
			r := &ratt.Runner{
				Exec:  newExecutor(cfg, args[0], args[1]),
				Log:   log.StandardLogger(),
				Home:  cfg.Tools.RattHome,
				Shell: cfg.Tools.Bash,
			}
			s, err := r.Run(cmd.Context(), args[0], args[1], args[2], ratt.Options{
				ConfigFile: configFile,
				Transfer:   flagTransfer,
			})
			if err != nil {
				return err
			}
			return emit(cmd, rec, s, args[2])
		},
	}
	cmd.Flags().StringVar(&flagRattConfig, "ratt-config", "", "RATT config file (default: tools.ratt_config or <ratt_home>/ratt.config)")
	cmd.Flags().StringVar(&flagTransfer, "transfer", ratt.DefaultTransfer, "transfer mode ("+strings.Join(ratt.TransferModes, ", ")+")")
	return cmd
}
