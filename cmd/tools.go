package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/signalnine/asmqc/internal/bamstats"
	"github.com/signalnine/asmqc/internal/config"
	"github.com/signalnine/asmqc/internal/docker"
	"github.com/signalnine/asmqc/internal/report"
	"github.com/signalnine/asmqc/internal/result"
	"github.com/signalnine/asmqc/internal/stats"
	"github.com/signalnine/asmqc/internal/toolexec"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newExecutor is replaced in tests.
var newExecutor = executorFor

// executorFor builds the configured executor. In docker mode each input is
// bind-mounted, a directory as itself and a file through its parent, since
// runners hand the tools symlinks and scripts that point at them.
func executorFor(c *config.Config, inputs ...string) toolexec.Executor {
	if c.Executor.Kind != "docker" {
		return toolexec.Local{Env: c.Env}
	}
	mounts := append([]string{}, c.Executor.Mounts...)
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			abs = filepath.Dir(abs)
		}
		mounts = append(mounts, abs)
	}
	for _, dir := range []string{c.Tools.GageDir, c.Tools.RattHome} {
		if abs, err := filepath.Abs(dir); err == nil {
			mounts = append(mounts, abs)
		}
	}
	if c.Tools.RattConfig != "" {
		if abs, err := filepath.Abs(c.Tools.RattConfig); err == nil {
			mounts = append(mounts, filepath.Dir(abs))
		}
	}
	return &docker.Executor{
		Image:  c.Executor.Image,
		Env:    c.Env,
		Mounts: mounts,
		UserID: c.Executor.User,
	}
}

func estimatorFor(c *config.Config, exec toolexec.Executor) bamstats.Estimator {
	if c.InsertSize.Method == "native" {
		return bamstats.Native{Threads: c.InsertSize.Threads}
	}
	return bamstats.Samtools{Exec: exec, Path: c.Tools.Samtools, Shell: c.Tools.Sh}
}

// absInputs resolves input paths for the saved record.
func absInputs(pairs ...string) map[string]string {
	inputs := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		p, err := filepath.Abs(pairs[i+1])
		if err != nil {
			p = pairs[i+1]
		}
		inputs[pairs[i]] = p
	}
	return inputs
}

// emit prints s in the chosen format and, with --save, writes the record into
// saveDir, or the working directory when saveDir does not exist.
func emit(cmd *cobra.Command, rec *result.Record, s stats.Stats, saveDir string) error {
	rec.Finish(s)
	log.WithFields(log.Fields{
		"tool":     rec.Tool,
		"stats":    len(s),
		"duration": time.Duration(rec.DurationS * float64(time.Second)).Round(time.Millisecond),
	}).Info("finished")

	if flagSave {
		if info, err := os.Stat(saveDir); err != nil || !info.IsDir() {
			saveDir = "."
		}
		path, err := result.WriteRecord(saveDir, rec)
		if err != nil {
			return fmt.Errorf("saving record: %w", err)
		}
		log.WithField("path", path).Info("saved record")
	}
	return report.Generate([]*result.Record{rec}, flagFormat, cmd.OutOrStdout())
}
