// Package gage runs GAGE's getCorrectnessStats.sh against a reference and
// a set of scaffolds.
package gage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/signalnine/asmqc/internal/fasta"
	"github.com/signalnine/asmqc/internal/stats"
	"github.com/signalnine/asmqc/internal/toolexec"
	"github.com/signalnine/asmqc/internal/workdir"
	"github.com/sirupsen/logrus"
)

const (
	Script = "getCorrectnessStats.sh"

	refLink     = "ref.fa"
	scaffsLink  = "scaffolds.fa"
	contigsFile = "contigs.fa"
	tmpPrefix   = "tmp.gage."
)

type Runner struct {
	Exec toolexec.Executor
	Log  logrus.FieldLogger
	// Dir holds getCorrectnessStats.sh.
	Dir string
	// Shell runs the script; defaults to sh.
	Shell string
}

// Run returns the GAGE statistics reported for scaffolds against reference.
// Statistics GAGE did not report are absent. A failing GAGE run is not an
// error; whatever it printed is parsed.
func (r *Runner) Run(ctx context.Context, reference, scaffolds string) (stats.Stats, error) {
	log := r.logger()
	reference, err := filepath.Abs(reference)
	if err != nil {
		return nil, fmt.Errorf("resolving reference: %w", err)
	}
	scaffolds, err = filepath.Abs(scaffolds)
	if err != nil {
		return nil, fmt.Errorf("resolving scaffolds: %w", err)
	}

	scriptDir, err := filepath.Abs(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving gage dir: %w", err)
	}

	output, err := r.runInTempDir(ctx, filepath.Join(scriptDir, Script), reference, scaffolds)
	if err != nil {
		return nil, err
	}

	s, err := ParseReport(output)
	if err != nil {
		return s, err
	}
	log.WithField("stats", len(s)).Debug("parsed gage report")
	return s, nil
}

func (r *Runner) runInTempDir(ctx context.Context, script, reference, scaffolds string) (string, error) {
	log := r.logger()
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	tmpDir, cleanup, err := workdir.TempDir(cwd, tmpPrefix)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.WithError(err).Warn("removing gage temp dir")
		}
	}()

	scope, err := workdir.Enter(tmpDir)
	if err != nil {
		return "", err
	}
	defer scope.Restore()

	if err := os.Symlink(reference, refLink); err != nil {
		return "", fmt.Errorf("linking reference: %w", err)
	}
	if err := os.Symlink(scaffolds, scaffsLink); err != nil {
		return "", fmt.Errorf("linking scaffolds: %w", err)
	}
	if err := fasta.ScaffoldsToContigs(scaffsLink, contigsFile, true); err != nil {
		return "", fmt.Errorf("making contigs: %w", err)
	}
	if n, err := fasta.Count(contigsFile); err == nil {
		log.WithField("contigs", n).Debug("split scaffolds into contigs")
	}

	cmd := toolexec.Command{
		Name: r.shell(),
		Args: []string{script, refLink, contigsFile, scaffsLink},
	}
	log.WithField("cmd", cmd.String()).Debug("running gage")
	out := r.Exec.Run(ctx, cmd)
	if out.Failed() {
		log.WithField("status", toolexec.Describe(out)).Info("gage exited abnormally, parsing partial output")
	}
	return string(out.Stdout), nil
}

func (r *Runner) shell() string {
	if r.Shell == "" {
		return "sh"
	}
	return r.Shell
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.WithField("tool", stats.Gage)
	}
	return r.Log.WithField("tool", stats.Gage)
}
