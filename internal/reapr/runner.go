// Package reapr runs the REAPR assembly-error pipeline and reads its
// summary report.
package reapr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/signalnine/asmqc/internal/bamstats"
	"github.com/signalnine/asmqc/internal/stats"
	"github.com/signalnine/asmqc/internal/toolexec"
	"github.com/signalnine/asmqc/internal/workdir"
	"github.com/sirupsen/logrus"
)

const (
	// SummaryReport is relative to the run's output directory.
	SummaryReport = "Out/05.summary.report.tsv"

	pipelineDir   = "Out"
	perfectPrefix = "perfect"
	renamePrefix  = "assembly"
	renamedFasta  = "assembly.fa"
	renameInfo    = "assembly.info"
	renamedBAM    = "renamed.bam"
)

// Inputs are the files REAPR reads. Relative paths are resolved against the
// working directory at the time Run is called.
type Inputs struct {
	Assembly string
	ReadsFwd string
	ReadsRev string
	BAM      string
}

type Runner struct {
	Exec      toolexec.Executor
	Log       logrus.FieldLogger
	Estimator bamstats.Estimator
	// Reapr is the reapr executable; defaults to reapr.
	Reapr string
}

// Run runs REAPR in outdir, which must not exist yet. Every recognized
// statistic is present in the result; when REAPR cannot run or report, all
// of them are NA. Only a failure to create outdir is returned as an error.
func (r *Runner) Run(ctx context.Context, in Inputs, outdir string) (stats.Stats, error) {
	log := r.logger()
	in, err := in.abs()
	if err != nil {
		return nil, err
	}

	insert, err := r.Estimator.MeanInsert(ctx, in.BAM)
	if err != nil || insert == bamstats.NoInsertSize {
		entry := log.WithField("tried", r.Estimator.Describe(in.BAM))
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Warn("couldn't estimate insert size from BAM, so did not run REAPR")
		return stats.DummyReapr(), nil
	}
	log.WithField("insert_size", insert).Debug("estimated insert size")

	scope, err := workdir.Create(outdir)
	if err != nil {
		return nil, err
	}
	defer scope.Restore()

	assembly, bam, ok := r.checkAssembly(ctx, in.Assembly, in.BAM)
	if !ok {
		return stats.DummyReapr(), nil
	}

	steps := [][]string{
		{"perfectmap", assembly, in.ReadsFwd, in.ReadsRev, strconv.Itoa(insert), perfectPrefix},
		{"pipeline", assembly, bam, pipelineDir, perfectPrefix},
	}
	for _, args := range steps {
		if !r.run(ctx, args...) {
			log.WithField("step", args[0]).Info("reapr step failed, reporting NA")
			return stats.DummyReapr(), nil
		}
	}

	f, err := os.Open(SummaryReport)
	if errors.Is(err, os.ErrNotExist) {
		log.WithField("report", filepath.Join(scope.Dir(), SummaryReport)).Info("reapr summary report missing, reporting NA")
		return stats.DummyReapr(), nil
	}
	if err != nil {
		log.WithError(err).Info("reapr summary report unreadable, reporting NA")
		return stats.DummyReapr(), nil
	}
	defer f.Close()

	s, err := ParseSummary(f)
	if err != nil {
		log.WithError(err).Warn("reapr summary report malformed, reporting NA")
		return stats.DummyReapr(), nil
	}
	return s, nil
}

// checkAssembly validates the assembly with facheck. When it fails, REAPR
// is asked to write a fixed copy named assembly.fa and the BAM's reference
// names are rewritten to match. It returns the assembly and BAM to use.
func (r *Runner) checkAssembly(ctx context.Context, assembly, bam string) (string, string, bool) {
	if r.run(ctx, "facheck", assembly) {
		return assembly, bam, true
	}
	log := r.logger()
	log.Info("assembly failed reapr facheck, renaming sequences")
	if !r.run(ctx, "facheck", assembly, renamePrefix) {
		log.Info("reapr facheck could not write a renamed assembly, reporting NA")
		return "", "", false
	}
	if !r.run(ctx, "seqrename", renameInfo, bam, renamedBAM) {
		log.Info("reapr seqrename failed, reporting NA")
		return "", "", false
	}
	return renamedFasta, renamedBAM, true
}

func (r *Runner) run(ctx context.Context, args ...string) bool {
	cmd := toolexec.Command{Name: r.reapr(), Args: args}
	log := r.logger().WithField("cmd", cmd.String())
	log.Debug("running reapr")
	out := r.Exec.Run(ctx, cmd)
	if out.Failed() {
		log.WithField("status", toolexec.Describe(out)).Debug("reapr command failed")
		return false
	}
	return true
}

func (in Inputs) abs() (Inputs, error) {
	for _, p := range []*string{&in.Assembly, &in.ReadsFwd, &in.ReadsRev, &in.BAM} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return in, fmt.Errorf("resolving %s: %w", *p, err)
		}
		*p = abs
	}
	return in, nil
}

func (r *Runner) reapr() string {
	if r.Reapr == "" {
		return "reapr"
	}
	return r.Reapr
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.WithField("tool", stats.Reapr)
	}
	return r.Log.WithField("tool", stats.Reapr)
}
