// Package ratt runs RATT annotation transfer from EMBL references onto an
// assembly.
package ratt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/signalnine/asmqc/internal/stats"
	"github.com/signalnine/asmqc/internal/toolexec"
	"github.com/signalnine/asmqc/internal/workdir"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTransfer = "Species"
	ConfigName      = "ratt.config"
	EntryPoint      = "start.ratt.sh"

	scriptName = "run.sh"
	scriptOut  = "run.sh.out"
	outPrefix  = "out"
)

// TransferModes are the transfer types start.ratt.sh accepts.
var TransferModes = []string{
	"Assembly", "Assembly.Repetitive",
	"Strain", "Strain.Repetitive",
	"Species", "Species.Repetitive",
	"Multiple", "Free",
	"PacBio", "PacBio.Repetitive",
}

func validTransfer(mode string) bool {
	for _, m := range TransferModes {
		if m == mode {
			return true
		}
	}
	return false
}

type Runner struct {
	Exec toolexec.Executor
	Log  logrus.FieldLogger
	// Home is the RATT installation, exported as RATT_HOME. It holds
	// start.ratt.sh and the default ratt.config.
	Home string
	// Shell runs the generated script; defaults to bash.
	Shell string
}

type Options struct {
	// ConfigFile overrides <Home>/ratt.config.
	ConfigFile string
	// Transfer is the RATT transfer mode; defaults to Species.
	Transfer string
}

// Run transfers annotation from the EMBL files in emblDir onto assembly,
// working in outdir, which must not exist yet. The result holds only the
// counts RATT printed.
func (r *Runner) Run(ctx context.Context, emblDir, assembly, outdir string, opts Options) (stats.Stats, error) {
	log := r.logger()
	transfer := opts.Transfer
	if transfer == "" {
		transfer = DefaultTransfer
	}
	if !validTransfer(transfer) {
		return nil, fmt.Errorf("unknown RATT transfer mode %q (want one of %s)", transfer, strings.Join(TransferModes, ", "))
	}

	emblDir, err := filepath.Abs(emblDir)
	if err != nil {
		return nil, fmt.Errorf("resolving embl dir: %w", err)
	}
	assembly, err = filepath.Abs(assembly)
	if err != nil {
		return nil, fmt.Errorf("resolving assembly: %w", err)
	}
	home, err := filepath.Abs(r.Home)
	if err != nil {
		return nil, fmt.Errorf("resolving RATT home: %w", err)
	}
	config := filepath.Join(home, ConfigName)
	if opts.ConfigFile != "" {
		if config, err = filepath.Abs(opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("resolving RATT config: %w", err)
		}
	}

	scope, err := workdir.Create(outdir)
	if err != nil {
		return nil, err
	}
	defer scope.Restore()

	script := Script(home, config, emblDir, assembly, transfer)
	if err := os.WriteFile(scriptName, []byte(script), 0o755); err != nil {
		return nil, fmt.Errorf("writing %s: %w", scriptName, err)
	}

	cmd := toolexec.Command{Name: r.shell(), Args: []string{scriptName}}
	log.WithField("cmd", cmd.String()).WithField("dir", scope.Dir()).Debug("running ratt")
	out := r.Exec.Run(ctx, cmd)
	if out.Failed() {
		// RATT often exits nonzero after a usable run.
		log.WithField("status", toolexec.Describe(out)).Debug("ratt exited abnormally, parsing its output anyway")
	}
	if err := os.WriteFile(scriptOut, out.Stdout, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", scriptOut, err)
	}

	f, err := os.Open(scriptOut)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", scriptOut, err)
	}
	defer f.Close()
	s, err := ParseReport(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Join(outdir, scriptOut), err)
	}
	log.WithField("stats", len(s)).Debug("parsed ratt report")
	return s, nil
}

// Script is the shell script that points RATT at its installation and
// config, then starts a transfer writing files prefixed "out".
func Script(home, config, emblDir, assembly, transfer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "export RATT_HOME=%s\n", shellQuote(home))
	fmt.Fprintf(&b, "export RATT_CONFIG=%s\n", shellQuote(config))
	fmt.Fprintf(&b, "$RATT_HOME/%s %s %s %s %s\n", EntryPoint,
		shellQuote(emblDir), shellQuote(assembly), outPrefix, shellQuote(transfer))
	return b.String()
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"$`\\|&;<>()*?!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (r *Runner) shell() string {
	if r.Shell == "" {
		return "bash"
	}
	return r.Shell
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.WithField("tool", stats.Ratt)
	}
	return r.Log.WithField("tool", stats.Ratt)
}
