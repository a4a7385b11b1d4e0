package ratt_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalnine/asmqc/internal/ratt"
	"github.com/signalnine/asmqc/internal/stats"
	"github.com/signalnine/asmqc/internal/toolexec"
	"github.com/signalnine/asmqc/internal/workdir"
	"github.com/stretchr/testify/require"
)

const rattOutput = "Starting RATT\n" +
	"42\telements found.\n" +
	"40\tElements were transfered.\n" +
	"1\tElements could be transfered partially.\n" +
	"0\tElements split.\n" +
	"3\tParts of elements (i.e.exons tRNA) not transferred.\n" +
	"1\tElements couldn't be transferred.\n" +
	"20\tGene models to transfer.\n" +
	"18\tGene models transferred correctly.\n" +
	"1\tGene models partially transferred.\n" +
	"2\tExons not transferred from partial CDS matches.\n" +
	"1\tGene models not transferred.\n" +
	"done\n"

func TestParseReport(t *testing.T) {
	s, err := ratt.ParseReport(strings.NewReader(rattOutput))
	require.NoError(t, err)
	require.Len(t, s, 11)
	require.Equal(t, stats.Int(42), s["elements_found"])
	require.Equal(t, stats.Int(18), s["gene_models_transferred"])
	require.Equal(t, stats.Int(1), s["elements_not_transferred"])
	for name := range s {
		require.True(t, stats.Ratt.Recognized(name), name)
	}
}

func TestParseReportSingleLine(t *testing.T) {
	s, err := ratt.ParseReport(strings.NewReader("42\telements found.\n"))
	require.NoError(t, err)
	require.Equal(t, stats.Stats{"elements_found": stats.Int(42)}, s)
}

func TestParseReportTrailingWhitespace(t *testing.T) {
	s, err := ratt.ParseReport(strings.NewReader("42\telements found.\t\r\n3\tElements split. \n"))
	require.NoError(t, err)
	require.Equal(t, stats.Stats{
		"elements_found": stats.Int(42),
		"elements_split": stats.Int(3),
	}, s)
}

func TestParseReportUnknownLabel(t *testing.T) {
	_, err := ratt.ParseReport(strings.NewReader("42\telements found.\n7\tElements teleported.\n"))
	require.Error(t, err)
	require.True(t, errors.Is(err, stats.ErrUnexpectedFormat))
	var fe *stats.FormatError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 2, fe.Line)
}

func TestParseReportBadCount(t *testing.T) {
	_, err := ratt.ParseReport(strings.NewReader("many\telements found.\n"))
	require.True(t, errors.Is(err, stats.ErrUnexpectedFormat))
}

func TestParseReportExtraColumns(t *testing.T) {
	_, err := ratt.ParseReport(strings.NewReader("1\telements found.\textra\n"))
	require.True(t, errors.Is(err, stats.ErrUnexpectedFormat))
}

func TestScript(t *testing.T) {
	got := ratt.Script("/opt/ratt", "/opt/ratt/ratt.config", "/data/embl", "/data/my asm.fa", "Species")
	want := "export RATT_HOME=/opt/ratt\n" +
		"export RATT_CONFIG=/opt/ratt/ratt.config\n" +
		"$RATT_HOME/start.ratt.sh /data/embl '/data/my asm.fa' out Species\n"
	require.Equal(t, want, got)
}

func TestRun(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)

	rec := (&toolexec.Recorder{}).On(func(cmd toolexec.Command) toolexec.Outcome {
		// RATT exits nonzero even when it worked
		return toolexec.Outcome{Stdout: []byte(rattOutput), ExitCode: 1}
	}, "bash", "run.sh")

	r := &ratt.Runner{Exec: rec, Home: "/opt/ratt"}
	s, err := r.Run(context.Background(), "embl", "asm.fa", "ratt_out", ratt.Options{})
	require.NoError(t, err)
	require.Len(t, s, 11)
	require.Equal(t, stats.Int(42), s["elements_found"])

	wd, _ := os.Getwd()
	require.Equal(t, work, wd)
	require.Equal(t, []string{"bash run.sh"}, rec.Lines())

	script, err := os.ReadFile(filepath.Join(work, "ratt_out", "run.sh"))
	require.NoError(t, err)
	require.Contains(t, string(script), "export RATT_CONFIG=/opt/ratt/ratt.config\n")
	require.Contains(t, string(script), filepath.Join(work, "embl")+" "+filepath.Join(work, "asm.fa")+" out Species")

	captured, err := os.ReadFile(filepath.Join(work, "ratt_out", "run.sh.out"))
	require.NoError(t, err)
	require.Equal(t, rattOutput, string(captured))
}

func TestRunConfigOverrideAndTransfer(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	rec := &toolexec.Recorder{}

	r := &ratt.Runner{Exec: rec, Home: "/opt/ratt"}
	s, err := r.Run(context.Background(), "embl", "asm.fa", "out", ratt.Options{ConfigFile: "my.config", Transfer: "Strain"})
	require.NoError(t, err)
	require.Empty(t, s)

	script, err := os.ReadFile(filepath.Join(work, "out", "run.sh"))
	require.NoError(t, err)
	require.Contains(t, string(script), "export RATT_CONFIG="+filepath.Join(work, "my.config")+"\n")
	require.True(t, strings.HasSuffix(string(script), " out Strain\n"))
}

func TestRunUnknownTransfer(t *testing.T) {
	t.Chdir(t.TempDir())
	rec := &toolexec.Recorder{}
	r := &ratt.Runner{Exec: rec, Home: "/opt/ratt"}
	_, err := r.Run(context.Background(), "embl", "asm.fa", "out", ratt.Options{Transfer: "Genus"})
	require.Error(t, err)
	require.Empty(t, rec.Commands)
	_, statErr := os.Stat("out")
	require.True(t, os.IsNotExist(statErr))
}

func TestRunOutdirExists(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	require.NoError(t, os.Mkdir("out", 0o755))

	rec := &toolexec.Recorder{}
	r := &ratt.Runner{Exec: rec, Home: "/opt/ratt"}
	_, err := r.Run(context.Background(), "embl", "asm.fa", "out", ratt.Options{})
	require.Error(t, err)
	require.True(t, errors.Is(err, workdir.ErrSetup))
	require.Empty(t, rec.Commands)

	wd, _ := os.Getwd()
	require.Equal(t, work, wd)
}

func TestRunUnknownLabelRestoresDir(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	rec := (&toolexec.Recorder{}).On(toolexec.Stdout("5\tSomething new.\n"), "bash")

	r := &ratt.Runner{Exec: rec, Home: "/opt/ratt"}
	_, err := r.Run(context.Background(), "embl", "asm.fa", "out", ratt.Options{})
	require.True(t, errors.Is(err, stats.ErrUnexpectedFormat))

	wd, _ := os.Getwd()
	require.Equal(t, work, wd)
}

func TestRunWithFakeRattHome(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ratt.EntryPoint), []byte(`#!/bin/sh
test -n "$RATT_CONFIG" || exit 5
printf '%s\t%s\n' 7 'elements found.'
printf '%s\t%s\n' 6 'Gene models to transfer.'
exit 1
`), 0o755))
	work := t.TempDir()
	t.Chdir(work)

	r := &ratt.Runner{Exec: toolexec.Local{}, Home: home, Shell: "sh"}
	s, err := r.Run(context.Background(), "embl", "asm.fa", "out", ratt.Options{})
	require.NoError(t, err)
	require.Equal(t, stats.Stats{
		"elements_found":          stats.Int(7),
		"gene_models_to_transfer": stats.Int(6),
	}, s)
}
