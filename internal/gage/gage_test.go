package gage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalnine/asmqc/internal/gage"
	"github.com/signalnine/asmqc/internal/stats"
	"github.com/signalnine/asmqc/internal/toolexec"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const report = `Real Coverage Stats
Genome Size: 5000
Missing Reference Bases: 40 (0.80%)
Missing Assembly Bases: 0 (0.00%)
Missing Assembly Contigs: 0 (0.00%)
Duplicated Reference Bases: 0 (0.00%)
Compressed Reference Bases: 3 (1.50%)
Bad Trim: 2 (0.04%)
Avg Idy: 99.87
SNPs: 12
Indels < 5bp: 1
Indels >= 5: 0
Inversions: 0
Relocation: 1
Translocation: 0

Corrected Contig Stats
SNPs: 999
Inversions: 42
`

func TestParseReport(t *testing.T) {
	s, err := gage.ParseReport(report)
	require.NoError(t, err)
	require.Len(t, s, 13)
	require.Equal(t, stats.Int(3), s["Compressed Reference Bases"])
	require.Equal(t, stats.Int(40), s["Missing Reference Bases"])
	require.Equal(t, stats.Float(99.87), s["Avg Idy"])
	require.Equal(t, stats.Int(12), s["SNPs"], "values after the stop marker must be ignored")
	require.Equal(t, stats.Int(0), s["Inversions"])
	_, ok := s["Genome Size"]
	require.False(t, ok, "unrecognized names are dropped")
}

func TestParseReportStopsAtMarker(t *testing.T) {
	text := "Compressed Reference Bases: 3 (1.50%)\nCorrected Contig Stats\nSNPs: 7\nBad Trim: 1\n"
	s, err := gage.ParseReport(text)
	require.NoError(t, err)
	require.Equal(t, stats.Stats{"Compressed Reference Bases": stats.Int(3)}, s)
}

func TestParseReportPartial(t *testing.T) {
	s, err := gage.ParseReport("SNPs: 4\n")
	require.NoError(t, err)
	require.Len(t, s, 1)
	_, ok := s["Avg Idy"]
	require.False(t, ok, "missing statistics are absent, not NA")
}

func TestParseReportBadValue(t *testing.T) {
	_, err := gage.ParseReport("line one\nAvg Idy: n/a\n")
	require.Error(t, err)
	require.True(t, errors.Is(err, stats.ErrUnexpectedFormat))
	var fe *stats.FormatError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 2, fe.Line)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want stats.Value
	}{
		{"12", stats.Int(12)},
		{"12.5", stats.Float(12.5)},
		{"3 (1.50%)", stats.Int(3)},
		{"0.5 (12%)", stats.Float(0.5)},
		{" 7 ", stats.Int(7)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := gage.ParseValue(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func TestRunWithSyntheticScript(t *testing.T) {
	gageDir := t.TempDir()
	inputs := t.TempDir()
	work := t.TempDir()
	t.Chdir(work)

	// The script checks it was handed the linked inputs and derived contigs.
	writeFile(t, filepath.Join(gageDir, gage.Script), `#!/bin/sh
test -L "$1" || exit 9
test -s "$2" || exit 9
test -L "$3" || exit 9
grep -q '^>s1.2$' "$2" || exit 9
echo "Compressed Reference Bases: 3 (1.50%)"
echo "Avg Idy: 12.5"
echo "SNPs: 12"
echo "Corrected Contig Stats"
echo "Inversions: 4"
echo "noise" >&2
exit 1
`, 0o755)
	writeFile(t, filepath.Join(inputs, "ref.fasta"), ">ref\nACGTACGTAA\n", 0o644)
	writeFile(t, filepath.Join(inputs, "scaffs.fasta"), ">s1\nACGTNNNNACGT\n", 0o644)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r := &gage.Runner{Exec: toolexec.Local{}, Log: logger, Dir: gageDir}

	s, err := r.Run(context.Background(),
		filepath.Join(inputs, "ref.fasta"),
		filepath.Join(inputs, "scaffs.fasta"))
	require.NoError(t, err)
	require.Equal(t, stats.Stats{
		"Compressed Reference Bases": stats.Int(3),
		"Avg Idy":                    stats.Float(12.5),
		"SNPs":                       stats.Int(12),
	}, s)

	wd, _ := os.Getwd()
	require.Equal(t, work, wd)
	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	require.Empty(t, entries, "temp dir must be removed")
	require.NotEmpty(t, hook.AllEntries())

	var contigs any
	for _, e := range hook.AllEntries() {
		if n, ok := e.Data["contigs"]; ok {
			contigs = n
		}
	}
	require.Equal(t, 2, contigs)
}

func TestRunRelativeInputs(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	writeFile(t, "ref.fasta", ">ref\nACGT\n", 0o644)
	writeFile(t, "scaffs.fasta", ">s1\nACGT\n", 0o644)

	rec := &toolexec.Recorder{}
	rec.On(func(cmd toolexec.Command) toolexec.Outcome {
		target, err := os.Readlink(cmd.Args[1])
		if err != nil || target != filepath.Join(work, "ref.fasta") {
			return toolexec.Outcome{ExitCode: 2}
		}
		return toolexec.Outcome{Stdout: []byte("SNPs: 1\n")}
	}, "sh")

	r := &gage.Runner{Exec: rec, Dir: "/opt/gage"}
	s, err := r.Run(context.Background(), "ref.fasta", "scaffs.fasta")
	require.NoError(t, err)
	require.Equal(t, stats.Stats{"SNPs": stats.Int(1)}, s)
	require.Len(t, rec.Commands, 1)
	require.Equal(t, "sh /opt/gage/getCorrectnessStats.sh ref.fa contigs.fa scaffolds.fa", rec.Lines()[0])
}

func TestRunToolMissing(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	writeFile(t, "ref.fasta", ">ref\nACGT\n", 0o644)
	writeFile(t, "scaffs.fasta", ">s1\nACGT\n", 0o644)

	rec := (&toolexec.Recorder{}).On(toolexec.Exit(toolexec.ExitNotFound), "sh")
	r := &gage.Runner{Exec: rec, Dir: "/nowhere"}
	s, err := r.Run(context.Background(), "ref.fasta", "scaffs.fasta")
	require.NoError(t, err)
	require.Empty(t, s)

	wd, _ := os.Getwd()
	require.Equal(t, work, wd)
}

func TestRunMissingScaffolds(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	writeFile(t, "ref.fasta", ">ref\nACGT\n", 0o644)

	rec := &toolexec.Recorder{}
	r := &gage.Runner{Exec: rec, Dir: "/opt/gage"}
	_, err := r.Run(context.Background(), "ref.fasta", "missing.fasta")
	require.Error(t, err)
	require.Empty(t, rec.Commands)

	wd, _ := os.Getwd()
	require.Equal(t, work, wd)
	entries, _ := os.ReadDir(work)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), "tmp.gage."), "temp dir left behind")
	}
}
