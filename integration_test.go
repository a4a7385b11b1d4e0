//go:build integration

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalnine/asmqc/cmd"
	"github.com/signalnine/asmqc/internal/result"
	"github.com/signalnine/asmqc/internal/stats"
)

// createFixture writes a fake GAGE install and two FASTA inputs.
func createFixture(t *testing.T) (gageDir, inputs string) {
	t.Helper()
	gageDir = t.TempDir()
	inputs = t.TempDir()
	script := `#!/bin/sh
test -L "$1" || exit 9
grep -q '^>' "$2" || exit 9
echo "SNPs: 4"
echo "Indels < 5bp: 2"
echo "Avg Idy: 99.9"
`
	os.WriteFile(filepath.Join(gageDir, "getCorrectnessStats.sh"), []byte(script), 0o755)
	os.WriteFile(filepath.Join(inputs, "ref.fa"), []byte(">ref\nACGTACGTACGT\n"), 0o644)
	os.WriteFile(filepath.Join(inputs, "scaffolds.fa"), []byte(">s1\nACGTNNNNACGT\n>s2\nGGCC\n"), 0o644)
	return gageDir, inputs
}

func TestGageInDockerIntegration(t *testing.T) {
	if os.Getenv("ASMQC_DOCKER_TESTS") == "" {
		t.Skip("set ASMQC_DOCKER_TESTS=1 to run integration tests")
	}

	gageDir, inputs := createFixture(t)
	work := t.TempDir()
	t.Chdir(work)

	cfgPath := filepath.Join(t.TempDir(), "asmqc.yaml")
	os.WriteFile(cfgPath, []byte(strings.Join([]string{
		"tools:",
		"  gage_dir: " + gageDir,
		"executor:",
		"  kind: docker",
		"  image: alpine:latest",
		"",
	}, "\n")), 0o644)

	root := cmd.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{
		"--config", cfgPath, "--save", "--format", "tsv",
		"gage", filepath.Join(inputs, "ref.fa"), filepath.Join(inputs, "scaffolds.fa"),
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("gage: %v", err)
	}
	if !strings.Contains(out.String(), "\tSNPs\t4\n") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	rec, err := result.ReadRecord(result.RecordPath(work, stats.Gage))
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if rec.Stats["Indels < 5bp"] != stats.Int(2) {
		t.Errorf("Indels < 5bp: got %v, want 2", rec.Stats["Indels < 5bp"])
	}
	if rec.Stats["Avg Idy"] != stats.Float(99.9) {
		t.Errorf("Avg Idy: got %v, want 99.9", rec.Stats["Avg Idy"])
	}
}
