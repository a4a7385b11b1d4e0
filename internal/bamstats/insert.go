// Package bamstats estimates the mean insert size of a paired-end BAM.
package bamstats

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/signalnine/asmqc/internal/toolexec"
)

// NoInsertSize is returned when the BAM has no record with a positive
// template length.
const NoInsertSize = -1

// SampleSize is how many positive template lengths are averaged.
const SampleSize = 10

// Estimator computes the mean insert size of a BAM file.
type Estimator interface {
	MeanInsert(ctx context.Context, bamPath string) (int, error)
	// Describe says how the estimate is made, for diagnostics.
	Describe(bamPath string) string
}

// Sampler accumulates positive template lengths until it has SampleSize.
type Sampler struct {
	n   int
	sum int64
}

// Add records tlen if positive and reports whether the sample is full.
func (s *Sampler) Add(tlen int) bool {
	if tlen > 0 {
		s.n++
		s.sum += int64(tlen)
	}
	return s.n >= SampleSize
}

// Mean is the truncated mean of the sample, or NoInsertSize when empty.
func (s *Sampler) Mean() int {
	if s.n == 0 {
		return NoInsertSize
	}
	return int(float64(s.sum) / float64(s.n))
}

// Samtools runs `samtools view` through an Executor, so it runs wherever the
// other tools do. awk passes on only the first SampleSize positive TLENs,
// which keeps the captured output small and stops samtools early.
type Samtools struct {
	Exec toolexec.Executor
	// Path is the samtools executable; defaults to samtools.
	Path string
	// Shell runs the pipeline; defaults to sh.
	Shell string
}

func (s Samtools) bin() string {
	if s.Path == "" {
		return "samtools"
	}
	return s.Path
}

func (s Samtools) command(bamPath string) toolexec.Command {
	shell := s.Shell
	if shell == "" {
		shell = "sh"
	}
	pipeline := fmt.Sprintf(`"$1" view "$2" | awk -F '\t' '$9 > 0 { print; if (++n == %d) exit }'`, SampleSize)
	return toolexec.Command{Name: shell, Args: []string{"-c", pipeline, "sample-insert", s.bin(), bamPath}}
}

func (s Samtools) Describe(bamPath string) string {
	return s.command(bamPath).String()
}

func (s Samtools) MeanInsert(ctx context.Context, bamPath string) (int, error) {
	executor := s.Exec
	if executor == nil {
		executor = toolexec.Local{}
	}
	out := executor.Run(ctx, s.command(bamPath))
	if out.Failed() {
		return NoInsertSize, fmt.Errorf("sampling %s: %s", bamPath, toolexec.Describe(out))
	}
	return SampleSAM(bytes.NewReader(out.Stdout))
}

// SampleSAM reads SAM text records and returns the mean insert size of the
// first SampleSize records with a positive TLEN. Header lines are skipped.
func SampleSAM(r io.Reader) (int, error) {
	var sample Sampler
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		fields := strings.SplitN(line, "\t", 10)
		if len(fields) < 9 {
			continue
		}
		tlen, err := strconv.Atoi(fields[8])
		if err != nil {
			continue
		}
		if sample.Add(tlen) {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return NoInsertSize, fmt.Errorf("reading SAM records: %w", err)
	}
	return sample.Mean(), nil
}

// Native reads the BAM directly with biogo/hts.
type Native struct {
	// Threads is the BGZF decompression concurrency; 0 uses one.
	Threads int
}

func (Native) Describe(bamPath string) string {
	return fmt.Sprintf("read %s | mean of the first %d positive TLEN values", bamPath, SampleSize)
}

func (n Native) MeanInsert(ctx context.Context, bamPath string) (int, error) {
	f, err := os.Open(bamPath)
	if err != nil {
		return NoInsertSize, fmt.Errorf("opening bam: %w", err)
	}
	defer f.Close()

	br, err := bam.NewReader(f, n.Threads)
	if err != nil {
		return NoInsertSize, fmt.Errorf("reading bam header %s: %w", bamPath, err)
	}
	defer br.Close()

	var sample Sampler
	for {
		if err := ctx.Err(); err != nil {
			return NoInsertSize, err
		}
		rec, err := br.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return NoInsertSize, fmt.Errorf("reading bam record: %w", err)
		}
		if sample.Add(rec.TempLen) {
			break
		}
	}
	return sample.Mean(), nil
}
