// Package fasta holds the sequence-file helpers the runners need.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

const lineWidth = 60

// Region is a half-open [Start, End) stretch of a sequence.
type Region struct {
	Start, End int
}

// ContigRegions returns the gap-free stretches of s, where a gap is any run
// of N or n.
func ContigRegions(s alphabet.Letters) []Region {
	var regions []Region
	start := -1
	for i, l := range s {
		gap := l == 'N' || l == 'n'
		switch {
		case gap && start >= 0:
			regions = append(regions, Region{Start: start, End: i})
			start = -1
		case !gap && start < 0:
			start = i
		}
	}
	if start >= 0 {
		regions = append(regions, Region{Start: start, End: len(s)})
	}
	return regions
}

// ContigName names the i'th (0-based) contig cut from scaffold id. Numbered
// names are id.1, id.2, ...; otherwise the 1-based inclusive coordinates
// are used: id.start.end.
func ContigName(id string, i int, r Region, numbered bool) string {
	if numbered {
		return fmt.Sprintf("%s.%d", id, i+1)
	}
	return fmt.Sprintf("%s.%d.%d", id, r.Start+1, r.End)
}

// ScaffoldsToContigs splits every scaffold in the FASTA file in at its gaps
// and writes the pieces to out.
func ScaffoldsToContigs(in, out string, numbered bool) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("opening scaffolds: %w", err)
	}
	defer f.Close()

	o, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating contigs file: %w", err)
	}
	bw := bufio.NewWriter(o)
	if err := splitContigs(f, bw, numbered); err != nil {
		o.Close()
		return fmt.Errorf("splitting %s: %w", in, err)
	}
	if err := bw.Flush(); err != nil {
		o.Close()
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return o.Close()
}

func splitContigs(r io.Reader, w io.Writer, numbered bool) error {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant)))
	fw := fasta.NewWriter(w, lineWidth)
	for sc.Next() {
		scaffold := sc.Seq().(*linear.Seq)
		for i, region := range ContigRegions(scaffold.Seq) {
			contig := linear.NewSeq(
				ContigName(scaffold.Name(), i, region, numbered),
				scaffold.Seq[region.Start:region.End],
				alphabet.DNAredundant,
			)
			if _, err := fw.Write(contig); err != nil {
				return err
			}
		}
	}
	return sc.Error()
}

// Count returns the number of records in a FASTA file.
func Count(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNAredundant)))
	n := 0
	for sc.Next() {
		n++
	}
	if err := sc.Error(); err != nil {
		return n, fmt.Errorf("reading %s: %w", path, err)
	}
	return n, nil
}
