package stats

import "fmt"

// GageNames are the statistics read from getCorrectnessStats.sh output.
var GageNames = []string{
	"Missing Reference Bases",
	"Missing Assembly Bases",
	"Missing Assembly Contigs",
	"Duplicated Reference Bases",
	"Compressed Reference Bases",
	"Bad Trim",
	"Avg Idy",
	"SNPs",
	"Indels < 5bp",
	"Indels >= 5",
	"Inversions",
	"Relocation",
	"Translocation",
}

// RattNames are the annotation-transfer counts RATT prints on stdout.
var RattNames = []string{
	"elements_found",
	"elements_transferred",
	"elements_transferred_partially",
	"elements_split",
	"parts_of_elements_not_transferred",
	"elements_not_transferred",
	"gene_models_to_transfer",
	"gene_models_transferred",
	"gene_models_transferred_partially",
	"exons_not_transferred_from_partial_matches",
	"gene_models_not_transferred",
}

// ReaprNames are the columns kept from REAPR's 05.summary.report.tsv.
var ReaprNames = []string{
	"bases",
	"error_free",
	"FCD",
	"FCD_gap",
	"frag_cov",
	"frag_cov_gap",
	"low_score",
	"link",
	"soft_clipped",
	"collapsed_repeat",
	"read_cov",
	"low_perfect_cov",
	"read_orientation",
}

func DummyGage() Stats { return dummy(GageNames) }
func DummyRatt() Stats { return dummy(RattNames) }
func DummyReapr() Stats { return dummy(ReaprNames) }

type Tool string

const (
	Gage  Tool = "gage"
	Ratt  Tool = "ratt"
	Reapr Tool = "reapr"
)

var Tools = []Tool{Gage, Ratt, Reapr}

func ParseTool(s string) (Tool, error) {
	for _, t := range Tools {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q (want gage, ratt or reapr)", s)
}

// Names returns the tool's recognized statistic names in canonical order.
func (t Tool) Names() []string {
	switch t {
	case Gage:
		return GageNames
	case Ratt:
		return RattNames
	case Reapr:
		return ReaprNames
	}
	return nil
}

func (t Tool) Dummy() Stats {
	return dummy(t.Names())
}

// Recognized reports whether name is one of the tool's statistics.
func (t Tool) Recognized(name string) bool {
	for _, n := range t.Names() {
		if n == name {
			return true
		}
	}
	return false
}
