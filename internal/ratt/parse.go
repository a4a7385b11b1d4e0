package ratt

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/signalnine/asmqc/internal/stats"
)

// labels maps the phrases RATT prints after each count to statistic names.
var labels = map[string]string{
	"elements found.":                                     "elements_found",
	"Elements were transfered.":                           "elements_transferred",
	"Elements could be transfered partially.":             "elements_transferred_partially",
	"Elements split.":                                     "elements_split",
	"Parts of elements (i.e.exons tRNA) not transferred.": "parts_of_elements_not_transferred",
	"Elements couldn't be transferred.":                   "elements_not_transferred",
	"Gene models to transfer.":                            "gene_models_to_transfer",
	"Gene models transferred correctly.":                  "gene_models_transferred",
	"Gene models partially transferred.":                  "gene_models_transferred_partially",
	"Exons not transferred from partial CDS matches.":     "exons_not_transferred_from_partial_matches",
	"Gene models not transferred.":                        "gene_models_not_transferred",
}

// ParseReport reads RATT's stdout. Every tab-separated line must be a count
// followed by one of the known labels; anything else means RATT changed its
// report and is returned as a *stats.FormatError.
func ParseReport(r io.Reader) (stats.Stats, error) {
	out := stats.Stats{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRightFunc(sc.Text(), unicode.IsSpace)
		if !strings.Contains(line, "\t") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return out, &stats.FormatError{Tool: stats.Ratt, Line: lineNo, Text: line, Reason: "want count<TAB>label"}
		}
		name, ok := labels[fields[1]]
		if !ok {
			return out, &stats.FormatError{Tool: stats.Ratt, Line: lineNo, Text: line, Reason: "unknown label"}
		}
		n, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return out, &stats.FormatError{Tool: stats.Ratt, Line: lineNo, Text: line, Reason: "count is not an integer"}
		}
		out[name] = stats.Int(n)
	}
	return out, sc.Err()
}
