package reapr

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/signalnine/asmqc/internal/stats"
)

// ParseSummary reads 05.summary.report.tsv: a header row of column names
// and a row of values. The result has every REAPR statistic; columns that
// are not in the report stay NA.
func ParseSummary(r io.Reader) (stats.Stats, error) {
	out := stats.DummyReapr()
	br := bufio.NewReader(r)
	header, err := readLine(br)
	if err != nil {
		return out, &stats.FormatError{Tool: stats.Reapr, Reason: "missing header line"}
	}
	values, err := readLine(br)
	if err != nil {
		return out, &stats.FormatError{Tool: stats.Reapr, Reason: "missing values line"}
	}
	columns := strings.Split(header, "\t")
	fields := strings.Split(values, "\t")
	if len(fields) != len(columns) {
		return out, &stats.FormatError{
			Tool:   stats.Reapr,
			Line:   2,
			Text:   values,
			Reason: fmt.Sprintf("%d values for %d columns", len(fields), len(columns)),
		}
	}
	for i, col := range columns {
		if _, ok := out[col]; !ok {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(fields[i]), 10, 64)
		if err != nil {
			return stats.DummyReapr(), &stats.FormatError{
				Tool:   stats.Reapr,
				Line:   2,
				Text:   values,
				Reason: fmt.Sprintf("column %s: %q is not an integer", col, fields[i]),
			}
		}
		out[col] = stats.Int(n)
	}
	return out, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRightFunc(line, unicode.IsSpace), nil
}
