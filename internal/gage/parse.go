package gage

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/signalnine/asmqc/internal/stats"
)

// stopMarker starts the corrected-contig block, which repeats stat names
// with different meaning.
const stopMarker = "Corrected Contig Stats"

// ParseReport reads getCorrectnessStats.sh output. Only recognized names
// seen before the corrected-contig block are returned.
func ParseReport(text string) (stats.Stats, error) {
	out := stats.Stats{}
	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.HasPrefix(line, stopMarker) {
			break
		}
		name, raw, ok := strings.Cut(line, ": ")
		if !ok || !stats.Gage.Recognized(name) {
			continue
		}
		v, err := ParseValue(raw)
		if err != nil {
			return out, &stats.FormatError{Tool: stats.Gage, Line: lineNo, Text: line, Reason: err.Error()}
		}
		out[name] = v
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// ParseValue converts a GAGE value such as "3 (1.50%)", "12" or "99.87".
// A trailing parenthesised percentage is dropped.
func ParseValue(raw string) (stats.Value, error) {
	if strings.Contains(raw, "%") {
		raw, _, _ = strings.Cut(raw, "(")
	}
	raw = strings.TrimSpace(raw)
	if isDigits(raw) {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return stats.NA(), err
		}
		return stats.Int(n), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return stats.NA(), err
	}
	return stats.Float(f), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
