// Package report renders saved stat records as a table, markdown, json or
// tsv.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/signalnine/asmqc/internal/result"
	"github.com/signalnine/asmqc/internal/stats"
)

var Formats = []string{"table", "markdown", "json", "tsv"}

// Generate writes records in the given format. Records are grouped by tool;
// within a tool every run is a column and every recognized statistic a row.
func Generate(records []*result.Record, format string, w io.Writer) error {
	switch format {
	case "table", "":
		return writeTable(group(records), w)
	case "markdown":
		return writeMarkdown(group(records), w)
	case "json":
		return writeJSON(records, w)
	case "tsv":
		return writeTSV(records, w)
	default:
		return fmt.Errorf("unknown report format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

type toolGroup struct {
	tool    stats.Tool
	records []*result.Record
}

func group(records []*result.Record) []toolGroup {
	var groups []toolGroup
	for _, tool := range stats.Tools {
		g := toolGroup{tool: tool}
		for _, r := range records {
			if r.Tool == tool {
				g.records = append(g.records, r)
			}
		}
		if len(g.records) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// cell renders a statistic. A name the run did not report is blank.
func cell(s stats.Stats, name string) (string, bool) {
	v, ok := s[name]
	if !ok {
		return "", false
	}
	return v.String(), v.IsNA()
}

func runLabel(r *result.Record) string {
	if len(r.RunID) > 8 {
		return r.RunID[:8]
	}
	if r.RunID == "" {
		return "-"
	}
	return r.RunID
}

var (
	headStyle = color.New(color.Bold)
	naStyle   = color.New(color.Faint)
	// plainStyle carries an escape sequence as long as the others so that
	// tabwriter, which counts escape bytes, keeps columns aligned.
	plainStyle = color.New(color.Reset)
)

func writeTable(groups []toolGroup, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		row := []string{headStyle.Sprint(strings.ToUpper(string(g.tool)))}
		for _, r := range g.records {
			row = append(row, headStyle.Sprint(runLabel(r)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
		for _, name := range g.tool.Names() {
			row = append(row[:0], plainStyle.Sprint(name))
			for _, r := range g.records {
				v, na := cell(r.Stats, name)
				if na {
					row = append(row, naStyle.Sprint(v))
				} else {
					row = append(row, plainStyle.Sprint(v))
				}
			}
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}
	return tw.Flush()
}

func writeMarkdown(groups []toolGroup, w io.Writer) error {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "### %s\n\n", g.tool)
		head := []string{"Statistic"}
		for _, r := range g.records {
			head = append(head, runLabel(r))
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(head, " | "))
		fmt.Fprintf(w, "|%s\n", strings.Repeat("---|", len(head)))
		for _, name := range g.tool.Names() {
			row := []string{name}
			for _, r := range g.records {
				v, _ := cell(r.Stats, name)
				row = append(row, v)
			}
			fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
		}
	}
	return nil
}

func writeJSON(records []*result.Record, w io.Writer) error {
	if records == nil {
		records = []*result.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// writeTSV emits one line per statistic, in long form.
func writeTSV(records []*result.Record, w io.Writer) error {
	fmt.Fprintln(w, "tool\trun_id\tstat\tvalue")
	for _, g := range group(records) {
		for _, r := range g.records {
			for _, name := range g.tool.Names() {
				v, _ := cell(r.Stats, name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.tool, r.RunID, name, v)
			}
		}
	}
	return nil
}
