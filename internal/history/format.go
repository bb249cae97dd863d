// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// FormatTable writes entries as a human-readable table to w. Failed
// questions show their error in place of the answer.
func FormatTable(entries []Entry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No answers recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-16s  %-40s  %s\n", "ID", "When", "Question", "Answer")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, e := range entries {
		reply := e.Answer
		if e.Error != "" {
			reply = "error: " + e.Error
		}
		when := ""
		if !e.CreatedAt.IsZero() {
			when = e.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-5d  %-16s  %-40s  %s\n",
			e.ID, when, clip(e.Question, 40), clip(reply, 40))
	}

	fmt.Fprintf(w, "\n%d answers\n", len(entries))
}

// FormatJSON writes entries or runs as indented JSON to w.
func FormatJSON[T Entry | Run](items []T, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// FormatYAML writes entries or runs as YAML to w.
func FormatYAML[T Entry | Run](items []T, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// clip collapses whitespace and shortens s to max runes.
func clip(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// FormatRuns writes runs as a human-readable table to w.
func FormatRuns(runs []Run, w io.Writer) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-16s  %-18s  %-20s  %s\n", "ID", "Started", "Source", "Term", "Papers")
	fmt.Fprintln(w, strings.Repeat("-", 75))

	for _, r := range runs {
		started := ""
		if !r.StartedAt.IsZero() {
			started = r.StartedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-5d  %-16s  %-18s  %-20s  %d\n",
			r.ID, started, clip(r.Source, 18), clip(r.Term, 20), r.CorpusSize)
	}

	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}
