// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-qa/pkg/types"
)

// FormatTable writes ranked papers with their scores as a table to w.
func FormatTable(top []types.ScoredPaper, w io.Writer) {
	if len(top) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-8s  %s\n", "Rank", "Score", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for i, sp := range top {
		fmt.Fprintf(w, "%-4d  %-8.4f  %s\n", i+1, sp.Score, clip(sp.Record.Title, 74))
	}
}

// FormatJSON writes ranked papers as indented JSON to w.
func FormatJSON(top []types.ScoredPaper, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(top)
}
