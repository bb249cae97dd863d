// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/paper-qa/pkg/types"
)

type printer struct {
	w      io.Writer
	color  bool
	qStyle lipgloss.Style
	aStyle lipgloss.Style
	sStyle lipgloss.Style
}

func newPrinter(w io.Writer, color bool) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:      w,
		color:  color,
		qStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		aStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		sStyle: r.NewStyle().Faint(true),
	}
}

func (p *printer) label(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) qa(question, reply string) {
	fmt.Fprintf(p.w, "%s %s\n", p.label(p.qStyle, "Question:"), question)
	fmt.Fprintf(p.w, "%s %s\n", p.label(p.aStyle, "Answer:"), reply)
}

func (p *printer) sources(top []types.ScoredPaper) {
	for _, sp := range top {
		line := fmt.Sprintf("  - %s (similarity: %.4f)", sp.Record.Title, sp.Score)
		fmt.Fprintln(p.w, p.label(p.sStyle, line))
	}
}

func (p *printer) blank() {
	fmt.Fprintln(p.w)
}
