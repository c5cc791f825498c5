package ui

import (
	"fmt"
	"strings"

	"cellmapper/internal/mapping"

	"github.com/charmbracelet/glamour"
)

// Report is the end-of-run summary printed by `cellmap run --summary`.
type Report struct {
	Source     string
	Configured bool
	Pack       mapping.PackConfig
	Entries    []mapping.CellEntry
	Output     string
	Statements int
	Errors     int
	Infos      int
}

// Markdown renders the report as Markdown.
func (r Report) Markdown() string {
	var sb strings.Builder

	title := "Cell mapping"
	if r.Source != "" {
		title += " for " + r.Source
	}
	sb.WriteString("# " + title + "\n\n")

	if !r.Configured {
		sb.WriteString("_No grid was configured._\n\n")
	} else {
		p := r.Pack
		fmt.Fprintf(&sb, "- Layout: **%ds%dp** on a %d x %d grid\n", p.Ns, p.Np, p.Rows, p.Cols)
		fmt.Fprintf(&sb, "- Placed: **%d / %d** cells\n", len(r.Entries), p.Capacity())
	}
	fmt.Fprintf(&sb, "- Statements: %d (%d rejected, %d notices)\n\n", r.Statements, r.Errors, r.Infos)

	if table := EntriesTable(r.Entries).Markdown(); table != "" {
		sb.WriteString("## Mapped cells\n\n")
		sb.WriteString(table)
		sb.WriteString("\n")
	}

	sb.WriteString("## Output\n\n")
	sb.WriteString("`" + r.Output + "`\n")
	return sb.String()
}

// RenderMarkdown renders md for the terminal in the given theme.
func RenderMarkdown(md string, theme Theme, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	style := "light"
	if theme.IsDark {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
