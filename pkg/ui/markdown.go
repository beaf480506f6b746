package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/concierge/pkg/render"
)

// renderSpans styles inline spans. Links show their URL after the label since
// terminals cannot follow them reliably.
func renderSpans(spans []render.Span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case render.SpanBold:
			b.WriteString(lipgloss.NewStyle().Bold(true).Render(s.Text))
		case render.SpanItalic:
			b.WriteString(lipgloss.NewStyle().Italic(true).Render(s.Text))
		case render.SpanCode:
			b.WriteString(codeStyle.Render(s.Text))
		case render.SpanLink:
			b.WriteString(linkStyle.Render(s.Text))
			b.WriteString(urlStyle.Render(" (" + s.URL + ")"))
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// RenderNodes lays out block nodes for a terminal of the given width.
func RenderNodes(nodes []render.Node, width int) string {
	if width < 10 {
		width = 10
	}
	wrap := lipgloss.NewStyle().Width(width)
	var lines []string
	for _, n := range nodes {
		switch n.Kind {
		case render.NodeParagraph:
			lines = append(lines, wrap.Render(renderSpans(n.Spans)))
		case render.NodeList:
			for i, item := range n.Items {
				marker := "• "
				if n.ListKind == render.ListNumbered {
					marker = fmt.Sprintf("%d. ", i+1)
				}
				body := lipgloss.NewStyle().Width(width - lipgloss.Width(marker)).Render(renderSpans(item))
				lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, marker, body))
			}
		case render.NodeBreak:
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}
