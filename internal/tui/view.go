package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/pulse/internal/aggregate"
)

const helpText = "enter search • esc quit"

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("pulse"))
	b.WriteString("\n")

	rows := lipgloss.JoinVertical(lipgloss.Left,
		m.row("views", m.countValue(m.snapshot.ViewCount)),
		m.row("comments", m.countValue(m.snapshot.CommentCount)),
		m.row("found", m.verdictValue(m.snapshot.SearchResult)),
	)
	b.WriteString(m.styles.Box.Render(rows))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(helpText))
	b.WriteString("\n")

	return b.String()
}

func (m Model) row(label, value string) string {
	return m.styles.Label.Render(label) + value
}

func (m Model) countValue(c aggregate.Count) string {
	if !c.Known {
		return m.styles.Unknown.Render(c.String())
	}
	return m.styles.Value.Render(c.String())
}

func (m Model) verdictValue(v aggregate.Verdict) string {
	switch {
	case !v.Known:
		return m.styles.Unknown.Render(v.String())
	case v.Found:
		return m.styles.Found.Render(v.String())
	default:
		return m.styles.NotFound.Render(v.String())
	}
}

func (m Model) statusLine() string {
	text := truncate(m.status.Text, m.width)
	switch m.status.Kind {
	case StatusSearching, StatusResolved:
		return m.styles.Pending.Render(text)
	case StatusRetrying:
		return m.styles.Warning.Render(text)
	case StatusRejected, StatusError:
		return m.styles.Error.Render(text)
	default:
		return ""
	}
}

// truncate shortens s to width visual columns, adding "..." if truncated.
// A non-positive width means the window size is not known yet.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	if width <= 3 {
		return "..."
	}
	return ansi.Truncate(s, width, "...")
}
