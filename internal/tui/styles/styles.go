package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds the rendered styles of the dashboard for one palette.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Unknown  lipgloss.Style
	Found    lipgloss.Style
	NotFound lipgloss.Style
	Pending  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Box      lipgloss.Style
	Prompt   lipgloss.Style
}

// New builds the dashboard styles from a palette.
func New(p *ColorPalette) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			MarginBottom(1),
		Label: lipgloss.NewStyle().
			Foreground(p.Muted).
			Width(12),
		Value: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),
		Unknown: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),
		Found: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Secondary),
		NotFound: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Error),
		Pending: lipgloss.NewStyle().
			Foreground(p.Muted),
		Warning: lipgloss.NewStyle().
			Foreground(p.Warning),
		Error: lipgloss.NewStyle().
			Foreground(p.Error),
		Help: lipgloss.NewStyle().
			Foreground(p.Muted).
			MarginTop(1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 2),
		Prompt: lipgloss.NewStyle().
			Foreground(p.Primary),
	}
}

// ForTheme builds the dashboard styles for a theme name.
func ForTheme(name string) Styles {
	return New(GetPalette(ThemeName(name)))
}
