package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Progress lipgloss.Style
	Error    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Card     lipgloss.Style
	Help     lipgloss.Style
	Key      lipgloss.Style
	Level    map[string]lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")). // Blood red
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			Italic(true),
		Progress: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208")), // Pumpkin
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("88")). // Dark red
			Padding(1, 2),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208")),
		Level: map[string]lipgloss.Style{
			"Easy Watching for the Faint of Heart": lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
			"Scare Me Some":                        lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
			"Drag Me to Hell":                      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			"Paper Cut":                            lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
			"Missing Limbs":                        lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
			"Buckets & Buckets":                    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		},
	}
}

// level renders a scare or gore level in its color. Unknown levels render
// as plain values.
func (s Styles) level(v string) string {
	if st, ok := s.Level[v]; ok {
		return st.Render(v)
	}
	return s.Value.Render(v)
}
