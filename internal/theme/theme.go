package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared by the picker and the
// snippet listings.
type Styles struct {
	Item                  *lipgloss.Style
	ItemIndicator         *lipgloss.Style
	SelectedItemIndicator *lipgloss.Style
	SelectedItem          *lipgloss.Style
	Match                 *lipgloss.Style
	SelectedMatch         *lipgloss.Style
	Prompt                *lipgloss.Style
	Filter                *lipgloss.Style
	Counter               *lipgloss.Style
	Footer                *lipgloss.Style
	Error                 *lipgloss.Style
	Info                  *lipgloss.Style
}

// New builds the standard style set for r. The renderer decides the colour
// profile, so styles built for a pseudo terminal or a buffer degrade to plain
// text there.
func New(r *lipgloss.Renderer) *Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Styles{
		Item: ptr(
			r.NewStyle().Foreground(lipgloss.Color("249")),
		),
		ItemIndicator: ptr(
			r.NewStyle().Foreground(lipgloss.Color("238")),
		),
		SelectedItemIndicator: ptr(
			r.NewStyle().Foreground(lipgloss.Color("33")).Background(lipgloss.Color("238")),
		),
		SelectedItem: ptr(
			r.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
		),
		Match: ptr(
			r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		),
		SelectedMatch: ptr(
			r.NewStyle().Foreground(lipgloss.Color("214")).Background(lipgloss.Color("238")).Bold(true),
		),
		Prompt: ptr(
			r.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
		),
		Filter: ptr(
			r.NewStyle().Foreground(lipgloss.Color("255")),
		),
		Counter: ptr(
			r.NewStyle().Foreground(lipgloss.Color("241")),
		),
		Footer: ptr(
			r.NewStyle().Foreground(lipgloss.Color("241")),
		),
		Error: ptr(
			r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		),
		Info: ptr(
			r.NewStyle().Foreground(lipgloss.Color("249")),
		),
	}
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
