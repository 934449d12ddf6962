package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var helpOverlayStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("99")).
	Padding(1, 2).
	MarginTop(1)

// HelpModel renders a screen's key map, either as a full overlay or as the
// one-line footer.
type HelpModel struct {
	title  string
	help   help.Model
	keymap help.KeyMap
}

// NewHelpModel creates the help for one screen.
func NewHelpModel(title string, keymap help.KeyMap) HelpModel {
	return HelpModel{title: title, help: help.New(), keymap: keymap}
}

// View renders the overlay. notes are printed dimmed below the keys.
func (m HelpModel) View(width int, notes ...string) string {
	m.help.Width = width - 8 // padding and border
	m.help.ShowAll = true

	parts := []string{titleStyle.Render(m.title), m.help.View(m.keymap)}
	if len(notes) > 0 {
		parts = append(parts, dimStyle.Render(strings.Join(notes, "\n")))
	}
	return helpOverlayStyle.Render(strings.Join(parts, "\n\n"))
}

// ShortView renders the one-line footer.
func (m HelpModel) ShortView(width int) string {
	m.help.Width = width
	m.help.ShowAll = false
	return m.help.View(m.keymap)
}
