package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// BannerColor selects the banner palette.
type BannerColor int

const (
	BannerDefault BannerColor = iota
	BannerMuted
	BannerRed
	BannerGreen
)

var bannerBase = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

func (c BannerColor) style() lipgloss.Style {
	switch c {
	case BannerMuted:
		return bannerBase.BorderForeground(lipgloss.Color("238")).Foreground(lipgloss.Color("245"))
	case BannerRed:
		return bannerBase.BorderForeground(lipgloss.Color("124")).Foreground(lipgloss.Color("196"))
	case BannerGreen:
		return bannerBase.BorderForeground(lipgloss.Color("28")).Foreground(lipgloss.Color("34"))
	default:
		return bannerBase.BorderForeground(lipgloss.Color("62")).Foreground(lipgloss.Color("252"))
	}
}

// Banner is a bordered notice with an optional right-aligned slot, usually
// holding key hints for the banner's actions.
type Banner struct {
	Color BannerColor
	Body  string
	Right string
}

// Render draws the banner at the given total width.
func (b Banner) Render(width int) string {
	style := b.Color.style()
	inner := width - style.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	// Width covers padding but not the border.
	style = style.Width(width - style.GetHorizontalBorderSize())

	if b.Right == "" {
		return style.Render(wordwrap.String(b.Body, inner))
	}

	rightWidth := lipgloss.Width(b.Right)
	bodyWidth := inner - rightWidth - 2
	if bodyWidth < 10 {
		// Not enough room side by side; stack the slot under the body.
		body := wordwrap.String(b.Body, inner) + "\n" + dimStyle.Render(b.Right)
		return style.Render(body)
	}

	body := wordwrap.String(b.Body, bodyWidth)
	lines := strings.Split(body, "\n")
	first := lines[0]
	padding := inner - lipgloss.Width(first) - rightWidth
	if padding < 2 {
		padding = 2
	}
	lines[0] = first + strings.Repeat(" ", padding) + dimStyle.Render(b.Right)
	return style.Render(strings.Join(lines, "\n"))
}
