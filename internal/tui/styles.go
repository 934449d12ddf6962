package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/polardash/internal/domain"
)

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // Purple
			MarginBottom(1)

	// SelectedItemStyle is used for highlighted/selected items.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")). // Light purple
				Bold(true)

	// NormalItemStyle is used for non-selected items.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// PromptStyle is used for prompt text.
	PromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")). // Light blue
			MarginBottom(1)

	// HelpStyle is used for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Dark gray
			MarginTop(1)
)

// Shared inline styles.
var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	moneyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)
)

var pledgeBadgeBase = lipgloss.NewStyle().Padding(0, 1)

// pledgeStateStyle returns the badge style for a pledge state.
func pledgeStateStyle(s domain.PledgeState) lipgloss.Style {
	switch s {
	case domain.PledgeStateDisputed, domain.PledgeStateChargeDisputed:
		return pledgeBadgeBase.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160"))
	case domain.PledgeStatePending:
		return pledgeBadgeBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("78"))
	case domain.PledgeStateConfirmationPending:
		return pledgeBadgeBase.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("33"))
	case domain.PledgeStateCreated:
		return pledgeBadgeBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("117"))
	default:
		return pledgeBadgeBase.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238"))
	}
}

// money renders cents as "$1,234.56", dropping zero cents.
func money(m domain.Money) string {
	return "$" + domain.Dollars(m.Amount, false, true)
}
