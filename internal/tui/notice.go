package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/polardash/internal/dashboard"
	"github.com/h0rv/polardash/internal/domain"
)

// NoticeModel is shown when the user has no organization to land on: either
// the personal pledge list or the repository onboarding.
type NoticeModel struct {
	kind    dashboard.RouteKind
	pledges []domain.Pledge
	cursor  int
	width   int
	height  int
}

// NewNoticeModel creates the screen for RoutePersonal or RouteConnectRepos.
func NewNoticeModel(kind dashboard.RouteKind, pledges []domain.Pledge) NoticeModel {
	return NoticeModel{kind: kind, pledges: pledges}
}

// Init does nothing; the content is already loaded.
func (m NoticeModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m NoticeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, func() tea.Msg { return QuitMsg{} }
		case "r":
			return m, func() tea.Msg { return reloadRootMsg{} }
		case "B":
			return m, func() tea.Msg { return openBackofficeMsg{} }
		case "j", "down":
			if m.cursor < len(m.pledges)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "o":
			if m.cursor < len(m.pledges) {
				return m, openURLCmd(m.pledges[m.cursor].Issue.URL())
			}
		}
	}
	return m, nil
}

// View renders the notice.
func (m NoticeModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	if m.kind == dashboard.RouteConnectRepos {
		banner := Banner{
			Color: BannerDefault,
			Body: "Connect a repository to get started. Install the Polar GitHub App " +
				"on your organization or repositories, then press r to reload.",
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			TitleStyle.Render("Welcome to Polar"),
			banner.Render(width),
			HelpStyle.Render("r: reload • q: quit"),
		)
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Your pledges") + "\n")
	for i, p := range m.pledges {
		line := fmt.Sprintf("%s#%d %s  %s  %s",
			p.Issue.Repository.FullName(), p.Issue.Number,
			truncate(p.Issue.Title, max(width-40, 10)),
			moneyStyle.Render(money(p.Amount)),
			pledgeStateStyle(p.State).Render(strings.ReplaceAll(string(p.State), "_", " ")),
		)
		if i == m.cursor {
			b.WriteString(SelectedItemStyle.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n" + HelpStyle.Render("↑/↓: navigate • o: open issue • r: reload • B: backoffice • q: quit"))
	return b.String()
}

type reloadRootMsg struct{}
