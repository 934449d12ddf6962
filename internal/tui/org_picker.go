package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/polardash/internal/domain"
)

// orgItem represents an organization in the list.
type orgItem struct {
	org domain.Organization
}

func (i orgItem) FilterValue() string { return i.org.Name }

// orgItemDelegate handles rendering of organization items.
type orgItemDelegate struct{}

func (d orgItemDelegate) Height() int                             { return 1 }
func (d orgItemDelegate) Spacing() int                            { return 0 }
func (d orgItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d orgItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(orgItem)
	if !ok {
		return
	}

	// Format: name (platform)
	platform := string(i.org.Platform)
	if platform == "" {
		platform = string(domain.PlatformGitHub)
	}
	str := fmt.Sprintf("%s (%s)", i.org.Name, platform)

	fn := NormalItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return SelectedItemStyle.Render("> " + s[0])
		}
	}

	fmt.Fprint(w, fn(str))
}

// OrgPickerModel lets the user select one of their organizations.
type OrgPickerModel struct {
	list        list.Model
	orgs        []domain.Organization
	cancellable bool
	err         error
}

// NewOrgPickerModel creates a new organization picker. A cancellable picker
// returns to the previous screen on esc instead of quitting.
func NewOrgPickerModel(orgs []domain.Organization, cancellable bool) OrgPickerModel {
	items := make([]list.Item, len(orgs))
	for i, org := range orgs {
		items[i] = orgItem{org: org}
	}

	// Start with a reasonable default - will be resized by WindowSizeMsg
	l := list.New(items, orgItemDelegate{}, 80, 20)
	l.Title = "Select Organization"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle
	l.Styles.PaginationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	l.Styles.HelpStyle = HelpStyle

	return OrgPickerModel{
		list:        l,
		orgs:        orgs,
		cancellable: cancellable,
	}
}

// Init initializes the model.
func (m OrgPickerModel) Init() tea.Cmd {
	// Request window size on init to properly size the list
	return tea.WindowSize()
}

// Update handles messages.
func (m OrgPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if m.list.SettingFilter() {
				break
			}
			if item, ok := m.list.SelectedItem().(orgItem); ok {
				return m, func() tea.Msg {
					return OrgSelectedMsg{Org: item.org}
				}
			}
		case "q", "esc":
			if !m.list.SettingFilter() {
				if m.cancellable {
					return m, func() tea.Msg { return pickerCancelledMsg{} }
				}
				return m, func() tea.Msg {
					return QuitMsg{}
				}
			}
		}

	case tea.WindowSizeMsg:
		// Use full terminal width and height (minus small margin for borders)
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m OrgPickerModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if len(m.orgs) == 0 {
		return PromptStyle.Render("You are not a member of any organization.") + "\n" +
			HelpStyle.Render("Press q to quit")
	}
	return m.list.View()
}
