package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/polardash/internal/domain"
)

// repoItem wraps a repository for use in bubbles/list. The zero repo stands
// for "all repositories".
type repoItem struct {
	repo domain.Repository
	all  bool
}

func (i repoItem) FilterValue() string {
	if i.all {
		return "all"
	}
	return i.repo.Name
}

func (i repoItem) Title() string {
	if i.all {
		return "All repositories"
	}
	return i.repo.Name
}

func (i repoItem) Description() string {
	if i.all {
		return "Every repository of the organization"
	}
	return i.repo.FullName()
}

// repoDelegate is a custom item delegate for repository items.
type repoDelegate struct {
	current string
}

func (d repoDelegate) Height() int                             { return 2 }
func (d repoDelegate) Spacing() int                            { return 1 }
func (d repoDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d repoDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(repoItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())
	if (i.all && d.current == "") || (!i.all && i.repo.Name == d.current) {
		str += " ✓"
	}
	desc := i.Description()

	if index == m.Index() {
		// Selected item
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		// Normal item
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(desc))
	}
}

// RepoPickerModel displays the repositories of an organization.
type RepoPickerModel struct {
	list list.Model
	err  error
}

// NewRepoPickerModel creates a new RepoPickerModel. current is the repository
// the dashboard is narrowed to, empty for all.
func NewRepoPickerModel(org string, repos []domain.Repository, current string) RepoPickerModel {
	items := make([]list.Item, 0, len(repos)+1)
	items = append(items, repoItem{all: true})
	for _, r := range repos {
		items = append(items, repoItem{repo: r})
	}

	l := list.New(items, repoDelegate{current: current}, 80, 20)
	l.Title = fmt.Sprintf("Repositories of %s", org)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	return RepoPickerModel{
		list: l,
	}
}

// Init initializes the model.
func (m RepoPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m RepoPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case tea.KeyMsg:
		if m.list.SettingFilter() {
			break
		}
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg {
				return pickerCancelledMsg{}
			}
		case "enter":
			if item, ok := m.list.SelectedItem().(repoItem); ok {
				return m, func() tea.Msg {
					if item.all {
						return RepoSelectedMsg{}
					}
					return RepoSelectedMsg{Repo: item.repo.Name}
				}
			}
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m RepoPickerModel) View() string {
	view := m.list.View()

	if m.err != nil {
		errorMsg := ErrorStyle.Render(fmt.Sprintf("\nError: %v", m.err))
		view += errorMsg
	}

	return view
}
