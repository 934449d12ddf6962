package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/polardash/internal/domain"
)

// sortOptions lists the orders offered by the picker with a short explanation.
var sortOptions = []struct {
	sort domain.IssueSortBy
	name string
	desc string
}{
	{domain.SortNewest, "Newest", "Most recently created issues first"},
	{domain.SortPledgedAmountDesc, "Pledged amount", "Largest total pledged first"},
	{domain.SortRelevance, "Relevance", "Polar's ranking of backer interest"},
	{domain.SortDependenciesDefault, "Dependencies", "Default order of the dependencies tab"},
	{domain.SortMostPositiveReactions, "Most reactions", "Most 👍 reactions first"},
	{domain.SortMostEngagement, "Most engagement", "Most comments and reactions first"},
}

// sortItem wraps a sort order for use in bubbles/list.
type sortItem struct {
	sort domain.IssueSortBy
	name string
	desc string
}

func (i sortItem) FilterValue() string {
	return i.name
}

func (i sortItem) Title() string {
	return i.name
}

func (i sortItem) Description() string {
	return i.desc
}

// sortDelegate is a custom item delegate for sort items.
type sortDelegate struct {
	current domain.IssueSortBy
}

func (d sortDelegate) Height() int                             { return 2 }
func (d sortDelegate) Spacing() int                            { return 1 }
func (d sortDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d sortDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(sortItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())
	if i.sort == d.current {
		str += " ✓"
	}
	desc := i.Description()

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(desc))
	}
}

// SortPickerModel lets the user choose the dashboard sort order.
type SortPickerModel struct {
	list list.Model
}

// NewSortPickerModel creates a picker with the current order preselected.
func NewSortPickerModel(current domain.IssueSortBy) SortPickerModel {
	items := make([]list.Item, len(sortOptions))
	selected := 0
	for i, o := range sortOptions {
		items[i] = sortItem{sort: o.sort, name: o.name, desc: o.desc}
		if o.sort == current {
			selected = i
		}
	}

	l := list.New(items, sortDelegate{current: current}, 80, 20)
	l.Title = "Sort Issues By"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = TitleStyle
	l.Select(selected)

	return SortPickerModel{
		list: l,
	}
}

// Init initializes the model.
func (m SortPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m SortPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg {
				return pickerCancelledMsg{}
			}
		case "enter":
			if item, ok := m.list.SelectedItem().(sortItem); ok {
				return m, func() tea.Msg {
					return SortSelectedMsg{Sort: item.sort}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m SortPickerModel) View() string {
	return m.list.View()
}
