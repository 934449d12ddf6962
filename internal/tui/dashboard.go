package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/polardash/internal/dashboard"
	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/events"
	"github.com/h0rv/polardash/internal/filters"
	"github.com/h0rv/polardash/internal/store"
)

// Layout constants
const (
	minColumnWidth = 24
	maxColumnWidth = 45
	pageJumpSize   = 10 // Number of issues to jump with Ctrl+D/U
)

// otherStatus collects issues whose status is not one of the enabled columns.
const otherStatus domain.IssueStatus = ""

// statusOrder is the fixed column order; index+1 is the toggle key.
var statusOrder = []domain.IssueStatus{
	domain.IssueStatusBacklog,
	domain.IssueStatusTriaged,
	domain.IssueStatusInProgress,
	domain.IssueStatusPullRequest,
	domain.IssueStatusClosed,
}

var statusNames = map[domain.IssueStatus]string{
	domain.IssueStatusBacklog:     "Backlog",
	domain.IssueStatusTriaged:     "Triaged",
	domain.IssueStatusInProgress:  "In Progress",
	domain.IssueStatusPullRequest: "Pull Request",
	domain.IssueStatusClosed:      "Closed",
	otherStatus:                   "Other",
}

var sortNames = map[domain.IssueSortBy]string{
	domain.SortNewest:                "newest",
	domain.SortPledgedAmountDesc:     "pledged",
	domain.SortRelevance:             "relevance",
	domain.SortDependenciesDefault:   "dependencies",
	domain.SortMostPositiveReactions: "reactions",
	domain.SortMostEngagement:        "engagement",
}

// Styles for the dashboard view - base styles without width/height (set dynamically)
var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	issueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedIssueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	toggleOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))
)

// subscription is the live event feed of the dashboard's organization.
type subscription struct {
	topic  string
	cancel func()
	ch     <-chan []byte
}

// DashboardModel is the issue dashboard of one organization, optionally
// narrowed to a repository. Issues are laid out in one column per enabled status.
type DashboardModel struct {
	// Dependencies
	deps  Deps
	store *store.Store

	// Query state
	org     domain.Organization
	repo    string
	filters filters.Filters
	latch   filters.Latch
	pending *store.PageRequest
	sub     *subscription

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	searchInput textinput.Model

	// Board state
	columns        []domain.IssueStatus
	columnIssues   map[domain.IssueStatus][]domain.Issue
	selectedColumn int
	columnOffset   int
	selectedIssue  map[domain.IssueStatus]int
	scrollOffset   map[domain.IssueStatus]int

	// View state
	width            int
	height           int
	showHelp         bool
	searchMode       bool
	extensionSkipped bool
	toast            *dashboard.Toast
	errorToast       string
}

// NewDashboardModel creates the dashboard for org. query holds the filters of
// a dashboard URL and is applied once; nil keeps the defaults. The first page
// request is issued by Init.
func NewDashboardModel(deps Deps, org domain.Organization, repo string, query url.Values, toast *dashboard.Toast) DashboardModel {
	deps = deps.withDefaults()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Search issues..."
	ti.Prompt = "/ "

	m := DashboardModel{
		deps:             deps,
		store:            store.New(deps.Ctx),
		org:              org,
		repo:             repo,
		filters:          filters.Default(),
		keymap:           DefaultKeyMap(),
		help:             NewHelpModel("Dashboard keys", DefaultKeyMap()),
		spinner:          sp,
		searchInput:      ti,
		columnIssues:     make(map[domain.IssueStatus][]domain.Issue),
		selectedIssue:    make(map[domain.IssueStatus]int),
		scrollOffset:     make(map[domain.IssueStatus]int),
		extensionSkipped: deps.Prefs.ChromeExtensionSkipped(),
		toast:            toast,
	}
	if f, ok := m.latch.Apply(m.filters, query); ok {
		m.filters = f
	}
	m.searchInput.SetValue(m.filters.Query)
	m.pending, _ = m.store.SetKey(m.key())
	(&m).rebuildColumns()
	return m
}

// Init starts the first page fetch and the event subscription.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		m.fetch(m.pending),
		m.subscribe(),
	)
}

// Close cancels the in-flight request and the event subscription.
func (m DashboardModel) Close() {
	m.store.Close()
	if m.sub != nil {
		m.sub.cancel()
	}
}

// Org returns the organization shown.
func (m DashboardModel) Org() domain.Organization { return m.org }

// Repo returns the repository the dashboard is narrowed to, empty for all.
func (m DashboardModel) Repo() string { return m.repo }

// Filters returns the current filters.
func (m DashboardModel) Filters() filters.Filters { return m.filters }

// Location returns the dashboard URL query reproducing the current view.
func (m DashboardModel) Location() string {
	return filters.Location{Organization: m.org.Name, Repo: m.repo}.String(m.filters)
}

// SetRepo narrows the dashboard to repo and refetches.
func (m *DashboardModel) SetRepo(repo string) tea.Cmd {
	m.repo = repo
	return m.requery()
}

// SetSort changes the sort order and refetches.
func (m *DashboardModel) SetSort(sort domain.IssueSortBy) tea.Cmd {
	m.filters.Sort = sort
	return m.requery()
}

func (m DashboardModel) key() store.QueryKey {
	key := store.NewQueryKey(m.org.Name, m.repo, m.filters)
	key.Platform = m.deps.Platform
	return key
}

// requery applies the current filters. A changed key restarts pagination.
func (m *DashboardModel) requery() tea.Cmd {
	req, changed := m.store.SetKey(m.key())
	if !changed {
		return nil
	}
	m.deps.Logger.Debug("dashboard query changed", "org", m.org.Name, "repo", m.repo, "location", m.Location())
	m.errorToast = ""
	m.selectedIssue = make(map[domain.IssueStatus]int)
	m.scrollOffset = make(map[domain.IssueStatus]int)
	m.rebuildColumns()
	return m.fetch(req)
}

// fetch runs req off the UI loop.
func (m DashboardModel) fetch(req *store.PageRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	client := m.deps.Polar
	origin := m.store
	return func() tea.Msg {
		return pageResultMsg{origin: origin, result: req.Run(client)}
	}
}

func (m DashboardModel) subscribe() tea.Cmd {
	topic := events.Topic(m.deps.Platform, m.org.Name)
	subscriber := m.deps.Events
	return func() tea.Msg {
		ch, cancel, err := subscriber.Subscribe(topic)
		if err != nil {
			return subscribeFailedMsg{topic: topic, err: err}
		}
		return subscribedMsg{sub: &subscription{topic: topic, cancel: cancel, ch: ch}}
	}
}

func waitForEvent(sub *subscription) tea.Cmd {
	return func() tea.Msg {
		payload, ok := <-sub.ch
		if !ok {
			return eventsClosedMsg{topic: sub.topic}
		}
		return eventMsg{topic: sub.topic, payload: payload}
	}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).adjustColumnScroll()
		return m, nil

	case pageResultMsg:
		if msg.origin != m.store {
			return m, nil
		}
		err := m.store.Receive(msg.result)
		switch {
		case errors.Is(err, store.ErrStale):
			m.deps.Logger.Debug("dropping stale page", "generation", msg.result.Generation)
			return m, nil
		case err != nil:
			m.deps.Logger.Warn("dashboard fetch failed", "org", m.org.Name, "err", err)
			m.errorToast = fmt.Sprintf("Load failed: %v", err)
		default:
			m.errorToast = ""
		}
		(&m).rebuildColumns()
		return m, nil

	case subscribedMsg:
		if msg.sub.topic != events.Topic(m.deps.Platform, m.org.Name) {
			msg.sub.cancel()
			return m, nil
		}
		if m.sub != nil {
			m.sub.cancel()
		}
		m.sub = msg.sub
		m.deps.Logger.Debug("subscribed to events", "topic", msg.sub.topic)
		return m, waitForEvent(m.sub)

	case subscribeFailedMsg:
		m.deps.Logger.Warn("event subscription failed", "topic", msg.topic, "err", msg.err)
		return m, nil

	case eventMsg:
		if m.sub == nil || msg.topic != m.sub.topic {
			return m, nil
		}
		m.deps.Logger.Debug("event received, refetching", "topic", msg.topic, "bytes", len(msg.payload))
		req, err := m.store.Invalidate()
		if err != nil {
			return m, waitForEvent(m.sub)
		}
		(&m).rebuildColumns()
		return m, tea.Batch(m.fetch(req), waitForEvent(m.sub))

	case eventsClosedMsg:
		return m, nil

	case openURLFailedMsg:
		m.errorToast = fmt.Sprintf("Open failed: %v", msg.err)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, func() tea.Msg { return QuitMsg{} }
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Search mode
	if m.searchMode {
		switch msg.String() {
		case "enter":
			m.searchMode = false
			m.searchInput.Blur()
			m.filters.Query = strings.TrimSpace(m.searchInput.Value())
			cmd := (&m).requery()
			return m, cmd
		case "esc":
			m.searchMode = false
			m.searchInput.Blur()
			m.searchInput.SetValue(m.filters.Query)
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	// Any key dismisses the notification toast.
	m.toast = nil

	switch msg.String() {
	case "q":
		return m, func() tea.Msg { return QuitMsg{} }
	case "?":
		m.showHelp = true
	case "/":
		m.searchMode = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "1", "2", "3", "4", "5":
		status := statusOrder[int(msg.Runes[0]-'1')]
		m.filters = filters.ToggleStatus(m.filters, status)
		cmd := (&m).requery()
		return m, cmd
	case "s":
		m.filters.Sort = filters.NextSort(m.filters.Sort)
		cmd := (&m).requery()
		return m, cmd
	case "S":
		current := m.filters.Sort
		return m, func() tea.Msg { return openSortPickerMsg{current: current} }
	case "p":
		m.filters.OnlyPledged = !m.filters.OnlyPledged
		cmd := (&m).requery()
		return m, cmd
	case "b":
		m.filters.OnlyBadged = !m.filters.OnlyBadged
		cmd := (&m).requery()
		return m, cmd
	case "tab":
		(&m).switchTab()
		cmd := (&m).requery()
		return m, cmd
	case "h", "left":
		if m.selectedColumn > 0 {
			m.selectedColumn--
			(&m).adjustColumnScroll()
		}
	case "l", "right":
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			(&m).adjustColumnScroll()
		}
	case "j", "down":
		cmd := (&m).moveIssueSelection(1)
		return m, cmd
	case "k", "up":
		(&m).moveIssueSelection(-1)
	case "g":
		(&m).jumpToIssue(0)
	case "G":
		(&m).jumpToIssue(-1)
	case "ctrl+d":
		cmd := (&m).moveIssueSelection(pageJumpSize)
		return m, cmd
	case "ctrl+u":
		(&m).moveIssueSelection(-pageJumpSize)
	case "r":
		req, err := m.store.Invalidate()
		if err != nil {
			return m, nil
		}
		m.errorToast = ""
		(&m).rebuildColumns()
		return m, m.fetch(req)
	case "L":
		cmd := (&m).loadMore()
		return m, cmd
	case "o":
		if issue := m.getSelectedIssue(); issue != nil {
			return m, openURLCmd(issue.URL())
		}
	case "enter":
		if issue := m.getSelectedIssue(); issue != nil {
			selected := *issue
			return m, func() tea.Msg { return openDetailMsg{issue: selected} }
		}
	case "R":
		return m, func() tea.Msg { return openRepoPickerMsg{} }
	case "O":
		return m, func() tea.Msg { return openOrgPickerMsg{} }
	case "B":
		return m, func() tea.Msg { return openBackofficeMsg{} }
	case "i":
		if !m.extensionSkipped {
			(&m).skipExtension()
			return m, openURLCmd(ChromeExtensionURL)
		}
	case "x":
		if !m.extensionSkipped {
			(&m).skipExtension()
		}
	}

	return m, nil
}

func (m *DashboardModel) switchTab() {
	if m.filters.Tab == domain.ListTypeDependencies {
		m.filters.Tab = domain.ListTypeIssues
		if m.filters.Sort == domain.SortDependenciesDefault {
			m.filters.Sort = domain.SortNewest
		}
		return
	}
	m.filters.Tab = domain.ListTypeDependencies
	if m.filters.Sort == domain.SortNewest {
		m.filters.Sort = domain.SortDependenciesDefault
	}
}

func (m *DashboardModel) skipExtension() {
	m.extensionSkipped = true
	if err := m.deps.Prefs.SkipChromeExtension(); err != nil {
		m.deps.Logger.Warn("saving preference failed", "key", "chrome_extension_skip", "err", err)
	}
}

// loadMore requests the next page. It is a no-op while a page is in flight.
func (m *DashboardModel) loadMore() tea.Cmd {
	req, ok := m.store.FetchNextPage()
	if !ok {
		return nil
	}
	return m.fetch(req)
}

// View renders the dashboard - fills entire terminal exactly
func (m DashboardModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderSecondHeader(width))
	sections = append(sections, m.renderBanners(width)...)
	if m.searchMode {
		sections = append(sections, m.searchInput.View())
	}

	used := 0
	for _, s := range sections {
		used += lipgloss.Height(s)
	}
	boardHeight := height - used
	if boardHeight < 5 {
		boardHeight = 5
	}

	var mainContent string
	switch {
	case m.showHelp:
		helpContent := m.help.View(width, "Current view: "+m.Location())
		helpLines := strings.Split(helpContent, "\n")
		if len(helpLines) > boardHeight {
			helpLines = helpLines[:boardHeight]
		}
		mainContent = strings.Join(helpLines, "\n")
	case len(m.columns) == 0:
		emptyMsg := "No statuses selected. Press 1-5 to toggle statuses."
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center, emptyMsg)
	case m.store.IsInitialLoading():
		loadingMsg := m.spinner.View() + " Loading issues..."
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center, loadingMsg)
	case len(m.store.Pages()) == 0 && m.store.Err() != nil:
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center,
			"Could not load issues. Press 'r' to retry.")
	case len(m.store.Issues()) == 0:
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center,
			"No issues match these filters.")
	default:
		mainContent = m.renderBoard(width, boardHeight)
	}
	sections = append(sections, mainContent)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title on the left and query status on the right.
func (m DashboardModel) renderHeader(width int) string {
	title := m.org.Name
	if m.repo != "" {
		title += "/" + m.repo
	}
	if m.filters.Tab == domain.ListTypeDependencies {
		title += " · Dependencies"
	} else {
		title += " · Issues"
	}

	var statusParts []string
	if m.store.IsLoading() || m.store.IsFetchingNextPage() {
		statusParts = append(statusParts, m.spinner.View()+"loading")
	}

	flags := dashboard.Evaluate(m.filters, m.store.IsLoading(), m.store.Pages())
	loaded := len(m.store.Issues())
	if flags.HasTotal {
		statusParts = append(statusParts, fmt.Sprintf("%d of %d issues", loaded, flags.TotalCount))
	}
	if m.store.HasNextPage() && !m.store.IsFetchingNextPage() {
		statusParts = append(statusParts, "[L]more")
	}

	statusParts = append(statusParts, "sort:"+sortNames[m.filters.Sort])
	if m.filters.Query != "" {
		statusParts = append(statusParts, "/"+m.filters.Query)
	}
	statusParts = append(statusParts, "[?]help")

	status := strings.Join(statusParts, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}

	return titleStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(status)
}

// renderSecondHeader renders the status toggles and the selection position.
func (m DashboardModel) renderSecondHeader(width int) string {
	enabled := make(map[domain.IssueStatus]bool)
	for _, s := range filters.Statuses(m.filters) {
		enabled[s] = true
	}

	var toggles []string
	for i, s := range statusOrder {
		label := fmt.Sprintf("[%d]%s", i+1, strings.ToLower(statusNames[s]))
		if enabled[s] {
			toggles = append(toggles, toggleOnStyle.Render(label))
		} else {
			toggles = append(toggles, dimStyle.Render(label))
		}
	}
	for _, t := range []struct {
		key  string
		name string
		on   bool
	}{
		{"p", "pledged", m.filters.OnlyPledged},
		{"b", "badged", m.filters.OnlyBadged},
	} {
		label := fmt.Sprintf("[%s]%s", t.key, t.name)
		if t.on {
			toggles = append(toggles, toggleOnStyle.Render(label))
		} else {
			toggles = append(toggles, dimStyle.Render(label))
		}
	}
	left := strings.Join(toggles, " ")

	right := ""
	if m.errorToast != "" {
		right = errorStyle.Render(m.errorToast)
	} else if len(m.columns) > 0 {
		status := m.columns[m.selectedColumn]
		issues := m.columnIssues[status]
		colPos := fmt.Sprintf("col %d/%d", m.selectedColumn+1, len(m.columns))
		if len(issues) > 0 {
			right = dimStyle.Render(fmt.Sprintf("%s | issue %d/%d", colPos, m.selectedIssue[status]+1, len(issues)))
		} else {
			right = dimStyle.Render(colPos)
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return left + strings.Repeat(" ", padding) + right
}

// renderBanners renders the notification, error, and onboarding banners.
func (m DashboardModel) renderBanners(width int) []string {
	var out []string

	if m.toast != nil {
		out = append(out, Banner{
			Color: BannerGreen,
			Body:  m.toast.Title + ": " + m.toast.Description,
			Right: "any key to dismiss",
		}.Render(width))
	}

	if err := m.store.Err(); err != nil && len(m.store.Pages()) == 0 {
		out = append(out, Banner{
			Color: BannerRed,
			Body:  err.Error(),
			Right: "[r]retry",
		}.Render(width))
	}

	if !m.extensionSkipped {
		out = append(out, Banner{
			Color: BannerDefault,
			Body: "Enhance GitHub Issues: the Polar extension adds pledges and insights " +
				"to the GitHub issue list.",
			Right: "[i]install [x]skip",
		}.Render(width))
	}

	if dashboard.ShowOnboardingBanner(m.filters, m.store.IsLoading(), m.store.Pages()) {
		out = append(out, Banner{
			Color: BannerMuted,
			Body: fmt.Sprintf("None of these issues carry the %q label yet. Add it to an issue "+
				"to embed a Polar badge and start receiving pledges.", dashboard.MarkerLabel),
		}.Render(width))
	}

	return out
}

// renderBoard renders the status columns within the given dimensions
// Implements horizontal scrolling (carousel) when columns overflow
func (m DashboardModel) renderBoard(totalWidth, totalHeight int) string {
	numCols := len(m.columns)
	if numCols == 0 {
		return ""
	}

	// lipgloss Border adds 2 lines (top + bottom) to the content height
	colContentHeight := totalHeight - 2
	if colContentHeight < 3 {
		colContentHeight = 3
	}

	visibleCols := m.visibleColumns(totalWidth)

	colWidth := totalWidth / visibleCols
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	// Content width inside column (minus border and padding: 2 border + 2 padding = 4)
	innerWidth := colWidth - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	startCol := m.columnOffset
	endCol := startCol + visibleCols
	if endCol > numCols {
		endCol = numCols
		startCol = endCol - visibleCols
		if startCol < 0 {
			startCol = 0
		}
	}

	columnViews := make([]string, 0, visibleCols+2)

	if startCol > 0 {
		columnViews = append(columnViews, scrollArrow("◀", colContentHeight+2))
	}

	for i := startCol; i < endCol; i++ {
		columnViews = append(columnViews, m.renderColumn(m.columns[i], i == m.selectedColumn, colWidth, colContentHeight, innerWidth))
	}

	if endCol < numCols {
		columnViews = append(columnViews, scrollArrow("▶", colContentHeight+2))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

func scrollArrow(arrow string, height int) string {
	return lipgloss.NewStyle().
		Width(2).
		Height(height).
		Foreground(lipgloss.Color("205")).
		Align(lipgloss.Center, lipgloss.Center).
		Render(arrow)
}

// renderColumn renders a single status column.
// innerHeight is the content area, not including the border.
func (m DashboardModel) renderColumn(status domain.IssueStatus, selected bool, width, innerHeight, innerWidth int) string {
	issues := m.columnIssues[status]

	headerText := fmt.Sprintf("%s (%d)", statusNames[status], len(issues))
	if n := statusKey(status); n > 0 {
		headerText = fmt.Sprintf("[%d] %s", n, headerText)
	}
	if lipgloss.Width(headerText) > innerWidth {
		headerText = truncate(headerText, innerWidth)
	}

	scrollOffset := m.scrollOffset[status]
	selectedIdx := m.selectedIssue[status]

	// One slot per line below the header.
	availableSlots := innerHeight - 1
	if availableSlots < 1 {
		availableSlots = 1
	}
	needUpIndicator := scrollOffset > 0
	if needUpIndicator {
		availableSlots--
	}

	endIdx := scrollOffset + availableSlots
	if endIdx > len(issues) {
		endIdx = len(issues)
	}
	needDownIndicator := false
	if endIdx < len(issues) {
		needDownIndicator = true
		availableSlots--
		endIdx = scrollOffset + availableSlots
		if endIdx > len(issues) {
			endIdx = len(issues)
		}
	}

	var lines []string
	lines = append(lines, columnHeaderStyle.Render(headerText))

	if needUpIndicator {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↑ %d more", scrollOffset)))
	}

	for i := scrollOffset; i < endIdx; i++ {
		text := m.formatIssueText(issues[i], innerWidth-2) // 2 for "> " or "  " prefix
		if selected && i == selectedIdx {
			lines = append(lines, selectedIssueStyle.Render("> "+text))
		} else {
			lines = append(lines, issueStyle.Render("  "+text))
		}
	}

	if remaining := len(issues) - endIdx; needDownIndicator && remaining > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↓ %d more", remaining)))
	}

	if len(issues) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}

	borderColor := lipgloss.Color("240")
	if selected {
		borderColor = lipgloss.Color("205")
	}

	// DO NOT use MaxHeight - it truncates the border!
	colStyle := lipgloss.NewStyle().
		Width(width-2).
		Height(innerHeight).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	return colStyle.Render(strings.Join(lines, "\n"))
}

// statusKey returns the toggle key of a status, 0 for the Other column.
func statusKey(s domain.IssueStatus) int {
	for i, o := range statusOrder {
		if o == s {
			return i + 1
		}
	}
	return 0
}

// formatIssueText formats an issue for display with max width,
// right-aligning the pledged amount and number.
func (m DashboardModel) formatIssueText(issue domain.Issue, maxWidth int) string {
	suffix := fmt.Sprintf("#%d", issue.Number)
	if m.repo == "" || m.filters.Tab == domain.ListTypeDependencies {
		suffix = issue.Repository.Name + suffix
	}
	pledged := ""
	if issue.PledgedAmount.Amount > 0 {
		pledged = money(issue.PledgedAmount)
	}

	suffixLen := lipgloss.Width(suffix)
	if pledged != "" {
		suffixLen += lipgloss.Width(pledged) + 1
	}

	availableForTitle := maxWidth - suffixLen - 1
	if availableForTitle < 5 {
		availableForTitle = 5
	}
	title := truncate(issue.Title, availableForTitle)

	padding := maxWidth - lipgloss.Width(title) - suffixLen
	if padding < 1 {
		padding = 1
	}

	out := title + strings.Repeat(" ", padding)
	if pledged != "" {
		out += moneyStyle.Render(pledged) + " "
	}
	return out + dimStyle.Render(suffix)
}

// truncate shortens s to n cells with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n < 2 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// rebuildColumns regroups the loaded issues into the enabled status columns.
func (m *DashboardModel) rebuildColumns() {
	m.columns = filters.Statuses(m.filters)

	enabled := make(map[domain.IssueStatus]bool, len(m.columns))
	for _, s := range m.columns {
		enabled[s] = true
	}

	m.columnIssues = make(map[domain.IssueStatus][]domain.Issue, len(m.columns)+1)
	for _, issue := range m.store.Issues() {
		status := issue.Status
		if !enabled[status] {
			status = otherStatus
		}
		m.columnIssues[status] = append(m.columnIssues[status], issue)
	}
	if len(m.columns) > 0 && len(m.columnIssues[otherStatus]) > 0 {
		m.columns = append(m.columns, otherStatus)
	}

	if m.selectedColumn >= len(m.columns) {
		m.selectedColumn = 0
	}

	for _, status := range m.columns {
		n := len(m.columnIssues[status])
		if m.selectedIssue[status] >= n {
			if n > 0 {
				m.selectedIssue[status] = n - 1
			} else {
				m.selectedIssue[status] = 0
			}
		}
		if m.scrollOffset[status] > m.selectedIssue[status] {
			m.scrollOffset[status] = m.selectedIssue[status]
		}
	}
}

// moveIssueSelection moves the selection by delta. Moving past the last loaded
// issue requests the next page.
func (m *DashboardModel) moveIssueSelection(delta int) tea.Cmd {
	if len(m.columns) == 0 {
		return nil
	}

	status := m.columns[m.selectedColumn]
	issues := m.columnIssues[status]
	if len(issues) == 0 {
		return nil
	}

	newIdx := m.selectedIssue[status] + delta
	var cmd tea.Cmd
	if newIdx >= len(issues) {
		newIdx = len(issues) - 1
		if delta > 0 {
			cmd = m.loadMore()
		}
	}
	if newIdx < 0 {
		newIdx = 0
	}

	m.selectedIssue[status] = newIdx
	m.adjustScroll(status)
	return cmd
}

// jumpToIssue jumps to a specific issue index. Use -1 to jump to the last one.
func (m *DashboardModel) jumpToIssue(idx int) {
	if len(m.columns) == 0 {
		return
	}

	status := m.columns[m.selectedColumn]
	issues := m.columnIssues[status]
	if len(issues) == 0 {
		return
	}

	if idx < 0 || idx >= len(issues) {
		idx = len(issues) - 1
	}

	m.selectedIssue[status] = idx
	m.adjustScroll(status)
}

// adjustScroll ensures the selected issue is visible
func (m *DashboardModel) adjustScroll(status domain.IssueStatus) {
	selectedIdx := m.selectedIssue[status]

	// header lines, banners, and column borders
	visible := m.height - 8
	if m.searchMode {
		visible--
	}
	if visible < 3 {
		visible = 3
	}

	if selectedIdx < m.scrollOffset[status] {
		m.scrollOffset[status] = selectedIdx
	}
	if selectedIdx >= m.scrollOffset[status]+visible {
		m.scrollOffset[status] = selectedIdx - visible + 1
	}
}

func (m DashboardModel) visibleColumns(width int) int {
	visible := width / minColumnWidth
	if visible < 1 {
		visible = 1
	}
	if visible > len(m.columns) {
		visible = len(m.columns)
	}
	if visible < 1 {
		visible = 1
	}
	return visible
}

// adjustColumnScroll ensures the selected column is visible (horizontal carousel)
func (m *DashboardModel) adjustColumnScroll() {
	if len(m.columns) == 0 || m.width == 0 {
		return
	}

	visibleCols := m.visibleColumns(m.width)

	if m.selectedColumn < m.columnOffset {
		m.columnOffset = m.selectedColumn
	}
	if m.selectedColumn >= m.columnOffset+visibleCols {
		m.columnOffset = m.selectedColumn - visibleCols + 1
	}
}

// getSelectedIssue returns the currently selected issue
func (m DashboardModel) getSelectedIssue() *domain.Issue {
	if len(m.columns) == 0 {
		return nil
	}

	status := m.columns[m.selectedColumn]
	issues := m.columnIssues[status]
	if len(issues) == 0 {
		return nil
	}

	idx := m.selectedIssue[status]
	if idx >= len(issues) {
		idx = 0
	}
	return &issues[idx]
}

// Message types
type (
	pageResultMsg struct {
		origin *store.Store
		result store.PageResult
	}
	subscribedMsg      struct{ sub *subscription }
	subscribeFailedMsg struct {
		topic string
		err   error
	}
	eventMsg struct {
		topic   string
		payload []byte
	}
	eventsClosedMsg struct{ topic string }
)
