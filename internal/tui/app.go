package tui

import (
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/h0rv/polardash/internal/dashboard"
	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/filters"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenOrgPicker
	ScreenRepoPicker
	ScreenSortPicker
	ScreenDashboard
	ScreenDetail
	ScreenBackoffice
	ScreenNotice
)

// Options configure the app. Location is the dashboard URL the session
// starts from; its zero value starts at the dashboard root.
type Options struct {
	Deps              Deps
	Location          filters.Location
	StartInBackoffice bool
}

// AppModel is the root Bubble Tea model that manages screen transitions.
// It resolves where the user lands (an organization's issues, the org
// picker, the personal pledges or onboarding) and routes between screens.
type AppModel struct {
	deps     Deps
	location filters.Location

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error
	loadingMsg    string

	// Screen to return to from the backoffice
	backofficeReturn AppScreen
	backofficeModel  tea.Model

	// The status toast is shown on the first dashboard only.
	toastShown bool

	// Cached to preserve state across screen transitions
	dashboardModel *DashboardModel
}

// NewAppModel creates the root model.
func NewAppModel(opts Options) AppModel {
	m := AppModel{
		deps:          opts.Deps.withDefaults(),
		location:      opts.Location,
		currentScreen: ScreenLoading,
		loadingMsg:    "Connecting to Polar...",
	}
	if opts.StartInBackoffice {
		m.currentScreen = ScreenBackoffice
		m.currentModel = NewBackofficeModel(m.deps, true)
	}
	return m
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	if m.currentModel != nil {
		return m.currentModel.Init()
	}
	if m.location.Organization != "" {
		return m.lookupOrg(m.location.Organization)
	}
	return m.resolveRoot()
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler while nothing else owns the keyboard
		if msg.String() == "ctrl+c" && m.currentModel == nil {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.deps.Logger.Error("fatal error", "err", msg.Err)
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		(&m).closeDashboard()
		return m, tea.Quit

	case orgResolvedMsg:
		route := dashboard.ResolveOrg(msg.requested, msg.org)
		if route.Kind == dashboard.RouteOrgPicker {
			m.deps.Logger.Info("organization not found, showing picker", "org", msg.requested)
			m.loadingMsg = "Loading organizations..."
			return m, m.fetchOrgs()
		}
		cmd := (&m).showDashboard(*msg.org, m.location.Repo, m.location.Query)
		return m, cmd

	case rootResolvedMsg:
		route := dashboard.ResolveRoot(msg.orgs, len(msg.pledges))
		switch route.Kind {
		case dashboard.RouteOrgIssues:
			cmd := (&m).showDashboard(msg.orgs[0], m.location.Repo, m.location.Query)
			return m, cmd
		default:
			m.currentScreen = ScreenNotice
			notice := NewNoticeModel(route.Kind, msg.pledges)
			m.currentModel = notice
			return m, tea.Batch(notice.Init(), tea.WindowSize())
		}

	case reloadRootMsg:
		m.currentScreen = ScreenLoading
		m.currentModel = nil
		m.loadingMsg = "Connecting to Polar..."
		return m, m.resolveRoot()

	case orgsLoadedMsg:
		m.currentScreen = ScreenOrgPicker
		picker := NewOrgPickerModel(msg.orgs, m.dashboardModel != nil)
		m.currentModel = picker
		return m, picker.Init()

	case OrgSelectedMsg:
		cmd := (&m).showDashboard(msg.Org, "", nil)
		return m, cmd

	case reposLoadedMsg:
		if m.dashboardModel == nil {
			return m, nil
		}
		m.currentScreen = ScreenRepoPicker
		picker := NewRepoPickerModel(m.dashboardModel.Org().Name, msg.repos, m.dashboardModel.Repo())
		m.currentModel = picker
		return m, picker.Init()

	case RepoSelectedMsg:
		cmd := (&m).backToDashboard(func(dm *DashboardModel) tea.Cmd { return dm.SetRepo(msg.Repo) })
		return m, cmd

	case SortSelectedMsg:
		cmd := (&m).backToDashboard(func(dm *DashboardModel) tea.Cmd { return dm.SetSort(msg.Sort) })
		return m, cmd

	case pickerCancelledMsg:
		cmd := (&m).backToDashboard(nil)
		return m, cmd

	case openOrgPickerMsg:
		m.loadingMsg = "Loading organizations..."
		return m, m.fetchOrgs()

	case openRepoPickerMsg:
		if m.dashboardModel == nil {
			return m, nil
		}
		return m, m.fetchRepos(m.dashboardModel.Org())

	case openSortPickerMsg:
		m.currentScreen = ScreenSortPicker
		picker := NewSortPickerModel(msg.current)
		m.currentModel = picker
		return m, picker.Init()

	case openDetailMsg:
		m.currentScreen = ScreenDetail
		detail := NewDetailModel(msg.issue, m.deps.GitHub, m.deps.Ctx)
		m.currentModel = detail
		return m, detail.Init()

	case closeDetailMsg:
		cmd := (&m).backToDashboard(nil)
		return m, cmd

	case openBackofficeMsg:
		m.backofficeReturn = m.currentScreen
		m.backofficeModel = m.currentModel
		m.currentScreen = ScreenBackoffice
		bo := NewBackofficeModel(m.deps, false)
		m.currentModel = bo
		return m, bo.Init()

	case closeBackofficeMsg:
		if m.backofficeReturn == ScreenDashboard {
			cmd := (&m).backToDashboard(nil)
			return m, cmd
		}
		m.currentScreen = m.backofficeReturn
		m.currentModel = m.backofficeModel
		return m, tea.WindowSize()

	case pageResultMsg, subscribedMsg, subscribeFailedMsg, eventMsg, eventsClosedMsg:
		// The dashboard keeps loading and listening while another screen is up.
		if m.currentScreen != ScreenDashboard {
			if sm, ok := msg.(subscribedMsg); ok && m.dashboardModel == nil {
				sm.sub.cancel()
				return m, nil
			}
			cmd := (&m).updateDashboard(msg)
			return m, cmd
		}
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep dashboardModel in sync when on dashboard screen
		if m.currentScreen == ScreenDashboard {
			if dm, ok := m.currentModel.(DashboardModel); ok {
				m.dashboardModel = &dm
			}
		}
		return m, cmd
	}

	return m, nil
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}

	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// CurrentScreen returns the screen being shown.
func (m AppModel) CurrentScreen() AppScreen {
	return m.currentScreen
}

// showDashboard replaces the cached dashboard with one for org.
func (m *AppModel) showDashboard(org domain.Organization, repo string, query url.Values) tea.Cmd {
	m.closeDashboard()

	var toast *dashboard.Toast
	if !m.toastShown {
		m.toastShown = true
		if t, ok := dashboard.StatusToast(m.location.Status); ok {
			toast = &t
		}
	}

	m.deps.Logger.Info("opening dashboard", "org", org.Name, "repo", repo)
	dm := NewDashboardModel(m.deps, org, repo, query, toast)
	m.dashboardModel = &dm
	m.currentScreen = ScreenDashboard
	m.currentModel = dm
	return dm.Init()
}

// backToDashboard returns to the cached dashboard, applying change to it first.
func (m *AppModel) backToDashboard(change func(*DashboardModel) tea.Cmd) tea.Cmd {
	if m.dashboardModel == nil {
		return nil
	}
	var cmd tea.Cmd
	if change != nil {
		cmd = change(m.dashboardModel)
	}
	m.currentScreen = ScreenDashboard
	m.currentModel = *m.dashboardModel
	return tea.Batch(cmd, tea.WindowSize(), m.dashboardModel.spinner.Tick)
}

func (m *AppModel) updateDashboard(msg tea.Msg) tea.Cmd {
	if m.dashboardModel == nil {
		return nil
	}
	model, cmd := m.dashboardModel.Update(msg)
	if dm, ok := model.(DashboardModel); ok {
		m.dashboardModel = &dm
	}
	return cmd
}

func (m *AppModel) closeDashboard() {
	if m.dashboardModel != nil {
		m.dashboardModel.Close()
		m.dashboardModel = nil
	}
}

// lookupOrg resolves an organization named in the dashboard URL.
func (m AppModel) lookupOrg(name string) tea.Cmd {
	client := m.deps.Polar
	ctx := m.deps.Ctx
	platform := m.deps.Platform
	return func() tea.Msg {
		org, err := client.LookupOrganization(ctx, platform, name)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to look up organization '%s': %w", name, err)}
		}
		return orgResolvedMsg{requested: name, org: org}
	}
}

// resolveRoot loads what the dashboard root needs to pick a landing screen.
func (m AppModel) resolveRoot() tea.Cmd {
	client := m.deps.Polar
	ctx := m.deps.Ctx
	return func() tea.Msg {
		orgs, err := client.ListUserOrganizations(ctx)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to list organizations: %w", err)}
		}
		if len(orgs) > 0 {
			return rootResolvedMsg{orgs: orgs}
		}
		pledges, err := client.ListPersonalPledges(ctx)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to list personal pledges: %w", err)}
		}
		return rootResolvedMsg{pledges: pledges}
	}
}

func (m AppModel) fetchOrgs() tea.Cmd {
	client := m.deps.Polar
	ctx := m.deps.Ctx
	return func() tea.Msg {
		orgs, err := client.ListUserOrganizations(ctx)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to list organizations: %w", err)}
		}
		return orgsLoadedMsg{orgs: orgs}
	}
}

func (m AppModel) fetchRepos(org domain.Organization) tea.Cmd {
	client := m.deps.Polar
	ctx := m.deps.Ctx
	return func() tea.Msg {
		repos, err := client.ListRepositories(ctx, org.ID)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to list repositories of %s: %w", org.Name, err)}
		}
		return reposLoadedMsg{repos: repos}
	}
}

// Custom messages for app transitions.
type (
	orgResolvedMsg struct {
		requested string
		org       *domain.Organization
	}

	rootResolvedMsg struct {
		orgs    []domain.Organization
		pledges []domain.Pledge
	}

	orgsLoadedMsg struct {
		orgs []domain.Organization
	}

	reposLoadedMsg struct {
		repos []domain.Repository
	}
)
