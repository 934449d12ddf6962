package tui

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h0rv/polardash/internal/dashboard"
	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/prefs"
	"github.com/h0rv/polardash/internal/store"
)

// fakePolar implements PolarAPI for testing
type fakePolar struct {
	mu sync.Mutex

	pages    map[int]*domain.IssuePage
	pageErr  error
	keys     []store.QueryKey
	orgs     []domain.Organization
	lookup   *domain.Organization
	repos    []domain.Repository
	pledges  []domain.Pledge
	rewards  []domain.Reward
	transfer error

	transfers []domain.TransferKey
}

func (f *fakePolar) ListDashboardIssues(ctx context.Context, key store.QueryKey, page int) (*domain.IssuePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return &domain.IssuePage{}, nil
}

func (f *fakePolar) CreateRewardTransfer(ctx context.Context, pledgeID, issueRewardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, domain.TransferKey{PledgeID: pledgeID, IssueRewardID: issueRewardID})
	return f.transfer
}

func (f *fakePolar) ListUserOrganizations(ctx context.Context) ([]domain.Organization, error) {
	return f.orgs, nil
}

func (f *fakePolar) LookupOrganization(ctx context.Context, platform domain.Platform, name string) (*domain.Organization, error) {
	return f.lookup, nil
}

func (f *fakePolar) ListRepositories(ctx context.Context, organizationID string) ([]domain.Repository, error) {
	return f.repos, nil
}

func (f *fakePolar) ListPersonalPledges(ctx context.Context) ([]domain.Pledge, error) {
	return f.pledges, nil
}

func (f *fakePolar) ListPendingRewards(ctx context.Context) ([]domain.Reward, error) {
	return f.rewards, nil
}

var testOrg = domain.Organization{ID: "org-1", Platform: domain.PlatformGitHub, Name: "polarsource"}

func testIssue(number int, status domain.IssueStatus) domain.Issue {
	return domain.Issue{
		ID:         "issue-" + string(rune('a'+number)),
		Number:     number,
		Title:      "Issue title",
		Status:     status,
		Repository: domain.Repository{Name: "polar", Organization: testOrg},
	}
}

// createTestPolar returns a client serving one page with issues in three statuses.
func createTestPolar() *fakePolar {
	return &fakePolar{
		pages: map[int]*domain.IssuePage{
			1: {
				Data: []domain.Issue{
					testIssue(1, domain.IssueStatusBacklog),
					testIssue(2, domain.IssueStatusBacklog),
					testIssue(3, domain.IssueStatusTriaged),
					testIssue(4, domain.IssueStatusInProgress),
				},
				Pagination: domain.Pagination{TotalCount: 6, NextPage: 2},
			},
			2: {
				Data:       []domain.Issue{testIssue(5, domain.IssueStatusBacklog), testIssue(6, domain.IssueStatusPullRequest)},
				Pagination: domain.Pagination{TotalCount: 6},
			},
		},
	}
}

func testDeps(client *fakePolar) Deps {
	return Deps{Polar: client, Prefs: prefs.New(&prefs.Memory{})}
}

// stubOpenURL records URLs instead of launching a browser.
func stubOpenURL(t *testing.T) *[]string {
	t.Helper()
	var opened []string
	prev := openURL
	openURL = func(u string) error {
		opened = append(opened, u)
		return nil
	}
	t.Cleanup(func() { openURL = prev })
	return &opened
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedDashboard builds a dashboard and feeds it its first page.
func loadedDashboard(t *testing.T, client *fakePolar, query url.Values) DashboardModel {
	t.Helper()
	m := NewDashboardModel(testDeps(client), testOrg, "", query, nil)
	require.NotNil(t, m.pending)
	model, _ := m.Update(m.fetch(m.pending)())
	return model.(DashboardModel)
}

// runFetch executes a fetch command and feeds its result back.
func runFetch(t *testing.T, m DashboardModel, cmd tea.Cmd) DashboardModel {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(pageResultMsg)
	require.True(t, ok, "expected a page result, got %T", msg)
	model, _ := m.Update(msg)
	return model.(DashboardModel)
}

func TestDashboardModel_RebuildColumns(t *testing.T) {
	m := loadedDashboard(t, createTestPolar(), nil)

	// Default filters enable the four open statuses
	assert.Equal(t, []domain.IssueStatus{
		domain.IssueStatusBacklog,
		domain.IssueStatusTriaged,
		domain.IssueStatusInProgress,
		domain.IssueStatusPullRequest,
	}, m.columns)

	assert.Len(t, m.columnIssues[domain.IssueStatusBacklog], 2)
	assert.Len(t, m.columnIssues[domain.IssueStatusTriaged], 1)
	assert.Len(t, m.columnIssues[domain.IssueStatusInProgress], 1)
	assert.Empty(t, m.columnIssues[domain.IssueStatusPullRequest])
}

func TestDashboardModel_URLQueryAppliedOnce(t *testing.T) {
	q, err := url.ParseQuery("statuses=backlog,closed&sort=relevance&onlyPledged")
	require.NoError(t, err)

	client := createTestPolar()
	m := loadedDashboard(t, client, q)

	assert.Equal(t, []domain.IssueStatus{domain.IssueStatusBacklog, domain.IssueStatusClosed}, m.columns[:2])
	assert.Equal(t, domain.SortRelevance, m.filters.Sort)
	assert.True(t, m.filters.OnlyPledged)

	require.Len(t, client.keys, 1)
	want := store.NewQueryKey("polarsource", "", m.filters)
	want.Platform = domain.PlatformGitHub
	assert.Equal(t, want, client.keys[0])
}

func TestDashboardModel_IssuesOutsideEnabledStatusesGoToOther(t *testing.T) {
	q, err := url.ParseQuery("statuses=backlog")
	require.NoError(t, err)

	m := loadedDashboard(t, createTestPolar(), q)

	require.Len(t, m.columns, 2)
	assert.Equal(t, otherStatus, m.columns[1])
	assert.Len(t, m.columnIssues[otherStatus], 2)
}

func TestDashboardModel_Navigation(t *testing.T) {
	m := loadedDashboard(t, createTestPolar(), nil)
	assert.Equal(t, 0, m.selectedColumn)

	model, _ := m.Update(keyPress("l"))
	m = model.(DashboardModel)
	assert.Equal(t, 1, m.selectedColumn)

	model, _ = m.Update(keyPress("h"))
	m = model.(DashboardModel)
	assert.Equal(t, 0, m.selectedColumn)

	// Can't go past the first column
	model, _ = m.Update(keyPress("h"))
	m = model.(DashboardModel)
	assert.Equal(t, 0, m.selectedColumn)
}

func TestDashboardModel_IssueNavigation(t *testing.T) {
	m := loadedDashboard(t, createTestPolar(), nil)

	model, _ := m.Update(keyPress("j"))
	m = model.(DashboardModel)
	assert.Equal(t, 1, m.selectedIssue[domain.IssueStatusBacklog])

	model, _ = m.Update(keyPress("k"))
	m = model.(DashboardModel)
	assert.Equal(t, 0, m.selectedIssue[domain.IssueStatusBacklog])

	selected := m.getSelectedIssue()
	require.NotNil(t, selected)
	assert.Equal(t, 1, selected.Number)
}

func TestDashboardModel_MovingPastEndLoadsNextPage(t *testing.T) {
	client := createTestPolar()
	m := loadedDashboard(t, client, nil)

	model, _ := m.Update(keyPress("j"))
	m = model.(DashboardModel)
	model, cmd := m.Update(keyPress("j"))
	m = model.(DashboardModel)

	m = runFetch(t, m, cmd)
	assert.Len(t, m.store.Issues(), 6)
	assert.False(t, m.store.HasNextPage())
	assert.Len(t, m.columnIssues[domain.IssueStatusBacklog], 3)
	assert.Len(t, m.columnIssues[domain.IssueStatusPullRequest], 1)
}

func TestDashboardModel_LoadMoreWithoutNextPageIsNoop(t *testing.T) {
	client := createTestPolar()
	client.pages[1].Pagination.NextPage = 0
	m := loadedDashboard(t, client, nil)

	_, cmd := m.Update(keyPress("L"))
	assert.Nil(t, cmd)
}

func TestDashboardModel_ToggleStatusRequeries(t *testing.T) {
	client := createTestPolar()
	m := loadedDashboard(t, client, nil)

	model, cmd := m.Update(keyPress("5"))
	m = model.(DashboardModel)
	assert.True(t, m.filters.StatusClosed)
	assert.True(t, m.store.IsInitialLoading())

	m = runFetch(t, m, cmd)
	require.Len(t, client.keys, 2)
	assert.Contains(t, client.keys[1].Statuses, domain.IssueStatusClosed)
}

func TestDashboardModel_StaleResultDropped(t *testing.T) {
	client := createTestPolar()
	m := NewDashboardModel(testDeps(client), testOrg, "", nil, nil)
	stale := m.fetch(m.pending)

	// A filter change supersedes the first request before it resolves.
	model, fresh := m.Update(keyPress("p"))
	m = model.(DashboardModel)

	model, _ = m.Update(stale())
	m = model.(DashboardModel)
	assert.True(t, m.store.IsInitialLoading())
	assert.Empty(t, m.store.Issues())

	m = runFetch(t, m, fresh)
	assert.False(t, m.store.IsLoading())
}

func TestDashboardModel_ResultFromAnotherDashboardIgnored(t *testing.T) {
	client := createTestPolar()
	other := NewDashboardModel(testDeps(client), testOrg, "", nil, nil)
	m := NewDashboardModel(testDeps(client), testOrg, "", nil, nil)

	model, _ := m.Update(other.fetch(other.pending)())
	m = model.(DashboardModel)
	assert.True(t, m.store.IsInitialLoading())
}

func TestDashboardModel_FetchErrorShowsRetry(t *testing.T) {
	client := createTestPolar()
	client.pageErr = errors.New("boom")
	m := loadedDashboard(t, client, nil)

	assert.Contains(t, m.errorToast, "boom")
	view := m.View()
	assert.Contains(t, view, "Could not load issues")
	assert.Contains(t, view, "[r]retry")

	client.pageErr = nil
	model, cmd := m.Update(keyPress("r"))
	m = runFetch(t, model.(DashboardModel), cmd)
	assert.Empty(t, m.errorToast)
	assert.Len(t, m.store.Issues(), 4)
}

func TestDashboardModel_SearchSetsQuery(t *testing.T) {
	client := createTestPolar()
	m := loadedDashboard(t, client, nil)

	model, _ := m.Update(keyPress("/"))
	m = model.(DashboardModel)
	assert.True(t, m.searchMode)

	for _, r := range "crash" {
		model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = model.(DashboardModel)
	}
	model, cmd := m.Update(keyPress("enter"))
	m = model.(DashboardModel)
	assert.False(t, m.searchMode)
	assert.Equal(t, "crash", m.filters.Query)

	runFetch(t, m, cmd)
	assert.Equal(t, "crash", client.keys[len(client.keys)-1].Query)
}

func TestDashboardModel_SwitchTab(t *testing.T) {
	m := loadedDashboard(t, createTestPolar(), nil)

	model, _ := m.Update(keyPress("tab"))
	m = model.(DashboardModel)
	assert.Equal(t, domain.ListTypeDependencies, m.filters.Tab)
	assert.Equal(t, domain.SortDependenciesDefault, m.filters.Sort)

	model, _ = m.Update(keyPress("tab"))
	m = model.(DashboardModel)
	assert.Equal(t, domain.ListTypeIssues, m.filters.Tab)
	assert.Equal(t, domain.SortNewest, m.filters.Sort)
}

func TestDashboardModel_ExtensionBanner(t *testing.T) {
	opened := stubOpenURL(t)

	client := createTestPolar()
	deps := testDeps(client)
	m := NewDashboardModel(deps, testOrg, "", nil, nil)
	assert.Contains(t, m.View(), "[i]install [x]skip")

	model, cmd := m.Update(keyPress("i"))
	m = model.(DashboardModel)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, []string{ChromeExtensionURL}, *opened)
	assert.True(t, deps.Prefs.ChromeExtensionSkipped())
	assert.NotContains(t, m.View(), "[i]install [x]skip")

	// The choice persists for the next dashboard
	next := NewDashboardModel(deps, testOrg, "", nil, nil)
	assert.True(t, next.extensionSkipped)
}

func TestDashboardModel_ToastDismissedByKey(t *testing.T) {
	toast, ok := dashboard.StatusToast("stripe-connected")
	require.True(t, ok)

	m := NewDashboardModel(testDeps(createTestPolar()), testOrg, "", nil, &toast)
	assert.Contains(t, m.View(), "Stripe setup complete")

	model, _ := m.Update(keyPress("j"))
	m = model.(DashboardModel)
	assert.NotContains(t, m.View(), "Stripe setup complete")
}

func TestDashboardModel_NoStatusesSelected(t *testing.T) {
	q, err := url.ParseQuery("statuses=none")
	require.NoError(t, err)

	m := loadedDashboard(t, createTestPolar(), q)
	assert.Empty(t, m.columns)
	assert.Contains(t, m.View(), "No statuses selected")
}

func TestDashboardModel_EventInvalidates(t *testing.T) {
	client := createTestPolar()
	m := loadedDashboard(t, client, nil)

	ch := make(chan []byte, 1)
	sub := &subscription{topic: "polar.github.polarsource.>", cancel: func() {}, ch: ch}
	m.sub = sub

	model, cmd := m.Update(eventMsg{topic: sub.topic, payload: []byte(`{"type":"issue.updated"}`)})
	m = model.(DashboardModel)
	assert.True(t, m.store.IsInitialLoading())
	require.NotNil(t, cmd)

	// Events on other topics are ignored
	_, cmd = m.Update(eventMsg{topic: "polar.github.other.>"})
	assert.Nil(t, cmd)
}

func TestDashboardModel_Location(t *testing.T) {
	m := loadedDashboard(t, createTestPolar(), nil)
	model, _ := m.Update(keyPress("p"))
	m = model.(DashboardModel)

	loc := m.Location()
	assert.True(t, strings.Contains(loc, "organization=polarsource"), loc)
	assert.True(t, strings.Contains(loc, "onlyPledged"), loc)
}

func TestDashboardModel_WindowResize(t *testing.T) {
	m := loadedDashboard(t, createTestPolar(), nil)

	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = model.(DashboardModel)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}

func TestDashboardModel_View_NotPanic(t *testing.T) {
	m := loadedDashboard(t, createTestPolar(), nil)

	for _, size := range []tea.WindowSizeMsg{{Width: 40, Height: 10}, {Width: 80, Height: 24}, {Width: 200, Height: 60}} {
		model, _ := m.Update(size)
		view := model.(DashboardModel).View()
		assert.NotEmpty(t, view)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
