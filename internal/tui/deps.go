package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/h0rv/polardash/internal/backoffice"
	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/events"
	"github.com/h0rv/polardash/internal/logging"
	"github.com/h0rv/polardash/internal/prefs"
	"github.com/h0rv/polardash/internal/store"
)

// ChromeExtensionURL is the Chrome Web Store page of the Polar extension.
const ChromeExtensionURL = "https://chrome.google.com/webstore/detail/polar/flgggfbldmglpjmagkhlhiohnkcmgbhi"

// PolarAPI is the part of the Polar REST client the screens use.
type PolarAPI interface {
	store.PageFetcher
	backoffice.Transferrer
	ListUserOrganizations(ctx context.Context) ([]domain.Organization, error)
	LookupOrganization(ctx context.Context, platform domain.Platform, name string) (*domain.Organization, error)
	ListRepositories(ctx context.Context, organizationID string) ([]domain.Repository, error)
	ListPersonalPledges(ctx context.Context) ([]domain.Pledge, error)
	ListPendingRewards(ctx context.Context) ([]domain.Reward, error)
}

// IssueDetailAPI loads and comments on issues at the issue tracker.
type IssueDetailAPI interface {
	GetIssueDetail(ctx context.Context, owner, repo string, number int) (*domain.IssueDetail, error)
	AddComment(ctx context.Context, subjectID, body string) (string, error)
}

// Deps are the services shared by every screen. GitHub may be nil when no
// GitHub token is available; the detail screen then shows Polar data only.
type Deps struct {
	Ctx      context.Context
	Polar    PolarAPI
	GitHub   IssueDetailAPI
	Events   events.Subscriber
	Prefs    *prefs.Store
	Logger   *slog.Logger
	Platform domain.Platform
}

func (d Deps) withDefaults() Deps {
	if d.Ctx == nil {
		d.Ctx = context.Background()
	}
	if d.Events == nil {
		d.Events = &events.NoopSubscriber{}
	}
	if d.Prefs == nil {
		d.Prefs = prefs.New(&prefs.Memory{})
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Platform == "" {
		d.Platform = domain.PlatformGitHub
	}
	return d
}

// openURL is swapped out in tests.
var openURL = browser.OpenURL

type openURLFailedMsg struct{ err error }

func openURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := openURL(url); err != nil {
			return openURLFailedMsg{err: err}
		}
		return nil
	}
}
