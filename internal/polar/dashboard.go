package polar

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/store"
)

// ErrNoOrganization is returned when a dashboard query has no organization.
var ErrNoOrganization = errors.New("dashboard query: organization required")

// ListDashboardIssues fetches one page of the issue dashboard for key.
func (c *Client) ListDashboardIssues(ctx context.Context, key store.QueryKey, page int) (*domain.IssuePage, error) {
	if key.Org == "" {
		return nil, ErrNoOrganization
	}

	platform := key.Platform
	if platform == "" {
		platform = domain.PlatformGitHub
	}

	var resp wireDashboardResponse
	path := "/api/v1/dashboard/" + url.PathEscape(string(platform)) + "/" + url.PathEscape(key.Org) + "?" + dashboardQuery(key, page).Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

func dashboardQuery(key store.QueryKey, page int) url.Values {
	q := url.Values{}
	if key.Repo != "" {
		q.Set("repo_name", key.Repo)
	}
	tab := key.Tab
	if tab == "" {
		tab = domain.ListTypeIssues
	}
	q.Set("issue_list_type", string(tab))
	if key.Query != "" {
		q.Set("q", key.Query)
	}
	for _, s := range key.Statuses {
		q.Add("status", string(s))
	}
	if key.Sort != "" {
		q.Set("sort", string(key.Sort))
	}
	if key.OnlyPledged {
		q.Set("only_pledged", "true")
	}
	if key.OnlyBadged {
		q.Set("only_badged", "true")
	}
	if page < store.FirstPage {
		page = store.FirstPage
	}
	q.Set("page", strconv.Itoa(page))
	return q
}

// ListPersonalPledges returns the pledges made by the authenticated user.
func (c *Client) ListPersonalPledges(ctx context.Context) ([]domain.Pledge, error) {
	var resp wireListResource[wirePledge]
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/pledges/search?by_user_id=me", nil, &resp); err != nil {
		return nil, err
	}
	pledges := make([]domain.Pledge, 0, len(resp.Items))
	for _, p := range resp.Items {
		pledges = append(pledges, p.toDomain())
	}
	return pledges, nil
}
