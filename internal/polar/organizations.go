package polar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/h0rv/polardash/internal/domain"
)

// ListUserOrganizations returns the organizations the authenticated user is a member of.
func (c *Client) ListUserOrganizations(ctx context.Context) ([]domain.Organization, error) {
	var resp wireListResource[wireOrganization]
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/organizations?is_member=true", nil, &resp); err != nil {
		return nil, err
	}
	orgs := make([]domain.Organization, 0, len(resp.Items))
	for _, o := range resp.Items {
		orgs = append(orgs, o.toDomain())
	}
	return orgs, nil
}

// LookupOrganization resolves an organization by platform and name.
// A missing organization is reported as (nil, nil).
func (c *Client) LookupOrganization(ctx context.Context, platform domain.Platform, name string) (*domain.Organization, error) {
	q := url.Values{}
	q.Set("platform", string(platform))
	q.Set("organization_name", name)

	var resp wireOrganization
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/organizations/lookup?"+q.Encode(), nil, &resp)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up organization %s: %w", name, err)
	}
	org := resp.toDomain()
	return &org, nil
}

// ListRepositories returns the repositories connected under organizationID.
func (c *Client) ListRepositories(ctx context.Context, organizationID string) ([]domain.Repository, error) {
	q := url.Values{}
	if organizationID != "" {
		q.Set("organization_id", organizationID)
	}
	path := "/api/v1/repositories"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp wireListResource[wireRepository]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	repos := make([]domain.Repository, 0, len(resp.Items))
	for _, r := range resp.Items {
		repo := r.toDomain()
		// The endpoint may return repositories across organizations.
		if organizationID != "" && repo.Organization.ID != "" && repo.Organization.ID != organizationID {
			continue
		}
		repos = append(repos, repo)
	}
	return repos, nil
}
