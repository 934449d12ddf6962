package dashboard

import (
	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/filters"
)

// RouteKind names a screen the client can land on.
type RouteKind int

const (
	// RouteOrgPicker lets the user pick one of their organizations.
	RouteOrgPicker RouteKind = iota
	// RouteOrgIssues shows the issue dashboard of Route.Org.
	RouteOrgIssues
	// RoutePersonal shows the personal (backer) dashboard.
	RoutePersonal
	// RouteConnectRepos shows onboarding for users without organizations.
	RouteConnectRepos
)

// Route is a navigation target.
type Route struct {
	Kind RouteKind
	Org  string
}

// ResolveRoot picks where the dashboard root sends a user: their first
// organization if they have any, the personal dashboard if they only have
// pledges, otherwise the repository onboarding.
func ResolveRoot(orgs []domain.Organization, personalPledges int) Route {
	switch {
	case len(orgs) > 0:
		return Route{Kind: RouteOrgIssues, Org: orgs[0].Name}
	case personalPledges > 0:
		return Route{Kind: RoutePersonal}
	default:
		return Route{Kind: RouteConnectRepos}
	}
}

// ResolveOrg decides what to show for an organization requested in the URL.
// When the organization does not resolve the user is sent to the org picker;
// this is a redirect, not an error.
func ResolveOrg(requested string, org *domain.Organization) Route {
	if requested == "" || org == nil || org.Name == "" {
		return Route{Kind: RouteOrgPicker}
	}
	return Route{Kind: RouteOrgIssues, Org: org.Name}
}

// Toast is a single-shot notification.
type Toast struct {
	Title       string
	Description string
}

// StatusToast returns the toast for a location status, if any.
func StatusToast(status string) (Toast, bool) {
	if status == filters.StatusStripeConnected {
		return Toast{
			Title:       "Stripe setup complete",
			Description: "Your account is now ready to accept pledges.",
		}, true
	}
	return Toast{}, false
}
