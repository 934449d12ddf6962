package filters

import (
	"fmt"
	"net/url"
	"strings"
)

// Location keys that select what the dashboard shows rather than how it filters.
const (
	KeyOrganization = "organization"
	KeyRepo         = "repo"
	KeyStatus       = "status"
)

// StatusStripeConnected is the status value set after returning from Stripe onboarding.
const StatusStripeConnected = "stripe-connected"

// Location is a parsed dashboard URL.
type Location struct {
	Organization string
	Repo         string
	Status       string
	// Query holds every query value, filters included. It is nil when no URL was given.
	Query url.Values
}

// ParseLocation accepts a full dashboard URL, a path with a query, or a bare query
// string ("?organization=polarsource&statuses=backlog"). An empty string yields a
// Location with a nil Query.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, nil
	}

	var rawQuery string
	switch {
	case strings.HasPrefix(raw, "?"):
		rawQuery = raw[1:]
	case strings.Contains(raw, "://") || strings.HasPrefix(raw, "/"):
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, fmt.Errorf("invalid dashboard URL: %w", err)
		}
		rawQuery = u.RawQuery
	default:
		rawQuery = raw
	}

	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Location{}, fmt.Errorf("invalid dashboard query: %w", err)
	}

	return Location{
		Organization: q.Get(KeyOrganization),
		Repo:         q.Get(KeyRepo),
		Status:       q.Get(KeyStatus),
		Query:        q,
	}, nil
}

// String renders the location as a query string with the given filters encoded.
func (l Location) String(f Filters) string {
	q := Encode(f)
	if l.Organization != "" {
		q.Set(KeyOrganization, l.Organization)
	}
	if l.Repo != "" {
		q.Set(KeyRepo, l.Repo)
	}
	return "?" + q.Encode()
}
