// Package filters converts between the dashboard's URL query representation and a
// structured filter value, and projects that value onto the issue statuses it enables.
package filters

import (
	"net/url"
	"strings"

	"github.com/h0rv/polardash/internal/domain"
)

// URL query keys understood by the dashboard.
const (
	KeyQuery       = "q"
	KeyStatuses    = "statuses"
	KeySort        = "sort"
	KeyOnlyPledged = "onlyPledged"
	KeyOnlyBadged  = "onlyBadged"
)

// noStatuses encodes an explicitly empty status set. It matches no status token,
// so decoding it turns every status flag off.
const noStatuses = "none"

// Filters is the dashboard filter state. It is a value: callers replace it
// wholesale rather than mutating it in place.
type Filters struct {
	Query             string
	StatusBacklog     bool
	StatusTriaged     bool
	StatusInProgress  bool
	StatusPullRequest bool
	StatusClosed      bool
	Sort              domain.IssueSortBy
	OnlyPledged       bool
	OnlyBadged        bool
	Tab               domain.IssueListType
}

// Default returns the filters the dashboard starts from: every open status,
// newest first, no toggles.
func Default() Filters {
	return Filters{
		StatusBacklog:     true,
		StatusTriaged:     true,
		StatusInProgress:  true,
		StatusPullRequest: true,
		StatusClosed:      false,
		Sort:              domain.SortNewest,
		Tab:               domain.ListTypeIssues,
	}
}

// sortTokens maps URL tokens to sort orders. Order is the cycle order used by the UI.
var sortTokens = []domain.IssueSortBy{
	domain.SortNewest,
	domain.SortPledgedAmountDesc,
	domain.SortRelevance,
	domain.SortDependenciesDefault,
	domain.SortMostPositiveReactions,
	domain.SortMostEngagement,
}

// ParseSort maps a URL token to a sort order. Unknown or empty tokens yield SortNewest.
func ParseSort(token string) domain.IssueSortBy {
	for _, s := range sortTokens {
		if string(s) == token {
			return s
		}
	}
	return domain.SortNewest
}

// NextSort returns the sort order after s in the UI cycle.
func NextSort(s domain.IssueSortBy) domain.IssueSortBy {
	for i, candidate := range sortTokens {
		if candidate == s {
			return sortTokens[(i+1)%len(sortTokens)]
		}
	}
	return domain.SortNewest
}

// Decode builds filters from URL query values, overlaying them on Default.
//
// The status flags are only touched when the statuses key carries a value; each
// flag is then on iff its token is listed. Presence of onlyPledged or onlyBadged
// turns the toggle on whatever the value.
func Decode(q url.Values) Filters {
	f := Default()
	f.Tab = domain.ListTypeIssues
	f.Query = q.Get(KeyQuery)

	if q.Has(KeyStatuses) {
		if raw := q.Get(KeyStatuses); raw != "" {
			set := make(map[string]bool)
			for _, tok := range strings.Split(raw, ",") {
				set[tok] = true
			}
			f.StatusBacklog = set[string(domain.IssueStatusBacklog)]
			f.StatusTriaged = set[string(domain.IssueStatusTriaged)]
			f.StatusInProgress = set[string(domain.IssueStatusInProgress)]
			f.StatusPullRequest = set[string(domain.IssueStatusPullRequest)]
			f.StatusClosed = set[string(domain.IssueStatusClosed)]
		}
	}

	if q.Has(KeySort) {
		f.Sort = ParseSort(q.Get(KeySort))
	}
	if q.Has(KeyOnlyPledged) {
		f.OnlyPledged = true
	}
	if q.Has(KeyOnlyBadged) {
		f.OnlyBadged = true
	}

	return f
}

// Encode is the inverse of Decode. Keys at their default value are omitted.
func Encode(f Filters) url.Values {
	q := url.Values{}
	def := Default()

	if f.Query != "" {
		q.Set(KeyQuery, f.Query)
	}

	if !sameStatuses(f, def) {
		tokens := make([]string, 0, 5)
		for _, s := range Statuses(f) {
			tokens = append(tokens, string(s))
		}
		if len(tokens) == 0 {
			q.Set(KeyStatuses, noStatuses)
		} else {
			q.Set(KeyStatuses, strings.Join(tokens, ","))
		}
	}

	if f.Sort != "" && f.Sort != def.Sort {
		q.Set(KeySort, string(f.Sort))
	}
	if f.OnlyPledged {
		q.Set(KeyOnlyPledged, "")
	}
	if f.OnlyBadged {
		q.Set(KeyOnlyBadged, "")
	}

	return q
}

// Statuses returns the enabled statuses in the fixed order backlog, triaged,
// in progress, pull request, closed.
func Statuses(f Filters) []domain.IssueStatus {
	out := make([]domain.IssueStatus, 0, 5)
	if f.StatusBacklog {
		out = append(out, domain.IssueStatusBacklog)
	}
	if f.StatusTriaged {
		out = append(out, domain.IssueStatusTriaged)
	}
	if f.StatusInProgress {
		out = append(out, domain.IssueStatusInProgress)
	}
	if f.StatusPullRequest {
		out = append(out, domain.IssueStatusPullRequest)
	}
	if f.StatusClosed {
		out = append(out, domain.IssueStatusClosed)
	}
	return out
}

// ToggleStatus returns a copy of f with the given status flipped.
func ToggleStatus(f Filters, s domain.IssueStatus) Filters {
	switch s {
	case domain.IssueStatusBacklog:
		f.StatusBacklog = !f.StatusBacklog
	case domain.IssueStatusTriaged:
		f.StatusTriaged = !f.StatusTriaged
	case domain.IssueStatusInProgress:
		f.StatusInProgress = !f.StatusInProgress
	case domain.IssueStatusPullRequest:
		f.StatusPullRequest = !f.StatusPullRequest
	case domain.IssueStatusClosed:
		f.StatusClosed = !f.StatusClosed
	}
	return f
}

func sameStatuses(a, b Filters) bool {
	return a.StatusBacklog == b.StatusBacklog &&
		a.StatusTriaged == b.StatusTriaged &&
		a.StatusInProgress == b.StatusInProgress &&
		a.StatusPullRequest == b.StatusPullRequest &&
		a.StatusClosed == b.StatusClosed
}
