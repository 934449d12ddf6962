// Package dashboard derives presentation flags for the issue dashboard from the
// loaded issue pages and the current filters. Everything here is a pure function
// evaluated at read time.
package dashboard

import (
	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/filters"
)

// MarkerLabel is the label Polar adds to issues that carry a badge or pledge.
const MarkerLabel = "polar"

// Tristate is a boolean that may not be known yet.
type Tristate int

const (
	Unknown Tristate = iota
	False
	True
)

func (t Tristate) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	default:
		return "unknown"
	}
}

// TotalCount returns the total reported by the first page. ok is false only
// while no page is loaded.
func TotalCount(pages []domain.IssuePage) (total int, ok bool) {
	if len(pages) == 0 {
		return 0, false
	}
	return pages[0].Pagination.TotalCount, true
}

// HaveIssues reports whether the query matched at least one issue.
func HaveIssues(pages []domain.IssuePage) bool {
	total, ok := TotalCount(pages)
	return ok && total > 0
}

// AnyIssueHasMarker reports whether any loaded issue carries the polar label.
// It is Unknown until a page has loaded.
func AnyIssueHasMarker(pages []domain.IssuePage) Tristate {
	if len(pages) == 0 {
		return Unknown
	}
	for _, page := range pages {
		for _, issue := range page.Data {
			for _, label := range issue.Labels {
				if label.Name == MarkerLabel {
					return True
				}
			}
		}
	}
	return False
}

// IsDefaultFilterView reports whether the status flags are exactly the default
// open-issue set. Search text, sort, and toggles are not considered.
func IsDefaultFilterView(f filters.Filters) bool {
	return f.StatusBacklog &&
		f.StatusTriaged &&
		f.StatusInProgress &&
		f.StatusPullRequest &&
		!f.StatusClosed
}

// ShowOnboardingBanner reports whether to show the "add badge" onboarding banner:
// issues tab, first page settled, issues present, none marked, default statuses.
// While the marker state is Unknown the banner stays hidden.
func ShowOnboardingBanner(f filters.Filters, isLoading bool, pages []domain.IssuePage) bool {
	return f.Tab == domain.ListTypeIssues &&
		!isLoading &&
		HaveIssues(pages) &&
		AnyIssueHasMarker(pages) == False &&
		IsDefaultFilterView(f)
}

// Flags bundles every derived flag for one render.
type Flags struct {
	TotalCount           int
	HasTotal             bool
	HaveIssues           bool
	AnyIssueHasMarker    Tristate
	IsDefaultFilterView  bool
	ShowOnboardingBanner bool
}

// Evaluate computes all flags for the given state.
func Evaluate(f filters.Filters, isLoading bool, pages []domain.IssuePage) Flags {
	total, ok := TotalCount(pages)
	return Flags{
		TotalCount:           total,
		HasTotal:             ok,
		HaveIssues:           HaveIssues(pages),
		AnyIssueHasMarker:    AnyIssueHasMarker(pages),
		IsDefaultFilterView:  IsDefaultFilterView(f),
		ShowOnboardingBanner: ShowOnboardingBanner(f, isLoading, pages),
	}
}
