package dashboard

import (
	"testing"

	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/filters"
	"github.com/stretchr/testify/assert"
)

func createTestPages(total int, labels ...string) []domain.IssuePage {
	page := domain.IssuePage{Pagination: domain.Pagination{TotalCount: total}}
	for i, l := range labels {
		issue := domain.Issue{ID: string(rune('a' + i)), Number: i + 1}
		if l != "" {
			issue.Labels = []domain.Label{{Name: l}}
		}
		page.Data = append(page.Data, issue)
	}
	return []domain.IssuePage{page}
}

func TestTotalCount(t *testing.T) {
	_, ok := TotalCount(nil)
	assert.False(t, ok)

	total, ok := TotalCount(createTestPages(0))
	assert.True(t, ok, "a loaded page with no matches has a known total")
	assert.Equal(t, 0, total)

	total, ok = TotalCount([]domain.IssuePage{{}})
	assert.True(t, ok)
	assert.Equal(t, 0, total)

	total, ok = TotalCount(createTestPages(7, "bug"))
	assert.True(t, ok)
	assert.Equal(t, 7, total)
}

func TestHaveIssues(t *testing.T) {
	assert.False(t, HaveIssues(nil))
	assert.False(t, HaveIssues(createTestPages(0)))
	assert.True(t, HaveIssues(createTestPages(1, "")))
}

func TestAnyIssueHasMarker(t *testing.T) {
	assert.Equal(t, Unknown, AnyIssueHasMarker(nil))
	assert.Equal(t, False, AnyIssueHasMarker(createTestPages(2, "bug", "")))
	assert.Equal(t, True, AnyIssueHasMarker(createTestPages(2, "bug", MarkerLabel)))

	// Marker on a later page.
	pages := append(createTestPages(3, "bug"), createTestPages(3, "", MarkerLabel)...)
	assert.Equal(t, True, AnyIssueHasMarker(pages))

	// Empty pages are known to have no marker.
	assert.Equal(t, False, AnyIssueHasMarker([]domain.IssuePage{{}}))
}

func TestIsDefaultFilterView(t *testing.T) {
	f := filters.Default()
	assert.True(t, IsDefaultFilterView(f))

	f.Query = "anything"
	f.Sort = domain.SortRelevance
	f.OnlyPledged = true
	f.OnlyBadged = true
	assert.True(t, IsDefaultFilterView(f), "only status flags matter")

	assert.False(t, IsDefaultFilterView(filters.ToggleStatus(filters.Default(), domain.IssueStatusClosed)))
	assert.False(t, IsDefaultFilterView(filters.ToggleStatus(filters.Default(), domain.IssueStatusTriaged)))
}

func TestShowOnboardingBanner(t *testing.T) {
	f := filters.Default()
	unmarked := createTestPages(2, "bug", "")

	assert.True(t, ShowOnboardingBanner(f, false, unmarked))

	// Each conjunct alone hides the banner.
	assert.False(t, ShowOnboardingBanner(f, true, unmarked), "loading")
	assert.False(t, ShowOnboardingBanner(f, false, nil), "marker unknown")
	assert.False(t, ShowOnboardingBanner(f, false, createTestPages(2, MarkerLabel)), "marker present")
	assert.False(t, ShowOnboardingBanner(f, false, createTestPages(0)), "no issues")
	assert.False(t, ShowOnboardingBanner(filters.ToggleStatus(f, domain.IssueStatusClosed), false, unmarked), "non-default view")

	deps := f
	deps.Tab = domain.ListTypeDependencies
	assert.False(t, ShowOnboardingBanner(deps, false, unmarked), "other tab")
}

func TestShowOnboardingBanner_AllStatusCombos(t *testing.T) {
	unmarked := createTestPages(2, "")
	for mask := 0; mask < 32; mask++ {
		f := filters.Default()
		f.StatusBacklog = mask&1 != 0
		f.StatusTriaged = mask&2 != 0
		f.StatusInProgress = mask&4 != 0
		f.StatusPullRequest = mask&8 != 0
		f.StatusClosed = mask&16 != 0

		want := mask == 15
		assert.Equal(t, want, ShowOnboardingBanner(f, false, unmarked), "mask %05b", mask)
	}
}

func TestEvaluate(t *testing.T) {
	flags := Evaluate(filters.Default(), false, createTestPages(3, ""))
	assert.Equal(t, Flags{
		TotalCount:           3,
		HasTotal:             true,
		HaveIssues:           true,
		AnyIssueHasMarker:    False,
		IsDefaultFilterView:  true,
		ShowOnboardingBanner: true,
	}, flags)
	assert.Equal(t, "false", flags.AnyIssueHasMarker.String())

	empty := Evaluate(filters.Default(), false, createTestPages(0))
	assert.True(t, empty.HasTotal)
	assert.Equal(t, 0, empty.TotalCount)
	assert.False(t, empty.HaveIssues)
	assert.False(t, empty.ShowOnboardingBanner)
}
