package filters

import (
	"net/url"
	"testing"

	"github.com/h0rv/polardash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return q
}

func TestDecode_Example(t *testing.T) {
	f := Decode(mustQuery(t, "statuses=backlog,closed&sort=relevance&onlyPledged"))

	assert.True(t, f.StatusBacklog)
	assert.False(t, f.StatusTriaged)
	assert.False(t, f.StatusInProgress)
	assert.False(t, f.StatusPullRequest)
	assert.True(t, f.StatusClosed)
	assert.Equal(t, domain.SortRelevance, f.Sort)
	assert.True(t, f.OnlyPledged)
	assert.False(t, f.OnlyBadged)
	assert.Equal(t, domain.ListTypeIssues, f.Tab)

	assert.Equal(t, []domain.IssueStatus{domain.IssueStatusBacklog, domain.IssueStatusClosed}, Statuses(f))
}

func TestDecode_EmptyQueryIsDefault(t *testing.T) {
	assert.Equal(t, Default(), Decode(url.Values{}))
}

func TestDecode_StatusesAbsentKeepsDefaults(t *testing.T) {
	f := Decode(mustQuery(t, "q=crash"))

	assert.Equal(t, "crash", f.Query)
	assert.True(t, f.StatusBacklog)
	assert.True(t, f.StatusTriaged)
	assert.True(t, f.StatusInProgress)
	assert.True(t, f.StatusPullRequest)
	assert.False(t, f.StatusClosed)
}

func TestDecode_EmptyStatusesValueKeepsDefaults(t *testing.T) {
	f := Decode(mustQuery(t, "statuses="))
	assert.Equal(t, Default(), f)
}

func TestDecode_UnknownStatusTokensIgnored(t *testing.T) {
	f := Decode(mustQuery(t, "statuses=triaged,bogus"))

	assert.Equal(t, []domain.IssueStatus{domain.IssueStatusTriaged}, Statuses(f))
}

func TestDecode_StatusTokensMatchExactly(t *testing.T) {
	f := Decode(url.Values{KeyStatuses: {"backlog, closed"}})

	assert.Equal(t, []domain.IssueStatus{domain.IssueStatusBacklog}, Statuses(f))
}

func TestDecode_UnknownSortFallsBackToNewest(t *testing.T) {
	f := Decode(mustQuery(t, "sort=unknown_token"))
	assert.Equal(t, domain.SortNewest, f.Sort)

	f = Decode(mustQuery(t, "sort="))
	assert.Equal(t, domain.SortNewest, f.Sort)
}

func TestDecode_PresenceOnlyToggles(t *testing.T) {
	f := Decode(mustQuery(t, "onlyBadged=false&onlyPledged=0"))

	assert.True(t, f.OnlyBadged, "presence alone turns the toggle on")
	assert.True(t, f.OnlyPledged)
}

func TestDecode_Idempotent(t *testing.T) {
	q := mustQuery(t, "statuses=in_progress&sort=most_engagement&q=docs")
	assert.Equal(t, Decode(q), Decode(q))
}

func TestParseSort_AllTokens(t *testing.T) {
	cases := map[string]domain.IssueSortBy{
		"newest":                  domain.SortNewest,
		"pledged_amount_desc":     domain.SortPledgedAmountDesc,
		"relevance":               domain.SortRelevance,
		"dependencies_default":    domain.SortDependenciesDefault,
		"most_positive_reactions": domain.SortMostPositiveReactions,
		"most_engagement":         domain.SortMostEngagement,
		"":                        domain.SortNewest,
		"NEWEST":                  domain.SortNewest,
	}
	for token, want := range cases {
		assert.Equal(t, want, ParseSort(token), "token %q", token)
	}
}

func TestNextSort_Cycles(t *testing.T) {
	s := domain.SortNewest
	seen := map[domain.IssueSortBy]bool{}
	for i := 0; i < len(sortTokens); i++ {
		seen[s] = true
		s = NextSort(s)
	}
	assert.Equal(t, domain.SortNewest, s)
	assert.Len(t, seen, len(sortTokens))
}

func TestEncode_DefaultIsEmpty(t *testing.T) {
	assert.Empty(t, Encode(Default()))
}

func TestEncode_OmitsDefaults(t *testing.T) {
	f := Default()
	f.OnlyBadged = true

	q := Encode(f)
	assert.True(t, q.Has(KeyOnlyBadged))
	assert.False(t, q.Has(KeyStatuses))
	assert.False(t, q.Has(KeySort))
	assert.False(t, q.Has(KeyQuery))
}

// allStatusCombos enumerates every combination of the five status flags.
func allStatusCombos() []Filters {
	var out []Filters
	for mask := 0; mask < 32; mask++ {
		f := Default()
		f.StatusBacklog = mask&1 != 0
		f.StatusTriaged = mask&2 != 0
		f.StatusInProgress = mask&4 != 0
		f.StatusPullRequest = mask&8 != 0
		f.StatusClosed = mask&16 != 0
		out = append(out, f)
	}
	return out
}

func TestRoundTrip_StatusProjection(t *testing.T) {
	for _, f := range allStatusCombos() {
		got := Decode(Encode(f))
		assert.Equal(t, Statuses(f), Statuses(got), "mask %+v", f)
	}
}

func TestRoundTrip_FullValue(t *testing.T) {
	for _, raw := range []string{
		"",
		"q=hello+world",
		"statuses=closed",
		"statuses=backlog,triaged&sort=pledged_amount_desc&onlyBadged",
		"sort=relevance&onlyPledged&onlyBadged&q=x",
		"statuses=bogus",
	} {
		f := Decode(mustQuery(t, raw))
		assert.Equal(t, f, Decode(Encode(f)), "query %q", raw)
	}
}

func TestStatuses_OrderStableAndDuplicateFree(t *testing.T) {
	order := map[domain.IssueStatus]int{
		domain.IssueStatusBacklog:     0,
		domain.IssueStatusTriaged:     1,
		domain.IssueStatusInProgress:  2,
		domain.IssueStatusPullRequest: 3,
		domain.IssueStatusClosed:      4,
	}
	for _, f := range allStatusCombos() {
		got := Statuses(f)
		seen := map[domain.IssueStatus]bool{}
		for i, s := range got {
			assert.False(t, seen[s], "duplicate %s", s)
			seen[s] = true
			if i > 0 {
				assert.Less(t, order[got[i-1]], order[s])
			}
		}
	}
}

func TestToggleStatus(t *testing.T) {
	f := ToggleStatus(Default(), domain.IssueStatusClosed)
	assert.True(t, f.StatusClosed)

	f = ToggleStatus(f, domain.IssueStatusBacklog)
	assert.False(t, f.StatusBacklog)
	assert.True(t, Default().StatusBacklog, "Default is not mutated")
}
