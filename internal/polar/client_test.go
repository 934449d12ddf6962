package polar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL: srv.URL,
		Token:   "polar_pat_test",
		Retry:   RetryPolicy{Attempts: 3, Backoff: time.Millisecond},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const dashboardFixture = `{
  "data": [
    {
      "id": "iss_1",
      "type": "issue",
      "attributes": {
        "platform": "github",
        "number": 42,
        "title": "Crash on start",
        "state": "open",
        "progress": "triaged",
        "labels": [{"name": "polar", "color": "ededed"}],
        "issue_created_at": "2023-06-01T10:00:00Z",
        "reactions": {"plus_one": 7},
        "comments": 3,
        "funding": {"pledges_sum": {"currency": "USD", "amount": 15000}}
      },
      "relationships": {"repository": {"data": {"id": "repo_1", "type": "repository"}}}
    }
  ],
  "included": [
    {
      "id": "repo_1",
      "type": "repository",
      "attributes": {"platform": "github", "name": "polar", "organization": {"id": "org_1", "name": "polarsource", "platform": "github"}}
    }
  ],
  "pagination": {"total_count": 31, "page": 1, "next_page": 2}
}`

func TestListDashboardIssues(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	var gotAuth, gotReqID string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(dashboardFixture))
	})

	key := store.QueryKey{
		Org:         "polarsource",
		Repo:        "polar",
		Tab:         domain.ListTypeIssues,
		Query:       "crash",
		Statuses:    []domain.IssueStatus{domain.IssueStatusBacklog, domain.IssueStatusTriaged},
		Sort:        domain.SortPledgedAmountDesc,
		OnlyPledged: true,
	}
	page, err := c.ListDashboardIssues(context.Background(), key, 1)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/dashboard/github/polarsource", gotPath)
	assert.Equal(t, []string{"polar"}, gotQuery["repo_name"])
	assert.Equal(t, []string{"issues"}, gotQuery["issue_list_type"])
	assert.Equal(t, []string{"crash"}, gotQuery["q"])
	assert.Equal(t, []string{"backlog", "triaged"}, gotQuery["status"])
	assert.Equal(t, []string{"pledged_amount_desc"}, gotQuery["sort"])
	assert.Equal(t, []string{"true"}, gotQuery["only_pledged"])
	assert.NotContains(t, gotQuery, "only_badged")
	assert.Equal(t, []string{"1"}, gotQuery["page"])
	assert.Equal(t, "Bearer polar_pat_test", gotAuth)
	assert.True(t, strings.HasPrefix(gotReqID, "pd-"))

	require.Len(t, page.Data, 1)
	issue := page.Data[0]
	assert.Equal(t, "iss_1", issue.ID)
	assert.Equal(t, 42, issue.Number)
	assert.Equal(t, domain.IssueStatusTriaged, issue.Status)
	assert.Equal(t, 7, issue.Reactions)
	assert.Equal(t, int64(15000), issue.PledgedAmount.Amount)
	assert.Equal(t, "polarsource/polar", issue.Repository.FullName())
	assert.Equal(t, []domain.Label{{Name: "polar", Color: "ededed"}}, issue.Labels)
	assert.Equal(t, 31, page.Pagination.TotalCount)
	assert.Equal(t, 2, page.Pagination.NextPage)
}

func TestListDashboardIssues_UsesKeyPlatform(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(dashboardFixture))
	})

	_, err := c.ListDashboardIssues(context.Background(), store.QueryKey{Platform: "gitlab", Org: "polarsource"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/dashboard/gitlab/polarsource", gotPath)
}

func TestListDashboardIssues_RequiresOrg(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:0"})
	_, err := c.ListDashboardIssues(context.Background(), store.QueryKey{}, 1)
	assert.ErrorIs(t, err, ErrNoOrganization)
}

func TestRetry_ServerErrorThenSuccess(t *testing.T) {
	var calls atomic.Int32
	ids := make(chan string, 3)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Request-Id")
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "upstream"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}, "pagination": map[string]int{"total_count": 0}})
	})

	orgs, err := c.ListUserOrganizations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orgs)
	assert.Equal(t, int32(3), calls.Load())

	first := <-ids
	assert.Equal(t, first, <-ids, "retries reuse the request id")
}

func TestRetry_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not permitted"})
	})

	_, err := c.ListUserOrganizations(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Not permitted", apiErr.Detail)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_ExhaustedReturnsLastError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "down"})
	})

	_, err := c.ListPendingRewards(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_ContextCancelledStopsBackoff(t *testing.T) {
	p := RetryPolicy{Attempts: 5, Backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(int) error {
			calls++
			return errors.New("connection reset")
		})
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("retry did not observe cancellation")
	}
	assert.Equal(t, 1, calls)
}

func TestRetry_MalformedBodyNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [`))
	})

	_, err := c.ListUserOrganizations(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryPolicy_DoublingSchedule(t *testing.T) {
	b := RetryPolicy{Attempts: 4, Backoff: 100 * time.Millisecond}.backOff(context.Background())
	b.Reset()

	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 200*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 400*time.Millisecond, b.NextBackOff())
	assert.Equal(t, backoff.Stop, b.NextBackOff())
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(errors.New("dial tcp: refused")))
	assert.False(t, Retryable(fmt.Errorf("decoding: %w", ErrMalformedResponse)))
	assert.True(t, Retryable(&APIError{StatusCode: 500}))
	assert.True(t, Retryable(&APIError{StatusCode: 429}))
	assert.False(t, Retryable(&APIError{StatusCode: 404}))
	assert.False(t, Retryable(&APIError{StatusCode: 422}))
	assert.False(t, Retryable(context.Canceled))
}

func TestAPIError_ValidationDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "field required"}, {"msg": "invalid id"}},
		})
	})

	err := c.CreateRewardTransfer(context.Background(), "p1", "r1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "field required; invalid id", apiErr.Detail)
	assert.Contains(t, err.Error(), "422")
}

func TestCreateRewardTransfer(t *testing.T) {
	var calls atomic.Int32
	var body transferRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/backoffice/pledges/rewards/transfer", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]string{"id": "p1"})
	})

	require.NoError(t, c.CreateRewardTransfer(context.Background(), "p1", "r1"))
	assert.Equal(t, transferRequest{PledgeID: "p1", IssueRewardID: "r1"}, body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateRewardTransfer_NotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "stripe"})
	})

	require.Error(t, c.CreateRewardTransfer(context.Background(), "p1", "r1"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestListPendingRewards(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/backoffice/rewards/pending", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "items": [
		    {
		      "pledge": {"id": "p1", "amount": {"currency": "USD", "amount": 10000}, "state": "pending",
		                 "pledger": {"github_username": "backer"},
		                 "issue": {"id": "i1", "number": 5, "title": "Bug"}},
		      "user": {"id": "u1", "username": "zegl"},
		      "amount": {"currency": "USD", "amount": 9000},
		      "issue_reward_id": "r1",
		      "pledge_payment_id": "pi_123",
		      "pledger_email": "backer@example.com"
		    },
		    {
		      "pledge": {"id": "p1", "amount": {"currency": "USD", "amount": 10000}, "state": "pending",
		                 "issue": {"id": "i1", "number": 5, "title": "Bug"}},
		      "organization": {"id": "o1", "name": "polarsource"},
		      "amount": {"currency": "USD", "amount": 1000},
		      "paid_at": "2023-08-01T00:00:00Z",
		      "issue_reward_id": "r2"
		    },
		    {
		      "pledge": {"id": "p2", "amount": {"currency": "USD", "amount": 500}, "issue": {"id": "i2"}},
		      "user": {"id": "u2", "username": "x"},
		      "organization": {"id": "o2", "name": "y"},
		      "issue_reward_id": "r3"
		    }
		  ],
		  "pagination": {"total_count": 3, "page": 1}
		}`))
	})

	rewards, err := c.ListPendingRewards(context.Background())
	require.NoError(t, err)
	require.Len(t, rewards, 2, "reward naming both recipients is dropped")

	assert.Equal(t, domain.UserRecipient{ID: "u1", Username: "zegl"}, rewards[0].Recipient)
	assert.Equal(t, "backer", rewards[0].Pledge.Pledger.DisplayName())
	assert.Equal(t, "backer@example.com", rewards[0].PledgerEmail)
	assert.False(t, rewards[0].Paid())
	assert.Equal(t, "https://dashboard.stripe.com/payments/pi_123", rewards[0].PaymentURL())

	assert.Equal(t, domain.OrganizationRecipient{ID: "o1", Name: "polarsource"}, rewards[1].Recipient)
	assert.True(t, rewards[1].Paid())
	assert.Nil(t, rewards[1].Pledge.Pledger)
}

func TestLookupOrganization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/organizations/lookup", r.URL.Path)
		assert.Equal(t, "github", r.URL.Query().Get("platform"))
		if r.URL.Query().Get("organization_name") == "polarsource" {
			writeJSON(w, http.StatusOK, map[string]string{"id": "o1", "name": "polarsource", "platform": "github"})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found"})
	})

	org, err := c.LookupOrganization(context.Background(), domain.PlatformGitHub, "polarsource")
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, "o1", org.ID)

	org, err = c.LookupOrganization(context.Background(), domain.PlatformGitHub, "missing")
	require.NoError(t, err)
	assert.Nil(t, org)
}

func TestListRepositories_FiltersByOrganization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "o1", r.URL.Query().Get("organization_id"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": "r1", "name": "polar", "organization": map[string]string{"id": "o1", "name": "polarsource"}},
				{"id": "r2", "name": "other", "organization": map[string]string{"id": "o2", "name": "elsewhere"}},
			},
		})
	})

	repos, err := c.ListRepositories(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "polarsource/polar", repos[0].FullName())
}

func TestListPersonalPledges(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": "p1", "amount": map[string]any{"currency": "USD", "amount": 2000}, "state": "created"},
			},
		})
	})

	pledges, err := c.ListPersonalPledges(context.Background())
	require.NoError(t, err)
	require.Len(t, pledges, 1)
	assert.Equal(t, domain.PledgeStateCreated, pledges[0].State)
	assert.Equal(t, int64(2000), pledges[0].Amount.Amount)
}
