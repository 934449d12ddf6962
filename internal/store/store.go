// Package store provides the in-memory state of the paginated dashboard issue query.
// It owns the page list, the query key, and the in-flight bookkeeping that keeps
// responses for an old key from leaking into the result for a new one.
package store

import (
	"context"
	"errors"
	"slices"

	"github.com/h0rv/polardash/internal/domain"
	"github.com/h0rv/polardash/internal/filters"
)

var (
	// ErrNoKey indicates no query key has been set.
	ErrNoKey = errors.New("no query key set")
	// ErrStale indicates a result arrived for a superseded query generation.
	ErrStale = errors.New("stale page result")
)

// QueryKey identifies one dashboard issue query. Any change to a field restarts
// pagination from the first page.
type QueryKey struct {
	Platform    domain.Platform // empty means GitHub
	Org         string
	Repo        string
	Tab         domain.IssueListType
	Query       string
	Statuses    []domain.IssueStatus
	Sort        domain.IssueSortBy
	OnlyPledged bool
	OnlyBadged  bool
}

// NewQueryKey builds the key for an organization (and optional repository) view
// under the given filters.
func NewQueryKey(org, repo string, f filters.Filters) QueryKey {
	return QueryKey{
		Org:         org,
		Repo:        repo,
		Tab:         f.Tab,
		Query:       f.Query,
		Statuses:    filters.Statuses(f),
		Sort:        f.Sort,
		OnlyPledged: f.OnlyPledged,
		OnlyBadged:  f.OnlyBadged,
	}
}

// Equal reports whether two keys select the same query.
func (k QueryKey) Equal(o QueryKey) bool {
	return k.Platform == o.Platform &&
		k.Org == o.Org &&
		k.Repo == o.Repo &&
		k.Tab == o.Tab &&
		k.Query == o.Query &&
		slices.Equal(k.Statuses, o.Statuses) &&
		k.Sort == o.Sort &&
		k.OnlyPledged == o.OnlyPledged &&
		k.OnlyBadged == o.OnlyBadged
}

// PageRequest describes one page fetch issued by the store. Ctx is cancelled
// when the key changes.
type PageRequest struct {
	Ctx        context.Context
	Key        QueryKey
	Page       int
	Generation uint64
}

// PageResult is the outcome of a PageRequest, tagged with the request's generation.
type PageResult struct {
	Generation uint64
	Page       *domain.IssuePage
	Err        error
}

// PageFetcher fetches one page of the dashboard issue list.
type PageFetcher interface {
	ListDashboardIssues(ctx context.Context, key QueryKey, page int) (*domain.IssuePage, error)
}

// Run performs the request against f and tags the result.
func (r *PageRequest) Run(f PageFetcher) PageResult {
	page, err := f.ListDashboardIssues(r.Ctx, r.Key, r.Page)
	return PageResult{Generation: r.Generation, Page: page, Err: err}
}

// FirstPage is the page number pagination starts from.
const FirstPage = 1

// Store manages the pages of the current dashboard query.
// It is owned by a single UI loop and is not safe for concurrent use; fetches run
// elsewhere and report back through Receive.
type Store struct {
	parent context.Context

	key    QueryKey
	hasKey bool

	// generation increments whenever existing pages are discarded. Results
	// carrying an older generation are dropped.
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc

	pages    []domain.IssuePage
	inFlight bool
	err      error
}

// New creates an empty Store. Requests derive their contexts from ctx.
func New(ctx context.Context) *Store {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Store{parent: ctx}
}

// Key returns the current query key and whether one is set.
func (s *Store) Key() (QueryKey, bool) {
	return s.key, s.hasKey
}

// SetKey switches the store to key. If key differs from the current one, all
// pages are dropped, the in-flight request (if any) is cancelled, and the first
// page request is returned. An unchanged key returns nil, false.
func (s *Store) SetKey(key QueryKey) (*PageRequest, bool) {
	if s.hasKey && s.key.Equal(key) {
		return nil, false
	}
	s.key = key
	s.hasKey = true
	return s.restart(), true
}

// Invalidate discards all pages for the current key and returns a request for
// the first page. Returns ErrNoKey when no key has been set.
func (s *Store) Invalidate() (*PageRequest, error) {
	if !s.hasKey {
		return nil, ErrNoKey
	}
	return s.restart(), nil
}

// FetchNextPage returns a request for the page after the last loaded one. It is a
// no-op while any request is in flight or when there is no next page.
func (s *Store) FetchNextPage() (*PageRequest, bool) {
	if !s.hasKey || s.inFlight || !s.HasNextPage() {
		return nil, false
	}
	next := s.pages[len(s.pages)-1].Pagination.NextPage
	return s.request(next), true
}

// Receive applies a result. Results from a superseded generation are ignored and
// ErrStale is returned. A fetch error is recorded on the store and returned.
func (s *Store) Receive(res PageResult) error {
	if res.Generation != s.generation {
		return ErrStale
	}
	s.inFlight = false
	if res.Err != nil {
		s.err = res.Err
		return res.Err
	}
	s.err = nil
	if res.Page != nil {
		s.pages = append(s.pages, *res.Page)
	}
	return nil
}

// Pages returns a copy of the loaded pages in fetch order.
func (s *Store) Pages() []domain.IssuePage {
	return slices.Clone(s.pages)
}

// Issues returns every loaded issue across pages in order.
func (s *Store) Issues() []domain.Issue {
	var out []domain.Issue
	for _, p := range s.pages {
		out = append(out, p.Data...)
	}
	return out
}

// Err returns the error of the last completed request for the current generation.
func (s *Store) Err() error {
	return s.err
}

// IsLoading reports whether the first page is in flight.
func (s *Store) IsLoading() bool {
	return s.inFlight && len(s.pages) == 0
}

// IsInitialLoading reports whether there is no data at all yet and a fetch is
// in flight. A store without a key, or whose first page failed, is not loading.
func (s *Store) IsInitialLoading() bool {
	return s.inFlight && len(s.pages) == 0 && s.err == nil
}

// IsFetchingNextPage reports whether a page after the first is in flight.
func (s *Store) IsFetchingNextPage() bool {
	return s.inFlight && len(s.pages) > 0
}

// HasNextPage reports whether the last loaded page points at another page.
func (s *Store) HasNextPage() bool {
	if len(s.pages) == 0 {
		return false
	}
	return s.pages[len(s.pages)-1].Pagination.NextPage > 0
}

// Close cancels any in-flight request.
func (s *Store) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Store) restart() *PageRequest {
	s.Close()
	s.generation++
	s.pages = nil
	s.err = nil
	s.ctx, s.cancel = context.WithCancel(s.parent)
	return s.request(FirstPage)
}

func (s *Store) request(page int) *PageRequest {
	s.inFlight = true
	return &PageRequest{
		Ctx:        s.ctx,
		Key:        s.key,
		Page:       page,
		Generation: s.generation,
	}
}
