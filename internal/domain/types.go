// Package domain defines the normalized domain types for the Polar dashboard.
// These types represent the core concepts independent of the Polar REST API structure.
package domain

import (
	"strconv"
	"time"
)

// Platform identifies the external issue tracker an organization lives on.
type Platform string

const PlatformGitHub Platform = "github"

// IssueStatus is a lifecycle state of an issue as tracked by Polar.
type IssueStatus string

const (
	IssueStatusBacklog     IssueStatus = "backlog"
	IssueStatusTriaged     IssueStatus = "triaged"
	IssueStatusInProgress  IssueStatus = "in_progress"
	IssueStatusPullRequest IssueStatus = "pull_request"
	IssueStatusClosed      IssueStatus = "closed"
)

// IssueSortBy is the ordering requested from the dashboard endpoint.
type IssueSortBy string

const (
	SortNewest                IssueSortBy = "newest"
	SortPledgedAmountDesc     IssueSortBy = "pledged_amount_desc"
	SortRelevance             IssueSortBy = "relevance"
	SortDependenciesDefault   IssueSortBy = "dependencies_default"
	SortMostPositiveReactions IssueSortBy = "most_positive_reactions"
	SortMostEngagement        IssueSortBy = "most_engagement"
)

// IssueListType selects which list the dashboard shows.
type IssueListType string

const (
	ListTypeIssues       IssueListType = "issues"
	ListTypeDependencies IssueListType = "dependencies"
)

// Organization is a Polar organization (mirrors a GitHub org or user account).
type Organization struct {
	ID        string
	Platform  Platform
	Name      string
	AvatarURL string
}

// Repository is a repository connected to Polar.
type Repository struct {
	ID           string
	Platform     Platform
	Name         string
	Organization Organization
}

// FullName returns "org/repo".
func (r Repository) FullName() string {
	return r.Organization.Name + "/" + r.Name
}

// Label is an issue label as mirrored from the issue tracker.
type Label struct {
	Name  string
	Color string
}

// Issue is a tracked issue as returned by the dashboard endpoint.
type Issue struct {
	ID             string
	Platform       Platform
	Number         int
	Title          string
	Body           string
	State          string // "open" or "closed"
	Status         IssueStatus
	Labels         []Label
	Repository     Repository
	IssueCreatedAt time.Time
	Reactions      int
	Comments       int
	PledgedAmount  Money
}

// URL returns the issue's location on GitHub.
func (i Issue) URL() string {
	return "https://github.com/" + i.Repository.FullName() + "/issues/" + strconv.Itoa(i.Number)
}

// Pagination is the pagination block of a list response.
type Pagination struct {
	TotalCount int
	NextPage   int // 0 when there are no more pages
}

// IssuePage is one page of the dashboard issue list.
type IssuePage struct {
	Data       []Issue
	Pagination Pagination
}

// Comment represents a comment on an issue.
type Comment struct {
	ID        string // GitHub comment node ID
	Author    string // Author login (may be empty if user deleted)
	Body      string // Comment body text
	CreatedAt string // ISO8601 timestamp
	UpdatedAt string // ISO8601 timestamp
}

// IssueDetail holds the GitHub-side content of an issue.
type IssueDetail struct {
	NodeID    string // GitHub node ID, used as the subject when commenting
	Author    string
	Body      string
	CreatedAt string
	Comments  []Comment
}
