// Package tui provides Bubble Tea models for the interactive dashboard.
package tui

import (
	"github.com/h0rv/polardash/internal/domain"
)

// OrgSelectedMsg is emitted when the user selects an organization.
type OrgSelectedMsg struct {
	Org domain.Organization
}

// RepoSelectedMsg is emitted when the user narrows the dashboard to a repository.
// An empty Repo selects every repository of the organization.
type RepoSelectedMsg struct {
	Repo string
}

// SortSelectedMsg is emitted when the user picks a sort order.
type SortSelectedMsg struct {
	Sort domain.IssueSortBy
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// Screen transition requests raised by child models and handled by AppModel.
type (
	openDetailMsg      struct{ issue domain.Issue }
	closeDetailMsg     struct{}
	openOrgPickerMsg   struct{}
	openRepoPickerMsg  struct{}
	openSortPickerMsg  struct{ current domain.IssueSortBy }
	openBackofficeMsg  struct{}
	closeBackofficeMsg struct{}
	pickerCancelledMsg struct{}
)
