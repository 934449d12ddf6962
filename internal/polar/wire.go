package polar

import (
	"errors"
	"fmt"
	"time"

	"github.com/h0rv/polardash/internal/domain"
)

// JSON shapes returned by the Polar API. These mirror the response bodies and are
// converted into domain types before leaving the package.

type wireListResource[T any] struct {
	Items      []T            `json:"items"`
	Pagination wirePagination `json:"pagination"`
}

type wirePagination struct {
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	NextPage   int `json:"next_page"`
}

type wireCurrencyAmount struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

func (a *wireCurrencyAmount) toDomain() domain.Money {
	if a == nil {
		return domain.Money{Currency: "USD"}
	}
	cur := a.Currency
	if cur == "" {
		cur = "USD"
	}
	return domain.Money{Amount: a.Amount, Currency: cur}
}

type wireOrganization struct {
	ID        string `json:"id"`
	Platform  string `json:"platform"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (o wireOrganization) toDomain() domain.Organization {
	return domain.Organization{
		ID:        o.ID,
		Platform:  domain.Platform(o.Platform),
		Name:      o.Name,
		AvatarURL: o.AvatarURL,
	}
}

type wireRepository struct {
	ID           string            `json:"id"`
	Platform     string            `json:"platform"`
	Name         string            `json:"name"`
	Organization *wireOrganization `json:"organization"`
}

func (r wireRepository) toDomain() domain.Repository {
	repo := domain.Repository{
		ID:       r.ID,
		Platform: domain.Platform(r.Platform),
		Name:     r.Name,
	}
	if r.Organization != nil {
		repo.Organization = r.Organization.toDomain()
	}
	return repo
}

type wireLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type wireReactions struct {
	PlusOne int `json:"plus_one"`
}

type wireFunding struct {
	PledgesSum *wireCurrencyAmount `json:"pledges_sum"`
}

type wireIssue struct {
	ID             string          `json:"id"`
	Platform       string          `json:"platform"`
	Number         int             `json:"number"`
	Title          string          `json:"title"`
	Body           string          `json:"body"`
	State          string          `json:"state"`
	Progress       string          `json:"progress"`
	Labels         []wireLabel     `json:"labels"`
	IssueCreatedAt time.Time       `json:"issue_created_at"`
	Reactions      *wireReactions  `json:"reactions"`
	Comments       int             `json:"comments"`
	Funding        *wireFunding    `json:"funding"`
	Repository     *wireRepository `json:"repository"`
}

func (i wireIssue) toDomain() domain.Issue {
	issue := domain.Issue{
		ID:             i.ID,
		Platform:       domain.Platform(i.Platform),
		Number:         i.Number,
		Title:          i.Title,
		Body:           i.Body,
		State:          i.State,
		Status:         domain.IssueStatus(i.Progress),
		IssueCreatedAt: i.IssueCreatedAt,
		Comments:       i.Comments,
	}
	for _, l := range i.Labels {
		issue.Labels = append(issue.Labels, domain.Label{Name: l.Name, Color: l.Color})
	}
	if i.Reactions != nil {
		issue.Reactions = i.Reactions.PlusOne
	}
	if i.Funding != nil {
		issue.PledgedAmount = i.Funding.PledgesSum.toDomain()
	} else {
		issue.PledgedAmount = domain.Money{Currency: "USD"}
	}
	if i.Repository != nil {
		issue.Repository = i.Repository.toDomain()
	}
	return issue
}

// The dashboard endpoint uses a JSON:API style envelope: issues in data, with
// their repositories and organizations side-loaded in included.

type wireRelationship struct {
	Data *struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"data"`
}

type wireDashboardEntry struct {
	ID            string                      `json:"id"`
	Type          string                      `json:"type"`
	Attributes    wireIssue                   `json:"attributes"`
	Relationships map[string]wireRelationship `json:"relationships"`
}

type wireIncluded struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes wireRepository `json:"attributes"`
}

type wireDashboardResponse struct {
	Data       []wireDashboardEntry `json:"data"`
	Included   []wireIncluded       `json:"included"`
	Pagination wirePagination       `json:"pagination"`
}

func (r wireDashboardResponse) toDomain() *domain.IssuePage {
	repos := make(map[string]wireRepository)
	for _, inc := range r.Included {
		if inc.Type == "repository" {
			repo := inc.Attributes
			if repo.ID == "" {
				repo.ID = inc.ID
			}
			repos[inc.ID] = repo
		}
	}

	page := &domain.IssuePage{
		Data: make([]domain.Issue, 0, len(r.Data)),
		Pagination: domain.Pagination{
			TotalCount: r.Pagination.TotalCount,
			NextPage:   r.Pagination.NextPage,
		},
	}
	for _, entry := range r.Data {
		attrs := entry.Attributes
		if attrs.ID == "" {
			attrs.ID = entry.ID
		}
		if attrs.Repository == nil {
			if rel, ok := entry.Relationships["repository"]; ok && rel.Data != nil {
				if repo, ok := repos[rel.Data.ID]; ok {
					attrs.Repository = &repo
				}
			}
		}
		page.Data = append(page.Data, attrs.toDomain())
	}
	return page
}

type wirePledger struct {
	Name           string `json:"name"`
	GitHubUsername string `json:"github_username"`
	AvatarURL      string `json:"avatar_url"`
}

type wirePledge struct {
	ID                string             `json:"id"`
	Amount            wireCurrencyAmount `json:"amount"`
	State             string             `json:"state"`
	Pledger           *wirePledger       `json:"pledger"`
	ScheduledPayoutAt *time.Time         `json:"scheduled_payout_at"`
	Issue             wireIssue          `json:"issue"`
}

func (p wirePledge) toDomain() domain.Pledge {
	pledge := domain.Pledge{
		ID:                p.ID,
		Amount:            p.Amount.toDomain(),
		State:             domain.PledgeState(p.State),
		ScheduledPayoutAt: p.ScheduledPayoutAt,
		Issue:             p.Issue.toDomain(),
	}
	if p.Pledger != nil {
		pledge.Pledger = &domain.Pledger{
			Name:           p.Pledger.Name,
			GitHubUsername: p.Pledger.GitHubUsername,
			AvatarURL:      p.Pledger.AvatarURL,
		}
	}
	return pledge
}

type wireUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

type wireBackofficeReward struct {
	Pledge          wirePledge         `json:"pledge"`
	User            *wireUser          `json:"user"`
	Organization    *wireOrganization  `json:"organization"`
	Amount          wireCurrencyAmount `json:"amount"`
	State           string             `json:"state"`
	PaidAt          *time.Time         `json:"paid_at"`
	IssueRewardID   string             `json:"issue_reward_id"`
	PledgePaymentID string             `json:"pledge_payment_id"`
	PledgerEmail    string             `json:"pledger_email"`
}

var errRecipient = errors.New("reward must name exactly one of user or organization")

func (r wireBackofficeReward) toDomain() (domain.Reward, error) {
	reward := domain.Reward{
		Pledge:          r.Pledge.toDomain(),
		Amount:          r.Amount.toDomain(),
		PaidAt:          r.PaidAt,
		IssueRewardID:   r.IssueRewardID,
		PledgePaymentID: r.PledgePaymentID,
		PledgerEmail:    r.PledgerEmail,
	}
	switch {
	case r.User != nil && r.Organization == nil:
		reward.Recipient = domain.UserRecipient{ID: r.User.ID, Username: r.User.Username, AvatarURL: r.User.AvatarURL}
	case r.Organization != nil && r.User == nil:
		reward.Recipient = domain.OrganizationRecipient{ID: r.Organization.ID, Name: r.Organization.Name, AvatarURL: r.Organization.AvatarURL}
	default:
		return domain.Reward{}, fmt.Errorf("reward %s: %w", r.IssueRewardID, errRecipient)
	}
	return reward, nil
}
