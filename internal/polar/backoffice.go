package polar

import (
	"context"
	"net/http"

	"github.com/h0rv/polardash/internal/domain"
)

// ListPendingRewards returns all rewards awaiting payout, across organizations.
func (c *Client) ListPendingRewards(ctx context.Context) ([]domain.Reward, error) {
	var resp wireListResource[wireBackofficeReward]
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/backoffice/rewards/pending", nil, &resp); err != nil {
		return nil, err
	}
	rewards := make([]domain.Reward, 0, len(resp.Items))
	for _, item := range resp.Items {
		r, err := item.toDomain()
		if err != nil {
			c.logger.Warn("skipping malformed reward", "error", err)
			continue
		}
		rewards = append(rewards, r)
	}
	return rewards, nil
}

type transferRequest struct {
	PledgeID      string `json:"pledge_id"`
	IssueRewardID string `json:"issue_reward_id"`
}

// CreateRewardTransfer pays out one reward of a pledge.
func (c *Client) CreateRewardTransfer(ctx context.Context, pledgeID, issueRewardID string) error {
	body := transferRequest{PledgeID: pledgeID, IssueRewardID: issueRewardID}
	return c.doJSON(ctx, http.MethodPost, "/api/v1/backoffice/pledges/rewards/transfer", body, nil)
}
