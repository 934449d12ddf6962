// Package backoffice groups pending pledge rewards for reconciliation and guards
// the payout transfer action.
package backoffice

import "github.com/h0rv/polardash/internal/domain"

// groupBy partitions rewards by key, keeping groups in first-seen order and
// rewards in input order within each group.
func groupBy(rewards []domain.Reward, key func(domain.Reward) string) [][]domain.Reward {
	index := make(map[string]int)
	var groups [][]domain.Reward
	for _, r := range rewards {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

// GroupByIssue partitions rewards by the id of their pledge's issue.
func GroupByIssue(rewards []domain.Reward) [][]domain.Reward {
	return groupBy(rewards, func(r domain.Reward) string { return r.Pledge.Issue.ID })
}

// GroupByPledge partitions rewards by pledge id.
func GroupByPledge(rewards []domain.Reward) [][]domain.Reward {
	return groupBy(rewards, func(r domain.Reward) string { return r.Pledge.ID })
}

// PledgeGroup is the rewards of one pledge. Pledge is read from the first reward.
type PledgeGroup struct {
	Pledge       domain.Pledge
	PaymentID    string
	PledgerEmail string
	Rewards      []domain.Reward
}

// IssueGroup is the pledges on one issue. Issue is read from the first reward.
type IssueGroup struct {
	Issue   domain.Issue
	Pledges []PledgeGroup
}

// Group builds the issue -> pledge -> reward hierarchy. All rewards in a group are
// assumed to share their pledge and issue fields.
func Group(rewards []domain.Reward) []IssueGroup {
	byIssue := GroupByIssue(rewards)
	out := make([]IssueGroup, 0, len(byIssue))
	for _, issueRewards := range byIssue {
		byPledge := GroupByPledge(issueRewards)
		ig := IssueGroup{
			Issue:   issueRewards[0].Pledge.Issue,
			Pledges: make([]PledgeGroup, 0, len(byPledge)),
		}
		for _, pledgeRewards := range byPledge {
			first := pledgeRewards[0]
			ig.Pledges = append(ig.Pledges, PledgeGroup{
				Pledge:       first.Pledge,
				PaymentID:    first.PledgePaymentID,
				PledgerEmail: first.PledgerEmail,
				Rewards:      pledgeRewards,
			})
		}
		out = append(out, ig)
	}
	return out
}

// Unpaid returns the rewards in groups that have not been transferred, in display order.
func Unpaid(groups []IssueGroup) []domain.Reward {
	var out []domain.Reward
	for _, ig := range groups {
		for _, pg := range ig.Pledges {
			for _, r := range pg.Rewards {
				if !r.Paid() {
					out = append(out, r)
				}
			}
		}
	}
	return out
}
