package gh

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"

	"github.com/h0rv/polardash/internal/domain"
)

// GetIssueDetail fetches the body, author and comments of an issue or pull request.
func (c *Client) GetIssueDetail(ctx context.Context, owner, repo string, number int) (*domain.IssueDetail, error) {
	req := graphql.NewRequest(`
		query($owner: String!, $repo: String!, $number: Int!) {
			repository(owner: $owner, name: $repo) {
				issueOrPullRequest(number: $number) {
					... on Issue {
						id
						body
						createdAt
						author { login }
						comments(first: 100) {
							nodes { id author { login } body createdAt updatedAt }
						}
					}
					... on PullRequest {
						id
						body
						createdAt
						author { login }
						comments(first: 100) {
							nodes { id author { login } body createdAt updatedAt }
						}
					}
				}
			}
		}
	`)
	req.Var("owner", owner)
	req.Var("repo", repo)
	req.Var("number", number)

	var resp struct {
		Repository struct {
			IssueOrPullRequest struct {
				ID        string `json:"id"`
				Body      string `json:"body"`
				CreatedAt string `json:"createdAt"`
				Author    *struct {
					Login string `json:"login"`
				} `json:"author"`
				Comments struct {
					Nodes []struct {
						ID     string `json:"id"`
						Author *struct {
							Login string `json:"login"`
						} `json:"author"`
						Body      string `json:"body"`
						CreatedAt string `json:"createdAt"`
						UpdatedAt string `json:"updatedAt"`
					} `json:"nodes"`
				} `json:"comments"`
			} `json:"issueOrPullRequest"`
		} `json:"repository"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get issue %s/%s#%d: %w", owner, repo, number, err)
	}

	node := resp.Repository.IssueOrPullRequest
	if node.ID == "" {
		return nil, fmt.Errorf("issue or PR #%d not found in %s/%s", number, owner, repo)
	}

	detail := &domain.IssueDetail{
		NodeID:    node.ID,
		Body:      node.Body,
		CreatedAt: node.CreatedAt,
		Comments:  make([]domain.Comment, 0, len(node.Comments.Nodes)),
	}
	// Deleted users come back with a null author.
	if node.Author != nil {
		detail.Author = node.Author.Login
	}
	for _, n := range node.Comments.Nodes {
		comment := domain.Comment{
			ID:        n.ID,
			Body:      n.Body,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		}
		if n.Author != nil {
			comment.Author = n.Author.Login
		}
		detail.Comments = append(detail.Comments, comment)
	}
	return detail, nil
}
