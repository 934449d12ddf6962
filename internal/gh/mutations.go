package gh

import (
	"context"
	"errors"
	"fmt"

	"github.com/machinebox/graphql"
)

// ErrEmptyComment is returned when AddComment is called with a blank body.
var ErrEmptyComment = errors.New("comment body is empty")

// AddComment adds a comment to the issue or pull request with the given node ID
// and returns the new comment's ID.
func (c *Client) AddComment(ctx context.Context, subjectID, body string) (string, error) {
	if body == "" {
		return "", ErrEmptyComment
	}

	req := graphql.NewRequest(`
		mutation($subjectId: ID!, $body: String!) {
			addComment(input: {subjectId: $subjectId, body: $body}) {
				commentEdge {
					node {
						id
					}
				}
			}
		}
	`)
	req.Var("subjectId", subjectID)
	req.Var("body", body)

	var resp struct {
		AddComment struct {
			CommentEdge struct {
				Node struct {
					ID string `json:"id"`
				} `json:"node"`
			} `json:"commentEdge"`
		} `json:"addComment"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return "", fmt.Errorf("failed to add comment: %w", err)
	}
	return resp.AddComment.CommentEdge.Node.ID, nil
}
