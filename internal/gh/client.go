// Package gh provides a GraphQL client for the GitHub API.
// Polar mirrors issue metadata but not bodies or discussion, so the issue detail
// screen reads those straight from GitHub.
package gh

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"

	"github.com/h0rv/polardash/internal/auth"
)

// Endpoint is the GitHub GraphQL API.
const Endpoint = "https://api.github.com/graphql"

// Client is a GitHub GraphQL API client.
type Client struct {
	gql   *graphql.Client
	token string
}

// New creates a new GitHub GraphQL client.
// It obtains an authentication token using the auth package.
func New() (*Client, error) {
	token, err := auth.GitHub().GetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain GitHub token: %w", err)
	}
	return NewWithToken(Endpoint, token), nil
}

// NewWithToken creates a client for endpoint using token.
func NewWithToken(endpoint, token string) *Client {
	return &Client{
		gql:   graphql.NewClient(endpoint),
		token: token,
	}
}

// makeRequest executes a GraphQL request with authentication.
func (c *Client) makeRequest(ctx context.Context, req *graphql.Request, resp interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.gql.Run(ctx, req, resp)
}
