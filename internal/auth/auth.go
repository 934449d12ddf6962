// Package auth resolves the API tokens polardash needs: a Polar personal access
// token for the REST API and a GitHub token for issue details.
// Each token comes from an ordered chain of providers; the first success wins.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoToken is wrapped by every chain failure.
var ErrNoToken = errors.New("no token available")

// TokenProvider defines the interface for obtaining an authentication token.
// Implementations may use different sources (CLI tools, environment variables, config).
type TokenProvider interface {
	GetToken() (string, error)
}

// GhCliProvider obtains GitHub tokens by shelling out to `gh auth token`.
type GhCliProvider struct{}

// GetToken returns an error if gh CLI is not installed, not authenticated, or the command fails.
func (g *GhCliProvider) GetToken() (string, error) {
	cmd := exec.Command("gh", "auth", "token", "--hostname", "github.com")
	output, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", errors.New("gh CLI not found in PATH")
		}
		return "", fmt.Errorf("gh auth token failed: %w", err)
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", errors.New("gh auth token returned empty token")
	}
	return token, nil
}

// EnvProvider reads a token from an environment variable.
type EnvProvider struct {
	Var string
}

// GetToken returns an error if the variable is not set or is empty.
func (e *EnvProvider) GetToken() (string, error) {
	token := strings.TrimSpace(os.Getenv(e.Var))
	if token == "" {
		return "", fmt.Errorf("%s environment variable not set or empty", e.Var)
	}
	return token, nil
}

// StaticProvider returns a token read from elsewhere, typically the config file.
type StaticProvider struct {
	Token  string
	Source string
}

func (s *StaticProvider) GetToken() (string, error) {
	if s.Token == "" {
		return "", fmt.Errorf("no token in %s", s.Source)
	}
	return s.Token, nil
}

// Chain tries each provider in order.
type Chain struct {
	Name      string // what the token is for, used in errors
	Hint      string // remediation appended to the error
	Providers []TokenProvider
}

// GetToken returns the first token obtained. If every provider fails, the error
// wraps ErrNoToken and lists each provider's failure.
func (c *Chain) GetToken() (string, error) {
	var reasons []string
	for _, p := range c.Providers {
		token, err := p.GetToken()
		if err == nil {
			return token, nil
		}
		reasons = append(reasons, err.Error())
	}

	msg := fmt.Sprintf("failed to obtain %s token (%s)", c.Name, strings.Join(reasons, "; "))
	if c.Hint != "" {
		msg += ".\n" + c.Hint
	}
	return "", fmt.Errorf("%w: %s", ErrNoToken, msg)
}

// GitHub returns the GitHub token chain: gh CLI first, then GITHUB_TOKEN.
func GitHub() *Chain {
	return &Chain{
		Name: "GitHub",
		Hint: "Please either:\n" +
			"  1. Run 'gh auth login' to authenticate with GitHub CLI, or\n" +
			"  2. Set the GITHUB_TOKEN environment variable with a personal access token",
		Providers: []TokenProvider{
			&GhCliProvider{},
			&EnvProvider{Var: "GITHUB_TOKEN"},
		},
	}
}

// Polar returns the Polar token chain: POLAR_TOKEN, then the token from the config file.
func Polar(configToken string) *Chain {
	return &Chain{
		Name: "Polar",
		Hint: "Create a personal access token in Polar settings and either:\n" +
			"  1. Set the POLAR_TOKEN environment variable, or\n" +
			"  2. Add 'token: <value>' to polardash.yml",
		Providers: []TokenProvider{
			&EnvProvider{Var: "POLAR_TOKEN"},
			&StaticProvider{Token: configToken, Source: "config file"},
		},
	}
}

// GetToken obtains a GitHub token.
func GetToken() (string, error) {
	return GitHub().GetToken()
}
