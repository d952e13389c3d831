package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dataextractor/data-extractor/pkg/project"
	"github.com/google/go-github/v70/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Client bundles the REST and GraphQL clients sharing one token.
type Client struct {
	inner *github.Client
	v4    *githubv4.Client
}

// NewClientByPAT creates a client authenticated with a personal access
// token. An empty baseURL or github.com targets the public service; any
// other URL is treated as a GitHub Enterprise Server root.
func NewClientByPAT(baseURL, token string) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	if isDotCom(baseURL) {
		return &Client{
			inner: github.NewClient(tc),
			v4:    githubv4.NewClient(tc),
		}, nil
	}

	inner, err := github.NewClient(tc).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub Enterprise URL %q: %w", baseURL, err)
	}
	return &Client{
		inner: inner,
		v4:    githubv4.NewEnterpriseClient(strings.TrimRight(baseURL, "/")+"/api/graphql", tc),
	}, nil
}

func isDotCom(baseURL string) bool {
	if baseURL == "" {
		return true
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "github.com" || host == "api.github.com"
}

// GetInner returns the REST client, used to check the token
func (client *Client) GetInner() *github.Client {
	return client.inner
}

// GetV4 returns the GraphQL client, used to list repositories
func (client *Client) GetV4() *githubv4.Client {
	return client.v4
}

// Authenticate checks the token by fetching the authenticated user.
func (client *Client) Authenticate(ctx context.Context) (string, error) {
	user, _, err := client.GetInner().Users.Get(ctx, "")
	if err != nil {
		return "", classifyError("authenticate to GitHub", err, true)
	}
	return user.GetLogin(), nil
}

// classifyError maps a rejected credential to project.ErrAuthentication.
// Rate limiting, server errors and network failures are all transport
// errors since nothing here retries.
func classifyError(op string, err error, authenticating bool) error {
	if isAuthError(err, authenticating) {
		return fmt.Errorf("failed to %s: %w: %w", op, project.ErrAuthentication, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, project.ErrTransport, err)
}

func isAuthError(err error, authenticating bool) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return false
	}
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) || errResp.Response == nil {
		return false
	}
	code := errResp.Response.StatusCode
	return code == http.StatusUnauthorized || (authenticating && code == http.StatusForbidden)
}
