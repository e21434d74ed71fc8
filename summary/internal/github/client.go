package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
)

const (
	defaultGraphQLURL = "https://api.github.com/graphql"
	requestTimeout    = 30 * time.Second
)

// Client performs the repository and issue calls of a summary run.
type Client struct {
	gh         *gh.Client
	http       *http.Client
	graphqlURL string
}

// authRoundTripper injects the bearer token into every outgoing request.
type authRoundTripper struct {
	base  http.RoundTripper
	token string
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(req)
}

// New returns a Client for api.github.com authenticated with token.
func New(token string) *Client {
	httpClient := &http.Client{
		Transport: &authRoundTripper{base: http.DefaultTransport, token: token},
		Timeout:   requestTimeout,
	}
	return &Client{
		gh:         gh.NewClient(httpClient),
		http:       httpClient,
		graphqlURL: defaultGraphQLURL,
	}
}

// NewWithBaseURL returns a Client for a GitHub-compatible API rooted at
// baseURL; GraphQL requests go to <baseURL>/graphql.
func NewWithBaseURL(token, baseURL string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("github: parse base url: %w", err)
	}
	c := New(token)
	c.gh.BaseURL = u
	c.graphqlURL = baseURL + "graphql"
	return c, nil
}

// Profile is the public profile of a user or organisation.
type Profile struct {
	Name string
	Blog string
}

// OwnerProfile returns the profile of login.
func (c *Client) OwnerProfile(ctx context.Context, login string) (Profile, error) {
	u, _, err := c.gh.Users.Get(ctx, login)
	if err != nil {
		return Profile{}, fmt.Errorf("github: get user %q: %w", login, err)
	}
	return Profile{Name: u.GetName(), Blog: u.GetBlog()}, nil
}

// graphqlRequest is the JSON body of a GraphQL call.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// graphql posts one query and fails on HTTP or GraphQL-level errors.
func (c *Client) graphql(ctx context.Context, query string, vars map[string]interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("graphql returned HTTP %d", resp.StatusCode)
	}
	var out graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		return fmt.Errorf("graphql: %s", out.Errors[0].Message)
	}
	return nil
}
