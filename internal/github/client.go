// Package github proxies repository listings from the GitHub API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"devconnect/internal/cache"
	"devconnect/internal/middleware"
	"devconnect/internal/models"
	"devconnect/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const defaultBaseURL = "https://api.github.com"

// Repo is the subset of the GitHub repository payload forwarded to clients.
type Repo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stargazers  int    `json:"stargazers_count"`
	Watchers    int    `json:"watchers_count"`
	Forks       int    `json:"forks_count"`
	CreatedAt   string `json:"created_at"`
}

// Client fetches a user's most recent repositories, with cache-aside in Redis.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
}

// NewClient creates a GitHub client. Credentials are optional; without them
// lookups run against GitHub's unauthenticated rate limits.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		baseURL:      defaultBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint. Intended for tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient("", "")
	c.baseURL = baseURL
	return c
}

// ListRepos returns the user's 5 most recent repositories. A non-200 from
// GitHub is reported as not-found, matching the proxy contract.
func (c *Client) ListRepos(ctx context.Context, username string) ([]Repo, error) {
	var repos []Repo
	err := cache.Aside(ctx, cache.GithubKey(username), &repos, cache.GithubTTL, func() error {
		var fetchErr error
		repos, fetchErr = c.fetchRepos(ctx, username)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return repos, nil
}

func (c *Client) fetchRepos(ctx context.Context, username string) ([]Repo, error) {
	ctx, span := observability.StartSpan(ctx, "github.list_repos",
		attribute.String("github.username", username))
	defer span.End()

	q := url.Values{}
	q.Set("per_page", "5")
	q.Set("sort", "created:asc")
	if c.clientID != "" {
		q.Set("client_id", c.clientID)
		q.Set("client_secret", c.clientSecret)
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	req.Header.Set("User-Agent", "devconnect")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		middleware.GithubLookups.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		middleware.GithubLookups.WithLabelValues("not_found").Inc()
		return nil, models.NewNotFoundError("No github profile found")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		middleware.GithubLookups.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	var repos []Repo
	if err := json.Unmarshal(body, &repos); err != nil {
		middleware.GithubLookups.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	middleware.GithubLookups.WithLabelValues("ok").Inc()
	return repos, nil
}
