// Package github is a minimal client for the public repository-listing API
// shown on profile pages.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/SimasDei/dev-bastion/internal/apperror"
)

const (
	defaultBaseURL = "https://api.github.com"
	requestTimeout = 5 * time.Second
	retryBackoff   = 500 * time.Millisecond
)

// Repo is the slice of the GitHub repository object the profile page shows.
type Repo struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stargazers  int    `json:"stargazers_count"`
	Watchers    int    `json:"watchers_count"`
	Forks       int    `json:"forks_count"`
}

// Client lists a user's newest repositories. Requests carry the configured
// client-id/secret pair to raise the API rate limit; the secret is never
// logged.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	logger       *slog.Logger
}

func NewClient(clientID, clientSecret string, logger *slog.Logger) *Client {
	return newClient(defaultBaseURL, clientID, clientSecret, logger)
}

func newClient(baseURL, clientID, clientSecret string, logger *slog.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: requestTimeout},
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
	}
}

// Repos returns the five most recently created public repositories for a
// GitHub username.
//
// Transport failures are retried once after a short backoff, then logged
// and surfaced as UpstreamUnavailable. Any non-200 response maps to
// NotFound; the API answers 404 for unknown users and the profile page
// treats every other refusal the same way.
func (c *Client) Repos(ctx context.Context, username string) ([]Repo, error) {
	if username == "" {
		return nil, apperror.ValidationFailed("username", "github username is required")
	}

	query := url.Values{}
	query.Set("per_page", "5")
	query.Set("sort", "created:asc")
	if c.clientID != "" {
		query.Set("client_id", c.clientID)
		query.Set("client_secret", c.clientSecret)
	}

	reqURL := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), query.Encode())

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		c.logger.Error("github repos request failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream("github api unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NotFound("github user", username)
	}

	var repos []Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github: decoding repos response: %w", err)
	}

	return repos, nil
}

// get performs the request with a single retry on transport error.
func (c *Client) get(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("github: building request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return nil, lastErr
}
