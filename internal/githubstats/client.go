// Package githubstats is the external stat API boundary: it fetches numeric
// activity counts for a GitHub user, classifying failures and retrying only
// the retryable ones.
package githubstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	StatCommits      = "commits"
	StatRepositories = "repositories"
	StatFollowers    = "followers"
)

const DefaultBaseURL = "https://api.github.com"

// Retry policy: exponential backoff from 1s, doubling, capped at 10s, three
// attempts in total. Client errors (4xx other than 429) never retry.
const (
	backoffBase = 1 * time.Second
	backoffCap  = 10 * time.Second
	maxRetries  = 2
)

// APIError is a non-2xx response from the stat API.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github stats: %s returned %d", e.URL, e.StatusCode)
}

// Retryable reports whether the failure class permits another attempt:
// rate limits and server errors do, client errors do not.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type userResponse struct {
	PublicRepos float64 `json:"public_repos"`
	Followers   float64 `json:"followers"`
}

type searchResponse struct {
	TotalCount float64 `json:"total_count"`
}

// Count fetches one numeric stat for a user. Commits support a date-bounded
// range qualifier (e.g. "2024-01-01..2024-12-31"); repository and follower
// counts are point-in-time and ignore the range.
func (c *Client) Count(ctx context.Context, username, statKind, timeRange string) (float64, error) {
	var value float64

	b := retry.WithMaxRetries(maxRetries, retry.WithCappedDuration(backoffCap, retry.NewExponential(backoffBase)))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		v, err := c.fetch(ctx, username, statKind, timeRange)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Retryable() {
				return retry.RetryableError(err)
			}
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (c *Client) fetch(ctx context.Context, username, statKind, timeRange string) (float64, error) {
	switch statKind {
	case StatCommits:
		query := fmt.Sprintf("author:%s", username)
		if timeRange != "" {
			query += fmt.Sprintf(" author-date:%s", timeRange)
		}
		u := fmt.Sprintf("%s/search/commits?q=%s", c.baseURL, url.QueryEscape(query))
		var body searchResponse
		err := c.get(ctx, u, &body)
		if err != nil {
			return 0, err
		}
		return body.TotalCount, nil

	case StatRepositories, StatFollowers:
		u := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(username))
		var body userResponse
		err := c.get(ctx, u, &body)
		if err != nil {
			return 0, err
		}
		if statKind == StatRepositories {
			return body.PublicRepos, nil
		}
		return body.Followers, nil
	}

	return 0, fmt.Errorf("github stats: unknown stat kind %q", statKind)
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
