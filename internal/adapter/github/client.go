// Package github searches pull requests for the release capabilities.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// Client calls the GitHub REST API with a personal access token.
type Client struct {
	baseURL    string
	token      string
	repoOwner  string
	httpClient *http.Client
}

// NewClient creates a client scoped to one repository owner.
func NewClient(token, repoOwner string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		token:     token,
		repoOwner: repoOwner,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type searchResult struct {
	Items []struct {
		Title   string `json:"title"`
		Number  int    `json:"number"`
		HTMLURL string `json:"html_url"`
	} `json:"items"`
}

type commitInfo struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// SearchPullRequests lists pull requests of a repository matching a
// status ("open", "closed", "merged") and an optional label, ordered
// by number, each with its commits. A trailing record carries the flat
// list of all commit SHAs found.
func (c *Client) SearchPullRequests(ctx context.Context, repoName, status, label string) ([]map[string]any, error) {
	repo := fmt.Sprintf("%s/%s", c.repoOwner, repoName)
	query := fmt.Sprintf("is:pr is:%s %s", status, label)
	endpoint := fmt.Sprintf("%s/search/issues?q=%s+repo:%s", c.baseURL, url.QueryEscape(query), repo)

	var search searchResult
	if err := c.getJSON(ctx, endpoint, &search); err != nil {
		return nil, fmt.Errorf("failed to search pull requests: %w", err)
	}

	items := search.Items
	sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })

	records := make([]map[string]any, 0, len(items)+1)
	var allSHAs []string

	for _, pr := range items {
		endpoint := fmt.Sprintf("%s/repos/%s/pulls/%d/commits", c.baseURL, repo, pr.Number)

		var commits []commitInfo
		if err := c.getJSON(ctx, endpoint, &commits); err != nil {
			return nil, fmt.Errorf("failed to fetch commits for #%d: %w", pr.Number, err)
		}

		prCommits := make([]map[string]any, 0, len(commits))
		for _, commit := range commits {
			prCommits = append(prCommits, map[string]any{
				"author": commit.Commit.Author.Name,
				"date":   commit.Commit.Author.Date,
				"commit": commit.SHA,
			})
			allSHAs = append(allSHAs, commit.SHA)
		}

		records = append(records, map[string]any{
			"title":   pr.Title,
			"url":     pr.HTMLURL,
			"commits": prCommits,
		})
	}

	records = append(records, map[string]any{
		"commits_summary": allSHAs,
	})
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API error [%d]: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
