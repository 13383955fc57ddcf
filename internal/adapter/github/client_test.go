package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPullRequestsOrdersAndSummarizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token gh-token", r.Header.Get("Authorization"))

		switch {
		case strings.HasPrefix(r.URL.Path, "/search/issues"):
			assert.Contains(t, r.URL.RawQuery, "is%3Apr+is%3Amerged")
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"title": "second", "number": 12, "html_url": "https://github.com/acme/api/pull/12"},
					{"title": "first", "number": 7, "html_url": "https://github.com/acme/api/pull/7"},
				},
			})
		case r.URL.Path == "/repos/acme/api/pulls/7/commits":
			json.NewEncoder(w).Encode([]map[string]any{
				{"sha": "aaa111", "commit": map[string]any{"author": map[string]any{"name": "Regis", "date": "2024-01-10"}}},
			})
		case r.URL.Path == "/repos/acme/api/pulls/12/commits":
			json.NewEncoder(w).Encode([]map[string]any{
				{"sha": "bbb222", "commit": map[string]any{"author": map[string]any{"name": "Ana", "date": "2024-01-12"}}},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient("gh-token", "acme", time.Second).WithBaseURL(server.URL)
	records, err := client.SearchPullRequests(context.Background(), "api", "merged", "release")
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0]["title"])
	assert.Equal(t, "second", records[1]["title"])

	commits, ok := records[0]["commits"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, commits, 1)
	assert.Equal(t, "Regis", commits[0]["author"])

	summary, ok := records[2]["commits_summary"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"aaa111", "bbb222"}, summary)
}

func TestSearchPullRequestsSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"rate limited"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient("gh-token", "acme", time.Second).WithBaseURL(server.URL)
	_, err := client.SearchPullRequests(context.Background(), "api", "open", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[403]")
}
