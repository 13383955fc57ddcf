// Package pulpo queries the Pulpo knowledge base.
package pulpo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const findAnswerQuery = `
query findAnswer($query: String, $parent: String, $cacheOnly: Boolean) {
  systemTime
  findAnswer(query: $query, parent: $parent, cacheOnly: $cacheOnly) {
    cached
    answer
    relatedQuestions
    record {
      ...recordWithParent
    }
    documents {
      id
      content
    }
  }
}

fragment recordWithParent on Record {
  ...record
  parent {
    id
    slug
    title
    typename
    color
    thumbnailUrl
  }
}

fragment record on Record {
  id
  slug
  title
  trail
  typename
  color
  thumbnailUrl
  downloadUrl
  origin
  identifier
  createdAt
  updatedAt
  status
}
`

// Client calls the Pulpo GraphQL search endpoint.
type Client struct {
	searchURL  string
	siteURL    string
	bearer     string
	httpClient *http.Client
}

// NewClient creates a client. siteURL is the public site root, used
// both as the request origin and to build document links.
func NewClient(searchURL, siteURL, bearer string, timeout time.Duration) *Client {
	return &Client{
		searchURL: searchURL,
		siteURL:   strings.TrimSuffix(siteURL, "/"),
		bearer:    bearer,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Document is a knowledge-base document referenced by an answer.
type Document struct {
	Title string
	URL   string
}

// SearchResult is a knowledge-base answer with its supporting
// documents and follow-up suggestions.
type SearchResult struct {
	Title            string
	Answer           string
	URL              string
	Documents        []Document
	RelatedQuestions []string
}

type findAnswerResponse struct {
	Data struct {
		FindAnswer struct {
			Answer           string   `json:"answer"`
			RelatedQuestions []string `json:"relatedQuestions"`
			Record           struct {
				Parent struct {
					Title string `json:"title"`
					Slug  string `json:"slug"`
				} `json:"parent"`
			} `json:"record"`
			Documents []struct {
				Content string `json:"content"`
				URL     string `json:"url"`
			} `json:"documents"`
		} `json:"findAnswer"`
	} `json:"data"`
}

// SearchDocuments runs a findAnswer query for a search term.
func (c *Client) SearchDocuments(ctx context.Context, searchTerm string) (*SearchResult, error) {
	payload := map[string]any{
		"query": findAnswerQuery,
		"variables": map[string]any{
			"query":     searchTerm,
			"cacheOnly": false,
		},
		"operationName": "findAnswer",
	}
	// The endpoint expects a batch: a JSON array with one operation.
	body, err := json.Marshal([]map[string]any{payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)
	req.Header.Set("Origin", c.siteURL)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var batch []findAnswerResponse
	if err := json.Unmarshal(respBody, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty search response")
	}

	answer := batch[0].Data.FindAnswer
	result := &SearchResult{
		Title:            answer.Record.Parent.Title,
		Answer:           answer.Answer,
		URL:              c.siteURL + "/" + answer.Record.Parent.Slug,
		RelatedQuestions: answer.RelatedQuestions,
	}
	for _, doc := range answer.Documents {
		result.Documents = append(result.Documents, Document{
			Title: firstLine(doc.Content),
			URL:   doc.URL,
		})
	}
	return result, nil
}

// Markdown renders the result as the chat answer: title heading, the
// answer body, related document links and follow-up questions.
func (r *SearchResult) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n%s\n\n**Documentos relacionados**:\n\n", r.Title, r.Answer)
	for _, doc := range r.Documents {
		fmt.Fprintf(&b, "[%s](%s)\n\n", doc.Title, doc.URL)
	}
	if len(r.RelatedQuestions) > 0 {
		b.WriteString("\n\n**Você pode perguntar sobre:**\n\n")
		b.WriteString(strings.Join(r.RelatedQuestions, "\n\n"))
	}
	return b.String()
}

func firstLine(content string) string {
	if index := strings.IndexByte(content, '\n'); index >= 0 {
		content = content[:index]
	}
	return strings.TrimSpace(content)
}
