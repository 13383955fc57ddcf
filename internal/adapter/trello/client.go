// Package trello looks up task cards for the analyst capabilities.
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.trello.com/1"

const cardsLimit = 5

// Client calls the Trello REST API.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewClient creates a client authenticated with an API key/secret
// pair.
func NewClient(apiKey, apiSecret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
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

// Comment is one comment on a card.
type Comment struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author string `json:"name"`
	Date   string `json:"date"`
}

// Checklist is one checklist on a card, with its item names.
type Checklist struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Card is a task card with its comments and checklists resolved.
type Card struct {
	ID         string      `json:"card_id"`
	Name       string      `json:"name"`
	URL        string      `json:"url"`
	Desc       string      `json:"desc"`
	Due        string      `json:"due"`
	Comments   []Comment   `json:"comments"`
	Checklists []Checklist `json:"checklists"`
}

type searchResponse struct {
	Cards []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		URL  string `json:"url"`
		Desc string `json:"desc"`
		Due  string `json:"due"`
	} `json:"cards"`
}

// Search finds up to five cards matching a query, partial matches
// included, and resolves their comments and checklists.
func (c *Client) Search(ctx context.Context, query string) ([]Card, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("modelTypes", "cards")
	params.Set("cards_limit", fmt.Sprintf("%d", cardsLimit))
	params.Set("partial_match", "true")
	params.Set("card_fields", "name,url,desc,due")

	var search searchResponse
	if err := c.getJSON(ctx, "/search", params, &search); err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}

	cards := make([]Card, 0, len(search.Cards))
	for _, item := range search.Cards {
		card := Card{
			ID:   item.ID,
			Name: item.Name,
			URL:  item.URL,
			Desc: item.Desc,
			Due:  item.Due,
		}

		comments, err := c.comments(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		card.Comments = comments

		checklists, err := c.checklists(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		card.Checklists = checklists

		cards = append(cards, card)
	}
	return cards, nil
}

// FindTask locates a single task card by its short ID on a board. The
// best match is the first card the search returns.
func (c *Client) FindTask(ctx context.Context, taskID int, boardName string) (*Card, error) {
	query := fmt.Sprintf("%d board:%s", taskID, boardName)
	cards, err := c.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("task %d not found on board %s", taskID, boardName)
	}
	return &cards[0], nil
}

type actionResponse struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Data struct {
		Text string `json:"text"`
	} `json:"data"`
	MemberCreator struct {
		FullName string `json:"fullName"`
	} `json:"memberCreator"`
}

func (c *Client) comments(ctx context.Context, cardID string) ([]Comment, error) {
	params := url.Values{}
	params.Set("filter", "commentCard")

	var actions []actionResponse
	if err := c.getJSON(ctx, "/cards/"+cardID+"/actions", params, &actions); err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}

	comments := make([]Comment, 0, len(actions))
	for _, action := range actions {
		comments = append(comments, Comment{
			ID:     action.ID,
			Text:   action.Data.Text,
			Author: action.MemberCreator.FullName,
			Date:   action.Date,
		})
	}
	return comments, nil
}

type checklistResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CheckItems []struct {
		Name string `json:"name"`
	} `json:"checkItems"`
}

func (c *Client) checklists(ctx context.Context, cardID string) ([]Checklist, error) {
	var lists []checklistResponse
	if err := c.getJSON(ctx, "/cards/"+cardID+"/checklists", nil, &lists); err != nil {
		return nil, fmt.Errorf("failed to fetch checklists: %w", err)
	}

	checklists := make([]Checklist, 0, len(lists))
	for _, list := range lists {
		checklist := Checklist{ID: list.ID, Name: list.Name}
		for _, item := range list.CheckItems {
			checklist.Items = append(checklist.Items, item.Name)
		}
		checklists = append(checklists, checklist)
	}
	return checklists, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.apiKey)
	params.Set("token", c.apiSecret)

	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

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
		return fmt.Errorf("Trello API error [%d]: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
