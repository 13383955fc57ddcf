// Package rabbit is a RabbitMQ management API client for the queue
// admin capabilities.
package rabbit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// defaultExchange is the exchange used when resending messages.
const defaultExchange = "aqila"

// Client calls the RabbitMQ management HTTP API.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
}

// NewClient creates a management API client. baseURL points at the API
// root, e.g. "https://rabbit.example.com/api".
func NewClient(baseURL, user, password string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		user:     user,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type queueInfo struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
}

// QueueStatus returns queue names and message counts for a vhost. With
// an empty queueName every queue is listed; unless withoutMessages is
// set, the listing is filtered to queues that actually hold messages.
func (c *Client) QueueStatus(ctx context.Context, vhost, queueName string, withoutMessages bool) ([]QueueRow, error) {
	endpoint := c.queueURL(vhost, queueName)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var queues []queueInfo
	if err := json.Unmarshal(body, &queues); err != nil {
		// A single-queue endpoint returns an object, not a list.
		var single queueInfo
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, fmt.Errorf("failed to decode queue status: %w", err)
		}
		queues = []queueInfo{single}
	}

	rows := make([]QueueRow, 0, len(queues))
	for _, queue := range queues {
		if !withoutMessages && queueName == "" && queue.Messages == 0 {
			continue
		}
		rows = append(rows, QueueRow{Name: queue.Name, Messages: queue.Messages})
	}
	return rows, nil
}

// QueueRow is one queue in a status listing.
type QueueRow struct {
	Name     string
	Messages int
}

// Message is one consumed queue message, decoded best-effort.
type Message struct {
	Body map[string]any
	Raw  string
}

// GetMessages fetches up to limit messages from a queue, requeueing
// them. Message payloads that carry a nested base64 "payload" field
// are unwrapped, then parsed as JSON; anything undecodable is kept as
// raw text.
func (c *Client) GetMessages(ctx context.Context, vhost, queueName string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	params := map[string]any{
		"count":    limit,
		"ackmode":  "ack_requeue_true",
		"encoding": "auto",
	}

	body, err := c.post(ctx, c.queueURL(vhost, queueName)+"/get", params)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		messages = append(messages, decodeMessage(item.Payload))
	}
	return messages, nil
}

func decodeMessage(payload string) Message {
	text := payload

	// Producers wrap the real body as {"payload": "<base64>"}.
	var envelope struct {
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err == nil && envelope.Payload != "" {
		if decoded, err := base64.StdEncoding.DecodeString(envelope.Payload); err == nil {
			text = string(decoded)
		}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return Message{Body: parsed, Raw: text}
	}
	return Message{Raw: text}
}

// Summary is one group in a message summary.
type Summary struct {
	GpaCode string
	Tenant  string
	Model   string
	Origin  string
	Count   int
}

// SummarizeMessages groups a queue's messages by the gpa_code, tenant,
// model and origin fields of their config section.
func (c *Client) SummarizeMessages(ctx context.Context, vhost, queueName string, limit int) ([]Summary, error) {
	messages, err := c.GetMessages(ctx, vhost, queueName, limit)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		gpaCode, tenant, model, origin string
	}
	groups := map[groupKey]int{}
	for _, message := range messages {
		config, _ := message.Body["config"].(map[string]any)
		key := groupKey{
			gpaCode: stringify(config["gpa_code"]),
			tenant:  stringify(config["tenant"]),
			model:   stringify(config["model"]),
			origin:  stringify(config["origin"]),
		}
		groups[key]++
	}

	summaries := make([]Summary, 0, len(groups))
	for key, count := range groups {
		summaries = append(summaries, Summary{
			GpaCode: key.gpaCode,
			Tenant:  key.tenant,
			Model:   key.model,
			Origin:  key.origin,
			Count:   count,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].GpaCode != summaries[j].GpaCode {
			return summaries[i].GpaCode < summaries[j].GpaCode
		}
		return summaries[i].Model < summaries[j].Model
	})
	return summaries, nil
}

// Resend republishes up to limit messages from a queue to the default
// exchange, using the queue name as routing key.
func (c *Client) Resend(ctx context.Context, vhost, queueName string, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	messages, err := c.GetMessages(ctx, vhost, queueName, limit)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, message := range messages {
		params := map[string]any{
			"properties":       map[string]any{},
			"routing_key":      queueName,
			"payload":          message.Raw,
			"payload_encoding": "string",
		}
		endpoint := fmt.Sprintf("%s/exchanges/%s/%s/publish", c.baseURL, url.PathEscape(vhost), defaultExchange)
		if _, err := c.post(ctx, endpoint, params); err != nil {
			return published, fmt.Errorf("failed to publish message: %w", err)
		}
		published++
	}
	return published, nil
}

func (c *Client) queueURL(vhost, queueName string) string {
	endpoint := fmt.Sprintf("%s/queues/%s", c.baseURL, url.PathEscape(vhost))
	if queueName != "" {
		endpoint = endpoint + "/" + url.PathEscape(queueName)
	}
	return endpoint
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("management API error [%d]: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
