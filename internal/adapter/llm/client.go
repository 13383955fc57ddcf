package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

// Client calls an Azure OpenAI chat-completions deployment.
type Client struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	httpClient *http.Client
}

// NewClient creates a model backend client. timeout bounds each call;
// there is no internal retry.
func NewClient(endpoint, apiKey, deployment, apiVersion string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     apiKey,
		deployment: deployment,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// chatRequest is the chat completion request body.
type chatRequest struct {
	Messages  []chatMessage       `json:"messages"`
	Functions []domain.ToolSchema `json:"functions,omitempty"`
	MaxTokens *int                `json:"max_tokens,omitempty"`
}

// chatMessage is one request message. Content is a string for text
// requests and a list of content parts for vision requests.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
	Name    string `json:"name,omitempty"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// chatResponse is the chat completion response body.
type chatResponse struct {
	Choices []choice `json:"choices"`
}

type choice struct {
	Message      *responseMessage `json:"message,omitempty"`
	FinishReason string           `json:"finish_reason,omitempty"`
}

type responseMessage struct {
	Role         string        `json:"role"`
	Content      string        `json:"content"`
	FunctionCall *functionCall `json:"function_call,omitempty"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// errorResponse is the API error envelope.
type errorResponse struct {
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// Complete sends the conversation with the capability schemas exposed
// as callable functions.
func (c *Client) Complete(ctx context.Context, turns []domain.Turn, tools []domain.ToolSchema) (*Reply, error) {
	messages := make([]chatMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}

	resp, err := c.send(ctx, &chatRequest{Messages: messages, Functions: tools})
	if err != nil {
		return nil, err
	}

	message := resp.Choices[0].Message
	reply := &Reply{Content: message.Content}
	if message.FunctionCall != nil {
		reply.Invocation = &domain.ToolInvocation{
			Name:      message.FunctionCall.Name,
			Arguments: json.RawMessage(message.FunctionCall.Arguments),
		}
	}
	return reply, nil
}

// CompleteVision sends the current turn's text plus image payloads as
// a single multimodal message.
func (c *Client) CompleteVision(ctx context.Context, text string, images []domain.ImagePayload) (string, error) {
	parts := []contentPart{{Type: "text", Text: text}}
	for _, img := range images {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: img.DataURL}})
	}

	resp, err := c.send(ctx, &chatRequest{Messages: []chatMessage{{Role: "user", Content: parts}}})
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

// CompletePrompt sends one standalone user prompt.
func (c *Client) CompletePrompt(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := &chatRequest{Messages: []chatMessage{{Role: "user", Content: prompt}}}
	if maxTokens > 0 {
		req.MaxTokens = &maxTokens
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, req *chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s", c.endpoint, c.deployment, c.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, fmt.Errorf("model API error [%d]: %s (type: %s)", resp.StatusCode, errResp.Error.Message, errResp.Error.Type)
		}
		return nil, fmt.Errorf("model API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("model response has no choices")
	}

	return &result, nil
}
