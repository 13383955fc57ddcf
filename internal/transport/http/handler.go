package http

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/regisleandro/alfredo-ai/internal/domain"
	"github.com/regisleandro/alfredo-ai/internal/engine"
)

// Handler handles HTTP requests.
type Handler struct {
	engine       *engine.Engine
	apiToken     string
	defaultVhost string
}

// NewHandler creates a new handler. apiToken guards the chat endpoint;
// defaultVhost is used when a request carries no user_id.
func NewHandler(eng *engine.Engine, apiToken, defaultVhost string) *Handler {
	return &Handler{
		engine:       eng,
		apiToken:     apiToken,
		defaultVhost: defaultVhost,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Health)
	e.POST("/chat", h.Chat, h.requireToken)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  true,
		"message": "Alfredo is running",
	})
}

// ChatFile is one uploaded file; content may be base64 or raw text.
type ChatFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ChatRequest is the chat endpoint's request body.
type ChatRequest struct {
	Query  string     `json:"query"`
	UserID string     `json:"user_id"`
	Files  []ChatFile `json:"files"`
}

// Chat processes one conversational turn.
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	userID := req.UserID
	if userID == "" {
		userID = h.defaultVhost
	}

	files := make([]domain.FilePayload, 0, len(req.Files))
	for _, file := range req.Files {
		files = append(files, domain.FilePayload{
			Name:    file.Name,
			Content: decodeContent(file.Content),
		})
	}

	result := h.engine.ProcessTurn(c.Request().Context(), userID, req.Query, files)
	return c.JSON(http.StatusOK, resultBody(result))
}

// resultBody maps a result variant to its response shape.
func resultBody(result domain.Result) map[string]any {
	switch result.Kind {
	case domain.ResultKindTable:
		return map[string]any{"table": result.Table}
	case domain.ResultKindRecords:
		return map[string]any{"records": result.Records}
	default:
		return map[string]any{"text": result.Text}
	}
}

// decodeContent accepts base64-encoded file content, falling back to
// the raw bytes when it does not decode.
func decodeContent(content string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(content); err == nil && !strings.HasPrefix(content, "data:") {
		return decoded
	}
	return []byte(content)
}

// requireToken enforces the bearer token on protected routes.
func (h *Handler) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.apiToken)) != 1 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or missing token"})
		}
		return next(c)
	}
}
