package trello

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCardServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.URL.Query().Get("key"))
		assert.Equal(t, "secret-1", r.URL.Query().Get("token"))

		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "5", r.URL.Query().Get("cards_limit"))
			assert.Equal(t, "true", r.URL.Query().Get("partial_match"))
			json.NewEncoder(w).Encode(map[string]any{
				"cards": []map[string]any{
					{"id": "c1", "name": "2256 - ajustar sync", "url": "https://trello.com/c/c1", "desc": "detalhes", "due": "2024-02-01"},
				},
			})
		case "/cards/c1/actions":
			assert.Equal(t, "commentCard", r.URL.Query().Get("filter"))
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"id":            "a1",
					"date":          "2024-01-20",
					"data":          map[string]any{"text": "bloqueado pelo deploy"},
					"memberCreator": map[string]any{"fullName": "Regis"},
				},
			})
		case "/cards/c1/checklists":
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"id":   "ck1",
					"name": "Entrega",
					"checkItems": []map[string]any{
						{"name": "subir homologação"},
						{"name": "validar fila"},
					},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
}

func TestSearchResolvesCommentsAndChecklists(t *testing.T) {
	server := newCardServer(t)
	defer server.Close()

	client := NewClient("key-1", "secret-1", time.Second).WithBaseURL(server.URL)
	cards, err := client.Search(context.Background(), "sync")
	require.NoError(t, err)

	require.Len(t, cards, 1)
	card := cards[0]
	assert.Equal(t, "2256 - ajustar sync", card.Name)
	require.Len(t, card.Comments, 1)
	assert.Equal(t, "bloqueado pelo deploy", card.Comments[0].Text)
	assert.Equal(t, "Regis", card.Comments[0].Author)
	require.Len(t, card.Checklists, 1)
	assert.Equal(t, []string{"subir homologação", "validar fila"}, card.Checklists[0].Items)
}

func TestFindTaskReturnsFirstMatch(t *testing.T) {
	server := newCardServer(t)
	defer server.Close()

	client := NewClient("key-1", "secret-1", time.Second).WithBaseURL(server.URL)
	card, err := client.FindTask(context.Background(), 2256, "inovacao")
	require.NoError(t, err)
	assert.Equal(t, "c1", card.ID)
}

func TestFindTaskNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"cards": []map[string]any{}})
	}))
	defer server.Close()

	client := NewClient("key-1", "secret-1", time.Second).WithBaseURL(server.URL)
	_, err := client.FindTask(context.Background(), 99, "inovacao")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
