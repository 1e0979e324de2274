package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/set-night/chatdigest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenRouter(t *testing.T, handler http.HandlerFunc) *OpenRouterService {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &OpenRouterService{
		apiKey:     "test-key",
		baseURL:    srv.URL,
		httpClient: srv.Client(),
		cache:      NewModelsCache(time.Hour),
	}
}

func TestChatSuccess(t *testing.T) {
	s := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"choices": [{"message": {"content": "{\"summary_parts\":[]}"}}],
			"usage": {"prompt_tokens": 100, "completion_tokens": 20, "total_cost": 0.0005}
		}`))
	})

	resp, err := s.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, "test/model", nil)
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, `{"summary_parts":[]}`, resp.Choices[0].Message.Content)
	assert.Equal(t, 100, resp.Usage.PromptTokens)
	assert.InDelta(t, 0.0005, resp.Usage.TotalCost, 1e-9)
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusUnauthorized, domain.ErrInvalidAPIKey},
		{http.StatusForbidden, domain.ErrInvalidAPIKey},
		{http.StatusNotFound, domain.ErrModelNotFound},
	}

	for _, tt := range tests {
		s := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := s.Chat(context.Background(), nil, "test/model", nil)
		assert.ErrorIs(t, err, tt.wantErr, "status %d", tt.status)
	}
}

func TestListModelsCaches(t *testing.T) {
	calls := 0
	s := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"data": [{
			"id": "google/gemini-2.0-flash-001",
			"name": "Gemini 2.0 Flash",
			"pricing": {"prompt": "0.0000001", "completion": "0.0000004"},
			"context_length": 1000000,
			"architecture": {"modality": "text+image->text"}
		}]}`))
	})

	models, err := s.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.True(t, models[0].Capabilities.Vision)
	assert.InDelta(t, 0.1, models[0].PromptPrice, 1e-9)

	_, err = s.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call should hit the cache")
}

func TestGetModel(t *testing.T) {
	s := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"id": "a/b", "name": "B", "pricing": {"prompt": "0", "completion": "0"}}]}`))
	})

	m, err := s.GetModel(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", m.ID)

	_, err = s.GetModel(context.Background(), "missing/model")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestDetectCapabilities(t *testing.T) {
	assert.True(t, detectCapabilities("openai/gpt-4o", "").Vision)
	assert.True(t, detectCapabilities("anthropic/claude-sonnet-4", "").Vision)
	assert.True(t, detectCapabilities("some/model", "text+image->text").Vision)
	assert.False(t, detectCapabilities("meta/llama-3-8b", "text->text").Vision)
	assert.True(t, detectCapabilities("openai/gpt-4o-audio-preview", "").Audio)
}
