package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "notewise/backend/internal/errors"
)

func TestOpenAIProvider(t *testing.T) {
	var capturedAuth string
	var capturedBody openAIChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))

		if capturedBody.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = w.Write([]byte("data: {\"choices\": [{\"delta\": {\"content\": \"Hi \"}}]}\n\n"))
			_, _ = w.Write([]byte("data: {\"choices\": [{\"delta\": {\"content\": \"there\"}}]}\n\n"))
			_, _ = w.Write([]byte("data: {\"choices\": [{\"delta\": {}, \"finish_reason\": \"stop\"}], \"usage\": {\"total_tokens\": 9}}\n\n"))
			_, _ = w.Write([]byte("data: [DONE]\n\n"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Hi there"}}], "usage": {"total_tokens": 20}}`))
	}))
	defer server.Close()

	models := []ModelDescriptor{{ID: "gpt-test", ContextWindow: 128000, CostPer1KTokens: 0.15}}
	provider := NewOpenAIProvider(server.URL, "sk-test-key", models)
	ctx := context.Background()

	t.Run("Describe", func(t *testing.T) {
		desc := provider.Describe()
		assert.Equal(t, "openai", desc.ID)
		assert.True(t, desc.RequiresAPIKey)
	})

	t.Run("Chat reports backend usage", func(t *testing.T) {
		result, err := provider.Chat(ctx, &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
			Options:  Options{Model: "gpt-test", Temperature: 0.7, MaxTokens: 256},
		})
		require.NoError(t, err)

		assert.Equal(t, "Bearer sk-test-key", capturedAuth)
		assert.Equal(t, "Hi there", result.Content)
		assert.Equal(t, 20, result.TokensUsed)
		assert.InDelta(t, 20.0/1000*0.15, result.Cost, 1e-9)
		assert.Equal(t, 0.7, capturedBody.Temperature)
		assert.Equal(t, 256, capturedBody.MaxTokens)
	})

	t.Run("ChatStream over SSE framing", func(t *testing.T) {
		ch := make(chan StreamChunk, 8)
		err := provider.ChatStream(ctx, &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
			Options:  Options{Model: "gpt-test"},
		}, ch)
		require.NoError(t, err)

		var content string
		var final StreamChunk
		for chunk := range ch {
			if chunk.Done {
				final = chunk
				continue
			}
			content += chunk.Content
		}
		assert.Equal(t, "Hi there", content)
		assert.True(t, final.Done)
		assert.Equal(t, 9, final.TokensSoFar)
	})
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(server.URL, "bad-key", nil)

	_, err := provider.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Options:  Options{Model: "gpt-test"},
	})
	require.Error(t, err)

	aiErr, ok := apperrors.AsAIError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeChatError, aiErr.Code)
	assert.Equal(t, "openai", aiErr.ProviderID)
	assert.Contains(t, aiErr.Message, "401")
}
