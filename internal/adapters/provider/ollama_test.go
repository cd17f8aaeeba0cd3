package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

func ollamaConfig(baseURL string) domain.RuntimeConfig {
	return domain.RuntimeConfig{
		Provider:    "ollama",
		Model:       "gpt-oss:20b",
		APIURL:      baseURL,
		Temperature: 0.2,
	}
}

func TestOllamaChatShapesRequestAndExtractsContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-oss:20b", payload["model"])
		assert.Equal(t, false, payload["stream"])

		options, ok := payload["options"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 0.2, options["temperature"], 1e-9)

		messages, ok := payload["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 1)
		first, ok := messages[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "user", first["role"])
		assert.Equal(t, "hello", first["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"content":"hi"}}`))
	}))
	t.Cleanup(server.Close)

	adapter := &OllamaAdapter{Transport: &Transport{HTTPClient: server.Client()}}
	reply, err := adapter.Chat(context.Background(), "hello", ollamaConfig(server.URL))
	require.NoError(t, err)
	assert.Equal(t, "hi", reply)
}

func TestOllamaChatBlankContentBecomesPlaceholder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"content":"  "}}`))
	}))
	t.Cleanup(server.Close)

	adapter := &OllamaAdapter{Transport: &Transport{HTTPClient: server.Client()}}
	reply, err := adapter.Chat(context.Background(), "hello", ollamaConfig(server.URL))
	require.NoError(t, err)
	assert.Equal(t, ollamaEmptyReply, reply)
}

func TestOllamaChatSurfacesUpstreamStatusAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	t.Cleanup(server.Close)

	adapter := &OllamaAdapter{Transport: &Transport{HTTPClient: server.Client()}}
	_, err := adapter.Chat(context.Background(), "hello", ollamaConfig(server.URL))
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}
