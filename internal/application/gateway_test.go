package application

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroclaw/provider-gateway/internal/adapters/provider"
	"github.com/zeroclaw/provider-gateway/internal/domain"
)

func newTestGateway() *Gateway {
	return NewGateway(provider.NewRegistry(provider.NewTransport(), nil))
}

func TestSendMessageOllamaRoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"content":"hi"}}`))
	}))
	t.Cleanup(server.Close)

	gw := newTestGateway()
	reply, err := gw.SendMessage(context.Background(), "hello", domain.RuntimeConfig{
		Provider: "ollama",
		Model:    "gpt-oss:20b",
		APIURL:   server.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", reply)
}

func TestSendMessageUpstreamFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	t.Cleanup(server.Close)

	gw := newTestGateway()
	_, err := gw.SendMessage(context.Background(), "hello", domain.RuntimeConfig{
		Provider: "ollama",
		Model:    "gpt-oss:20b",
		APIURL:   server.URL,
	})
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}

func TestSendMessageRejectsBlankMessage(t *testing.T) {
	t.Parallel()

	gw := newTestGateway()
	for _, message := range []string{"", "   ", "\n\t"} {
		_, err := gw.SendMessage(context.Background(), message, domain.RuntimeConfig{Provider: "ollama"})
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	}
}

func TestSendMessageUnknownProvider(t *testing.T) {
	t.Parallel()

	gw := newTestGateway()
	_, err := gw.SendMessage(context.Background(), "hello", domain.RuntimeConfig{Provider: "mistralai"})
	require.Error(t, err)

	var unsupported *domain.UnsupportedProviderError
	assert.ErrorAs(t, err, &unsupported)
}

func TestSendMessageTrimsBeforeDispatch(t *testing.T) {
	t.Parallel()

	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"message":{"content":"ok"}}`))
	}))
	t.Cleanup(server.Close)

	gw := newTestGateway()
	_, err := gw.SendMessage(context.Background(), "  padded  ", domain.RuntimeConfig{
		Provider: "ollama",
		Model:    "gpt-oss:20b",
		APIURL:   server.URL,
	})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"content":"padded"`)
	assert.NotContains(t, string(body), "  padded  ")
}

func TestSendMessageDispatchesToCredentialedAdapters(t *testing.T) {
	t.Parallel()

	gw := newTestGateway()

	// Each provider reaches its adapter; the typed credential error
	// proves the right adapter ran without hitting the network.
	for _, name := range []string{"anthropic", "openai", "openrouter", "copilot", "gemini"} {
		_, err := gw.SendMessage(context.Background(), "hello", domain.RuntimeConfig{Provider: name, Model: "m"})
		var missing *domain.MissingCredentialError
		require.ErrorAs(t, err, &missing, "provider %s", name)
	}
}

func TestSendMessageProviderSynonyms(t *testing.T) {
	t.Parallel()

	gw := newTestGateway()
	for _, name := range []string{"google", "google-gemini", "Gemini"} {
		_, err := gw.SendMessage(context.Background(), "hello", domain.RuntimeConfig{Provider: name, Model: "m"})
		var missing *domain.MissingCredentialError
		require.ErrorAs(t, err, &missing, "synonym %s", name)
		assert.Equal(t, domain.ProviderGemini, missing.Provider)
	}
}
