package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

func TestCompatChatSendsBearerAndReadsFirstChoice(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi from openrouter"}}]}`))
	}))
	t.Cleanup(server.Close)

	adapter := &OpenAICompatAdapter{Transport: &Transport{HTTPClient: server.Client()}}
	reply, err := adapter.Chat(context.Background(), "hello", domain.RuntimeConfig{
		Provider: "openrouter",
		Model:    "meta-llama/llama-3-8b",
		APIURL:   server.URL,
		APIKey:   "sk-or-test",
		AuthMode: domain.AuthModeAPIKey,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi from openrouter", reply)
}

func TestCompatChatUsesOAuthTokenAsBearerInOAuthMode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	t.Cleanup(server.Close)

	adapter := &OpenAICompatAdapter{Transport: &Transport{HTTPClient: server.Client()}}
	reply, err := adapter.Chat(context.Background(), "hello", domain.RuntimeConfig{
		Provider:         "copilot",
		Model:            "gpt-4o",
		APIURL:           server.URL,
		APIKey:           "unused-key",
		AuthMode:         domain.AuthModeOAuthToken,
		OAuthAccessToken: "gho_token",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestCompatChatMissingCredentialIsFatal(t *testing.T) {
	t.Parallel()

	adapter := &OpenAICompatAdapter{Transport: NewTransport()}
	_, err := adapter.Chat(context.Background(), "hello", domain.RuntimeConfig{
		Provider: "openai",
		AuthMode: domain.AuthModeOAuthToken,
	})
	require.Error(t, err)

	var missing *domain.MissingCredentialError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, domain.ProviderOpenAI, missing.Provider)
}

func TestCompatChatCopilotHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, copilotIntegrationID, r.Header.Get("Copilot-Integration-Id"))
		assert.Equal(t, copilotEditorVersion, r.Header.Get("Editor-Version"))
		assert.Equal(t, "github.example.com", r.Header.Get("X-GitHub-Host"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	t.Cleanup(server.Close)

	adapter := &OpenAICompatAdapter{Transport: &Transport{HTTPClient: server.Client()}}
	_, err := adapter.Chat(context.Background(), "hello", domain.RuntimeConfig{
		Provider:         "github-copilot",
		Model:            "gpt-4o",
		APIURL:           server.URL,
		AuthMode:         domain.AuthModeOAuthToken,
		OAuthAccessToken: "gho_token",
		EnterpriseURL:    "https://github.example.com/",
	})
	require.NoError(t, err)
}

func TestCompatChatNonCopilotOmitsIntentHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Copilot-Integration-Id"))
		assert.Empty(t, r.Header.Get("X-GitHub-Host"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(server.Close)

	adapter := &OpenAICompatAdapter{Transport: &Transport{HTTPClient: server.Client()}}
	reply, err := adapter.Chat(context.Background(), "hello", domain.RuntimeConfig{
		Provider: "openai",
		Model:    "gpt-4o",
		APIURL:   server.URL,
		APIKey:   "sk-test",
		AuthMode: domain.AuthModeAPIKey,
	})
	require.NoError(t, err)
	assert.Equal(t, compatEmptyReply, reply)
}
