package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenRouterProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "meta-llama/llama-3.1-8b-instruct"})
	assert.Error(t, err)
}

func TestNewOpenRouterProvider_KeepsModelID(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	// OpenRouter IDs are namespaced, so friendly names are not mapped.
	assert.Equal(t, "gpt-4o-mini", p.ModelID())
}

func TestOpenRouterProvider_ChatAgainstCustomBaseURL(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completion("Start with a small portfolio project.", "stop"))
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "mistralai/mistral-7b-instruct",
		BaseURL: server.URL + "/api/v1",
	})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a career coach.",
		Messages:  []Message{{Role: RoleUser, Content: "How do I get into data engineering?"}},
		MaxTokens: 200,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-or-test", gotAuth)
	assert.Equal(t, "mistralai/mistral-7b-instruct", gotBody["model"])
	assert.NotContains(t, gotBody, "response_format")

	assert.Equal(t, "Start with a small portfolio project.", string(resp.Content))
	assert.Equal(t, 65, resp.Usage.TotalTokens)
}
