package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_QueueOrder(t *testing.T) {
	mock := NewMockProvider(
		MockText("Try a Kaggle competition."),
		MockResponse{Content: json.RawMessage("Read up on SQL window functions."), Usage: Usage{InputTokens: 12}},
	)
	ctx := context.Background()

	first, err := mock.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "next step?"}}})
	require.NoError(t, err)
	assert.Equal(t, "Try a Kaggle competition.", string(first.Content))
	assert.Equal(t, "mock", first.Model)

	second, err := mock.Generate(ctx, Request{System: "coach"})
	require.NoError(t, err)
	assert.Equal(t, 12, second.Usage.InputTokens)

	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, "coach", mock.LastRequest().System)

	_, err = mock.Generate(ctx, Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestMockProvider_CannedError(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestMockProvider_SchemaDecoding(t *testing.T) {
	mock := NewMockProvider(
		MockText("I cannot answer that"),
		MockJSON(map[string]any{
			"question":       "What does ETL stand for?",
			"options":        []string{"Extract Transform Load", "Edit Test Launch", "Encode Transfer Link", "Evaluate Train Log"},
			"correct_answer": "1",
			"explanation":    "ETL moves data between systems.",
		}),
	)

	_, err := mock.Generate(context.Background(), Request{Schema: mcqSchema()})
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)

	resp, err := mock.Generate(context.Background(), Request{Schema: mcqSchema()})
	require.NoError(t, err)
	var got struct {
		CorrectAnswer string `json:"correct_answer"`
	}
	require.NoError(t, json.Unmarshal(resp.Content, &got))
	assert.Equal(t, "1", got.CorrectAnswer)
}

func TestPurposeContext(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, PurposeChat, PurposeFrom(WithPurpose(context.Background(), PurposeChat)))
}

func TestDiscoverConfig(t *testing.T) {
	for _, env := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(env, "")
	}

	cfg := DiscoverConfig(DefaultConfig())
	assert.Equal(t, "ollama", cfg.Provider)

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	cfg = DiscoverConfig(DefaultConfig())
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.Anthropic.APIKey)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ollama with model", Config{Provider: "ollama", Ollama: OllamaConfig{Model: "mistral"}}, false},
		{"ollama without model", Config{Provider: "ollama"}, true},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock", Config{Provider: "mock"}, false},
		{"unknown", Config{Provider: "watson"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
