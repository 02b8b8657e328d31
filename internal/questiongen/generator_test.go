package questiongen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/careercoach/internal/llm"
	"github.com/abhisek/careercoach/internal/quiz"
)

func validOutput() map[string]any {
	return map[string]any{
		"question":       "Which technique reduces overfitting in a decision tree?",
		"options":        []string{"Pruning", "Adding more features", "Lowering the learning rate", "Removing the validation set"},
		"correct_answer": "1",
		"explanation":    "Pruning removes branches that fit noise in the training data.",
	}
}

func TestGenerate_HappyPath(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(validOutput()))
	gen := New(mock, DefaultConfig())

	q, err := gen.Generate(context.Background(), "machine learning", quiz.DifficultyMedium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Topic != "machine learning" || q.Difficulty != quiz.DifficultyMedium {
		t.Errorf("topic/difficulty = %q/%q", q.Topic, q.Difficulty)
	}
	if q.CorrectOption() != "Pruning" {
		t.Errorf("correct option = %q", q.CorrectOption())
	}
	if len(q.Options) != 4 {
		t.Errorf("expected 4 options, got %d", len(q.Options))
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(validOutput()))
	gen := New(mock, DefaultConfig())

	if _, err := gen.Generate(context.Background(), "statistics", quiz.DifficultyHard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := mock.LastRequest()
	if req.Schema != QuestionSchema {
		t.Error("expected QuestionSchema on the request")
	}
	if req.System != systemPrompt {
		t.Error("expected the question system prompt")
	}
	if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "topic of 'statistics' at a 'hard' difficulty") {
		t.Errorf("unexpected user message: %+v", req.Messages)
	}
	if req.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d", req.MaxTokens)
	}
}

func TestGenerate_ProviderErrorIsWrapped(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), "data science", quiz.DifficultyEasy)
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected wrapped ErrProviderUnavailable, got %v", err)
	}
}

func TestGenerate_MalformedOutputFails(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("Sure! Here is a question about SQL."))
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), "data engineering", quiz.DifficultyEasy)
	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestGenerate_ValidatorRejects(t *testing.T) {
	out := validOutput()
	out["options"] = []string{"Pruning", "pruning ", "Bagging", "Boosting"}
	mock := llm.NewMockProvider(llm.MockJSON(out))
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), "machine learning", quiz.DifficultyEasy)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Validator != "structural" {
		t.Errorf("validator = %q", verr.Validator)
	}
}

func TestGenerate_SendsPriorQuestionsPerTopic(t *testing.T) {
	first := validOutput()
	second := validOutput()
	second["question"] = "What does a confusion matrix summarise?"
	mock := llm.NewMockProvider(llm.MockJSON(first), llm.MockJSON(second), llm.MockJSON(validOutput()))
	gen := New(mock, DefaultConfig())
	ctx := context.Background()

	if _, err := gen.Generate(ctx, "machine learning", quiz.DifficultyEasy); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mock.LastRequest().Messages[0].Content, "Already asked:\nNone") {
		t.Error("expected no prior questions on the first call")
	}

	if _, err := gen.Generate(ctx, "machine learning", quiz.DifficultyEasy); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mock.LastRequest().Messages[0].Content, "1. Which technique reduces overfitting") {
		t.Error("expected the first question in the already-asked list")
	}

	if _, err := gen.Generate(ctx, "statistics", quiz.DifficultyEasy); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mock.LastRequest().Messages[0].Content, "Already asked:\nNone") {
		t.Error("prior questions must be tracked per topic")
	}
}

func TestGenerate_DrivesRunner(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockJSON(validOutput()),
		llm.MockText("not a question"),
		llm.MockJSON(validOutput()),
	)
	runner := quiz.NewRunner(New(mock, DefaultConfig()), quiz.Config{}, quiz.Hooks{})

	rec := runner.Run(context.Background(), 2, quiz.FixedTopic("machine learning"),
		quiz.AnswererFunc(func(context.Context, quiz.Round) (string, error) { return "1", nil }))

	if len(rec.Results) != 2 || rec.GenerationFailures != 1 {
		t.Fatalf("results = %d, failures = %d", len(rec.Results), rec.GenerationFailures)
	}
	if rec.Score == nil || *rec.Score != 20 {
		t.Fatalf("score = %v, want 20", rec.Score)
	}
}
