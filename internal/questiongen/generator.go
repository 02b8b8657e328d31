// Package questiongen turns an LLM provider into a quiz.QuestionSource.
package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/careercoach/internal/llm"
	"github.com/abhisek/careercoach/internal/quiz"
)

// LLMGenerator implements quiz.QuestionSource using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config

	mu    sync.Mutex
	prior map[string][]string // topic -> recently asked question texts
}

var _ quiz.QuestionSource = (*LLMGenerator)(nil)

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{
		provider: provider,
		config:   cfg,
		prior:    make(map[string][]string),
	}
}

// questionOutput is the raw LLM response before validation.
type questionOutput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Generate produces one validated question for topic at difficulty.
func (g *LLMGenerator) Generate(ctx context.Context, topic string, difficulty quiz.Difficulty) (*quiz.Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(topic, difficulty, g.priorFor(topic), g.config)},
		},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	q := &quiz.Question{
		Text:          strings.TrimSpace(raw.Question),
		Options:       raw.Options,
		CorrectAnswer: strings.TrimSpace(raw.CorrectAnswer),
		Explanation:   strings.TrimSpace(raw.Explanation),
		Topic:         topic,
		Difficulty:    difficulty,
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(q); verr != nil {
			return nil, verr
		}
	}

	g.remember(topic, q.Text)
	return q, nil
}

func (g *LLMGenerator) priorFor(topic string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prior[topic]...)
}

func (g *LLMGenerator) remember(topic, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	list := append(g.prior[topic], text)
	if max := g.config.MaxPriorQuestions; max > 0 && len(list) > max {
		list = list[len(list)-max:]
	}
	g.prior[topic] = list
}
