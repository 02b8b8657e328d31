// Package chat is the conversational career-coach path: prompt assembly,
// persisted chat sessions and quiz intent detection.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/careercoach/internal/llm"
	"github.com/abhisek/careercoach/internal/profile"
)

const systemInstruction = "You are an AI Career Coach, a specialized assistant designed to help students and professionals navigate their careers in Data and Artificial Intelligence. " +
	"Your goal is to provide accurate information about career paths, assess user knowledge, and recommend learning resources. " +
	"Be encouraging, professional, and focus your answers strictly on topics related to Data and AI careers. " +
	"Don't forget to check the conversation history to provide contextually relevant responses. " +
	"Give small and organized responses."

// ErrEmptyMessage is returned for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// Config controls a Service.
type Config struct {
	// MaxHistory caps the number of prior turns replayed to the model.
	// Zero replays everything.
	MaxHistory int

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the standard chat settings.
func DefaultConfig() Config {
	return Config{MaxHistory: 20, MaxTokens: 1024, Temperature: 0.7}
}

// Service answers chat messages and keeps chat sessions.
type Service struct {
	provider llm.Provider
	chats    profile.ChatStore
	config   Config
	logger   *zap.Logger
}

// NewService creates a chat Service. logger may be nil.
func NewService(provider llm.Provider, chats profile.ChatStore, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, chats: chats, config: cfg, logger: logger}
}

// Respond asks the model for a reply to message given prior turns.
func (s *Service) Respond(ctx context.Context, message string, history []profile.ChatTurn) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if max := s.config.MaxHistory; max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}

	msgs := make([]llm.Message, 0, 2*len(history)+1)
	for _, t := range history {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: t.User},
			llm.Message{Role: llm.RoleAssistant, Content: t.Bot},
		)
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeChat), llm.Request{
		System:      systemInstruction,
		Messages:    msgs,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat reply: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// Send replies to message in an existing chat and stores the turn. Unknown
// chats fail with profile.ErrNotFound.
func (s *Service) Send(ctx context.Context, userID, chatID, message string) (profile.ChatTurn, error) {
	if ok, err := s.exists(ctx, userID, chatID); err != nil {
		return profile.ChatTurn{}, err
	} else if !ok {
		return profile.ChatTurn{}, profile.ErrNotFound
	}

	history, err := s.chats.ChatHistory(ctx, userID, chatID)
	if err != nil {
		return profile.ChatTurn{}, fmt.Errorf("load chat history: %w", err)
	}

	reply, err := s.Respond(ctx, message, history)
	if err != nil {
		return profile.ChatTurn{}, err
	}

	turn := profile.ChatTurn{User: strings.TrimSpace(message), Bot: reply}
	if err := s.chats.AppendChatTurn(ctx, userID, chatID, turn); err != nil {
		return profile.ChatTurn{}, fmt.Errorf("save chat turn: %w", err)
	}
	s.logger.Debug("chat turn stored", zap.String("user", userID), zap.String("chat", chatID), zap.Int("turn", len(history)+1))
	return turn, nil
}

// Record stores a turn that did not come from the model, such as a quiz
// summary, so later replies can see it.
func (s *Service) Record(ctx context.Context, userID, chatID string, turn profile.ChatTurn) error {
	return s.chats.AppendChatTurn(ctx, userID, chatID, turn)
}

// Chats exposes the underlying session store.
func (s *Service) Chats() profile.ChatStore {
	return s.chats
}

func (s *Service) exists(ctx context.Context, userID, chatID string) (bool, error) {
	list, err := s.chats.ListChats(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list chats: %w", err)
	}
	for _, c := range list {
		if c.ID == chatID {
			return true, nil
		}
	}
	return false, nil
}
