// Package profile defines per-user state (quiz history and chat sessions)
// and the persistence contract the rest of the application depends on.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/careercoach/internal/quiz"
)

// ErrNotFound is returned by lookups that do not create missing profiles.
var ErrNotFound = errors.New("profile not found")

// DefaultChatTitle is the title of a chat session before its first turn.
const DefaultChatTitle = "New Chat"

// chatTitleMax is the title length taken from the first user message.
const chatTitleMax = 50

// UserProfile is the state owned by one user. QuizHistory is append-only.
type UserProfile struct {
	UserID       string
	CreatedAt    time.Time
	QuizHistory  []quiz.SessionRecord
	ChatSessions map[string]*ChatSession
}

// ChatTurn is one user message and the reply to it.
type ChatTurn struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// ChatSession is a titled conversation.
type ChatSession struct {
	ID        string
	Title     string
	CreatedAt time.Time
	History   []ChatTurn
}

// ChatSummary is the list view of a chat session.
type ChatSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Store persists user profiles. Implementations must serialize writes per
// user while letting different users proceed independently.
type Store interface {
	// Get returns the profile for userID, creating an empty one if absent.
	Get(ctx context.Context, userID string) (*UserProfile, error)

	// Find returns the profile for userID or ErrNotFound.
	Find(ctx context.Context, userID string) (*UserProfile, error)

	// AppendQuizResult atomically appends rec to the user's quiz history,
	// creating the profile if needed.
	AppendQuizResult(ctx context.Context, userID string, rec *quiz.SessionRecord) error
}

// ChatStore persists chat sessions.
type ChatStore interface {
	CreateChat(ctx context.Context, userID string) (*ChatSession, error)
	ListChats(ctx context.Context, userID string) ([]ChatSummary, error)

	// ChatHistory returns the turns of a chat. Unknown chats yield nil.
	ChatHistory(ctx context.Context, userID, chatID string) ([]ChatTurn, error)

	// DeleteChat removes a chat. Deleting an unknown chat is not an error.
	DeleteChat(ctx context.Context, userID, chatID string) error

	// AppendChatTurn adds a turn to an existing chat; unknown chats are
	// ignored. The first turn renames the chat after the user message.
	AppendChatTurn(ctx context.Context, userID, chatID string, turn ChatTurn) error
}

// ChatTitle derives a chat title from the first user message.
func ChatTitle(msg string) string {
	r := []rune(msg)
	if len(r) > chatTitleMax {
		r = r[:chatTitleMax]
	}
	return string(r)
}
