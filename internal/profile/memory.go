package profile

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/careercoach/internal/quiz"
)

// MemoryStore is an in-process Store and ChatStore. It backs tests and the
// --ephemeral mode of the CLI.
type MemoryStore struct {
	keys KeyedMutex

	mu       sync.RWMutex
	profiles map[string]*UserProfile

	now func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*UserProfile), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*UserProfile, error) {
	unlock := s.keys.Lock(userID)
	defer unlock()
	return cloneProfile(s.getOrCreate(userID)), nil
}

func (s *MemoryStore) Find(ctx context.Context, userID string) (*UserProfile, error) {
	unlock := s.keys.Lock(userID)
	defer unlock()

	s.mu.RLock()
	p, ok := s.profiles[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProfile(p), nil
}

func (s *MemoryStore) AppendQuizResult(ctx context.Context, userID string, rec *quiz.SessionRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	unlock := s.keys.Lock(userID)
	defer unlock()

	p := s.getOrCreate(userID)
	p.QuizHistory = append(p.QuizHistory, cloneRecord(*rec))
	return nil
}

func (s *MemoryStore) CreateChat(ctx context.Context, userID string) (*ChatSession, error) {
	unlock := s.keys.Lock(userID)
	defer unlock()

	p := s.getOrCreate(userID)
	cs := &ChatSession{ID: uuid.NewString(), Title: DefaultChatTitle, CreatedAt: s.now().UTC()}
	p.ChatSessions[cs.ID] = cs
	return cloneChat(cs), nil
}

func (s *MemoryStore) ListChats(ctx context.Context, userID string) ([]ChatSummary, error) {
	unlock := s.keys.Lock(userID)
	defer unlock()

	p := s.getOrCreate(userID)
	sessions := make([]*ChatSession, 0, len(p.ChatSessions))
	for _, cs := range p.ChatSessions {
		sessions = append(sessions, cs)
	}
	slices.SortFunc(sessions, func(a, b *ChatSession) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	out := make([]ChatSummary, 0, len(sessions))
	for _, cs := range sessions {
		out = append(out, ChatSummary{ID: cs.ID, Title: cs.Title})
	}
	return out, nil
}

func (s *MemoryStore) ChatHistory(ctx context.Context, userID, chatID string) ([]ChatTurn, error) {
	unlock := s.keys.Lock(userID)
	defer unlock()

	cs, ok := s.getOrCreate(userID).ChatSessions[chatID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(cs.History), nil
}

func (s *MemoryStore) DeleteChat(ctx context.Context, userID, chatID string) error {
	unlock := s.keys.Lock(userID)
	defer unlock()

	delete(s.getOrCreate(userID).ChatSessions, chatID)
	return nil
}

func (s *MemoryStore) AppendChatTurn(ctx context.Context, userID, chatID string, turn ChatTurn) error {
	unlock := s.keys.Lock(userID)
	defer unlock()

	cs, ok := s.getOrCreate(userID).ChatSessions[chatID]
	if !ok {
		return nil
	}
	if len(cs.History) == 0 {
		cs.Title = ChatTitle(turn.User)
	}
	cs.History = append(cs.History, turn)
	return nil
}

// getOrCreate must be called with the user's key held.
func (s *MemoryStore) getOrCreate(userID string) *UserProfile {
	s.mu.RLock()
	p, ok := s.profiles[userID]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p = &UserProfile{
		UserID:       userID,
		CreatedAt:    s.now().UTC(),
		QuizHistory:  []quiz.SessionRecord{},
		ChatSessions: make(map[string]*ChatSession),
	}
	s.profiles[userID] = p
	return p
}

func cloneProfile(p *UserProfile) *UserProfile {
	cp := &UserProfile{
		UserID:       p.UserID,
		CreatedAt:    p.CreatedAt,
		QuizHistory:  make([]quiz.SessionRecord, len(p.QuizHistory)),
		ChatSessions: make(map[string]*ChatSession, len(p.ChatSessions)),
	}
	for i, rec := range p.QuizHistory {
		cp.QuizHistory[i] = cloneRecord(rec)
	}
	for id, cs := range p.ChatSessions {
		cp.ChatSessions[id] = cloneChat(cs)
	}
	return cp
}

func cloneChat(cs *ChatSession) *ChatSession {
	cp := *cs
	cp.History = slices.Clone(cs.History)
	return &cp
}

func cloneRecord(rec quiz.SessionRecord) quiz.SessionRecord {
	rec.Results = slices.Clone(rec.Results)
	if rec.Score != nil {
		score := *rec.Score
		rec.Score = &score
	}
	return rec
}
