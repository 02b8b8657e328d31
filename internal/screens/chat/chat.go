// Package chat is the conversational coach screen. Messages that ask for a
// quiz open the quiz screen instead of going to the model.
package chat

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	chatsvc "github.com/abhisek/careercoach/internal/chat"
	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/llm"
	"github.com/abhisek/careercoach/internal/profile"
	qz "github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/router"
	"github.com/abhisek/careercoach/internal/screen"
	quizscreen "github.com/abhisek/careercoach/internal/screens/quiz"
	"github.com/abhisek/careercoach/internal/ui/components"
	"github.com/abhisek/careercoach/internal/ui/layout"
)

// Options configures a ChatScreen.
type Options struct {
	Chat   *chatsvc.Service
	Coach  *coach.Coach
	User   string
	Logger *zap.Logger

	// ChatID resumes an existing chat. Empty starts a new one.
	ChatID string
}

type chatReadyMsg struct {
	ID      string
	History []profile.ChatTurn
	Err     error
}

type replyMsg struct {
	Turn profile.ChatTurn
	Err  error
}

// ChatScreen implements screen.Screen for a coach conversation.
type ChatScreen struct {
	opts    Options
	ctx     context.Context
	cancel  context.CancelFunc
	input   components.TextInput
	spinner spinner.Model

	chatID  string
	turns   []profile.ChatTurn
	pending string
	waiting bool
	errMsg  string
	notice  string
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.Closer = (*ChatScreen)(nil)

// New creates a ChatScreen.
func New(opts Options) *ChatScreen {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatScreen{
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		input:   components.NewTextInput("Ask about careers in data and AI, or say \"quiz me\"", false, 500),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.open(s.opts.ChatID))
}

func (s *ChatScreen) Title() string {
	return "Chat with Coach"
}

// Close cancels an in-flight reply.
func (s *ChatScreen) Close() {
	s.cancel()
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "/clear", Description: "New chat"},
		{Key: "Esc", Description: "Back"},
	}
}

// open loads chatID, or creates a chat when it is empty.
func (s *ChatScreen) open(chatID string) tea.Cmd {
	ctx, store, user := s.ctx, s.opts.Chat.Chats(), s.opts.User
	return func() tea.Msg {
		if chatID == "" {
			cs, err := store.CreateChat(ctx, user)
			if err != nil {
				return chatReadyMsg{Err: err}
			}
			return chatReadyMsg{ID: cs.ID}
		}
		history, err := store.ChatHistory(ctx, user, chatID)
		return chatReadyMsg{ID: chatID, History: history, Err: err}
	}
}

func (s *ChatScreen) send(message string) tea.Cmd {
	ctx, svc, user, chatID := s.ctx, s.opts.Chat, s.opts.User, s.chatID
	return func() tea.Msg {
		turn, err := svc.Send(ctx, user, chatID, message)
		return replyMsg{Turn: turn, Err: err}
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case chatReadyMsg:
		if msg.Err != nil {
			s.errMsg = "Could not open the chat: " + msg.Err.Error()
			return s, nil
		}
		s.chatID, s.turns, s.errMsg = msg.ID, msg.History, ""
		return s, nil

	case replyMsg:
		s.waiting = false
		s.pending = ""
		if msg.Err != nil {
			s.errMsg = "Sorry, I couldn't answer that: " + llm.Describe(msg.Err)
			return s, nil
		}
		s.turns = append(s.turns, msg.Turn)
		return s, nil

	case spinner.TickMsg:
		if !s.waiting {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return s.submit()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) submit() (screen.Screen, tea.Cmd) {
	text := s.input.Value()
	if text == "" || s.waiting || s.chatID == "" {
		return s, nil
	}
	s.input.Reset()
	s.errMsg, s.notice = "", ""

	switch strings.ToLower(text) {
	case "exit", "quit":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "/clear":
		s.turns = nil
		s.chatID = ""
		return s, s.open("")
	}

	switch intent := chatsvc.DetectQuizRequest(text); intent.Kind {
	case chatsvc.IntentFullQuiz:
		return s, s.pushQuiz(quizscreen.Options{Mode: quizscreen.ModeFull}, text)
	case chatsvc.IntentSingleTopic:
		return s, s.pushQuiz(quizscreen.Options{
			Mode:       quizscreen.ModeSingle,
			Topic:      intent.Topic,
			Difficulty: qz.DifficultyMedium,
		}, text)
	}

	s.waiting = true
	s.pending = text
	return s, tea.Batch(s.send(text), s.spinner.Tick)
}

func (s *ChatScreen) pushQuiz(opts quizscreen.Options, request string) tea.Cmd {
	opts.Coach = s.opts.Coach
	opts.User = s.opts.User
	opts.OnFinish = func(rec *qz.SessionRecord, answers []string) tea.Cmd {
		return s.recordQuiz(request, rec, answers)
	}
	q := quizscreen.New(opts)
	return func() tea.Msg { return router.PushScreenMsg{Screen: q} }
}

// recordQuiz adds a quiz summary turn to the open chat so later replies can
// refer to it. It runs on the quiz screen's update, so the persisted write is
// returned as a command.
func (s *ChatScreen) recordQuiz(request string, rec *qz.SessionRecord, answers []string) tea.Cmd {
	if s.chatID == "" {
		return nil
	}
	turn := profile.ChatTurn{User: request, Bot: quizSummary(rec, answers)}
	s.turns = append(s.turns, turn)
	s.notice = "Quiz result added to this chat."

	ctx, svc, user, chatID, logger := s.ctx, s.opts.Chat, s.opts.User, s.chatID, s.opts.Logger
	return func() tea.Msg {
		if err := svc.Record(context.WithoutCancel(ctx), user, chatID, turn); err != nil {
			logger.Error("failed to record quiz turn", zap.String("user", user), zap.String("chat", chatID), zap.Error(err))
		}
		return nil
	}
}

func quizSummary(rec *qz.SessionRecord, answers []string) string {
	if rec.Type == qz.SessionFull {
		score := 0
		if rec.Score != nil {
			score = *rec.Score
		}
		return fmt.Sprintf("Full MCQ quiz completed. Score: %d", score)
	}
	topic, answer := "", "nothing"
	if len(rec.Results) > 0 {
		topic = rec.Results[0].Topic
	}
	if len(answers) > 0 {
		answer = answers[0]
	}
	return fmt.Sprintf("MCQ given on %s. User answered: %s", topic, answer)
}
