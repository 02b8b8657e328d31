package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/profile"
	qz "github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/router"
)

type stubSource struct {
	err error
}

func (s stubSource) Generate(_ context.Context, topic string, d qz.Difficulty) (*qz.Question, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &qz.Question{
		Text:          "Which metric is robust to outliers?",
		Options:       []string{"Median", "Mean", "Range", "Variance"},
		CorrectAnswer: "1",
		Explanation:   "The median ignores extreme values.",
		Topic:         topic,
		Difficulty:    d,
	}, nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newCoach(src qz.QuestionSource) (*coach.Coach, *profile.MemoryStore) {
	store := profile.NewMemoryStore()
	return coach.New(coach.Options{Source: src, Profiles: store, Config: coach.DefaultConfig()}), store
}

// next reads one session event from the bridge.
func next(t *testing.T, s *QuizScreen) tea.Msg {
	t.Helper()
	ch := make(chan tea.Msg, 1)
	go func() { ch <- s.bridge.wait()() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a session event")
		return nil
	}
}

// pump feeds session events to the screen until one of type T arrives.
func pump[T any](t *testing.T, s *QuizScreen) T {
	t.Helper()
	for i := 0; i < 50; i++ {
		msg := next(t, s)
		s.Update(msg)
		if m, ok := msg.(T); ok {
			return m
		}
	}
	t.Fatal("expected event never arrived")
	var zero T
	return zero
}

func TestQuizScreen_FullSession(t *testing.T) {
	c, store := newCoach(stubSource{})
	var finished *qz.SessionRecord
	var finishedAnswers []string
	s := New(Options{
		Coach:  c,
		User:   "ada",
		Rounds: 2,
		OnFinish: func(rec *qz.SessionRecord, answers []string) tea.Cmd {
			finished, finishedAnswers = rec, answers
			return nil
		},
	})
	s.Init()
	defer s.Close()

	pump[roundMsg](t, s)
	if s.phase != phaseQuestion {
		t.Fatalf("expected question phase, got %v", s.phase)
	}
	if !strings.Contains(s.View(100, 30), "Q1 of 2") {
		t.Error("expected round heading in view")
	}

	s.Update(keyPress('1'))
	o := pump[outcomeMsg](t, s)
	if !o.Outcome.Correct || o.Outcome.Points != 10 {
		t.Fatalf("expected correct easy answer worth 10, got %+v", o.Outcome)
	}
	if !strings.Contains(s.View(100, 30), "Correct!") {
		t.Error("expected feedback in view")
	}

	pump[roundMsg](t, s)
	if s.phase != phaseFeedback || s.pending == nil {
		t.Fatal("next round should wait behind the feedback")
	}
	s.Update(specialKey(tea.KeyEnter))
	if s.phase != phaseQuestion || s.round.Number != 2 {
		t.Fatalf("expected round 2, got phase %v round %d", s.phase, s.round.Number)
	}

	s.Update(keyPress('2'))
	pump[outcomeMsg](t, s)
	if !strings.Contains(s.View(100, 30), "Wrong! The correct answer was 1) Median") {
		t.Error("expected the correct option in the feedback")
	}
	pump[doneMsg](t, s)
	s.Update(specialKey(tea.KeyEnter))
	if s.phase != phaseDone {
		t.Fatalf("expected done phase, got %v", s.phase)
	}
	if !strings.Contains(s.View(100, 30), "Your total score after 2 questions is 10 points.") {
		t.Errorf("unexpected summary view:\n%s", s.View(100, 30))
	}

	if finished == nil || finished.CorrectCount() != 1 {
		t.Fatalf("expected OnFinish with 1 correct answer, got %+v", finished)
	}
	if strings.Join(finishedAnswers, ",") != "1,2" {
		t.Errorf("expected answers 1,2, got %v", finishedAnswers)
	}

	p, err := store.Find(context.Background(), "ada")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.QuizHistory) != 1 || *p.QuizHistory[0].Score != 10 {
		t.Errorf("expected one saved session with score 10, got %+v", p.QuizHistory)
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestQuizScreen_GenerationFailures(t *testing.T) {
	c, _ := newCoach(stubSource{err: errors.New("model offline")})
	s := New(Options{Coach: c, User: "ada", Rounds: 3})
	s.Init()
	defer s.Close()

	done := pump[doneMsg](t, s)
	if done.Record.EndReason != qz.EndGenerationFailures {
		t.Fatalf("expected generation_failures, got %s", done.Record.EndReason)
	}
	if s.phase != phaseDone {
		t.Fatalf("expected done phase, got %v", s.phase)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "could not be generated") {
		t.Errorf("expected early-end message, got:\n%s", view)
	}
	if len(s.notices) != 3 {
		t.Errorf("expected a notice per failure, got %d", len(s.notices))
	}

	_, cmd := s.Update(keyPress('r'))
	if cmd == nil {
		t.Fatal("expected a replay command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	again := msg.Screen.(*QuizScreen)
	if again.opts.Rounds != 3 || again.phase != phaseLoading {
		t.Errorf("replay should reuse 3 rounds and skip setup, got rounds=%d phase=%v", again.opts.Rounds, again.phase)
	}
}

func TestQuizScreen_QuitConfirmKeepsAnsweredRounds(t *testing.T) {
	c, store := newCoach(stubSource{})
	s := New(Options{Coach: c, User: "ada", Rounds: 5})
	s.Init()

	pump[roundMsg](t, s)
	s.Update(keyPress('1'))
	pump[outcomeMsg](t, s)

	if !s.InterceptBack() {
		t.Fatal("running quiz should intercept Esc")
	}
	s.Update(specialKey(tea.KeyEscape))
	if !s.confirm {
		t.Fatal("expected quit confirmation")
	}
	s.Update(keyPress('n'))
	if s.confirm {
		t.Fatal("N should dismiss the confirmation")
	}

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected pop command")
	}

	p, err := store.Find(context.Background(), "ada")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.QuizHistory) != 1 {
		t.Fatalf("expected the aborted session to be saved, got %d", len(p.QuizHistory))
	}
	rec := p.QuizHistory[0]
	if rec.EndReason != qz.EndAborted || len(rec.Results) != 1 {
		t.Errorf("expected aborted session with 1 result, got %s with %d", rec.EndReason, len(rec.Results))
	}
}

func TestQuizScreen_SetupRounds(t *testing.T) {
	c, _ := newCoach(stubSource{})
	s := New(Options{Coach: c, User: "ada"})
	if s.phase != phaseSetup || s.InterceptBack() {
		t.Fatal("expected setup phase without a running session")
	}
	s.Init()
	s.Update(keyPress('x'))
	s.Update(keyPress('3'))
	s.Update(specialKey(tea.KeyEnter))
	defer s.Close()

	if s.opts.Rounds != 3 {
		t.Errorf("expected 3 rounds, got %d", s.opts.Rounds)
	}
	r := pump[roundMsg](t, s)
	if r.Round.Total != 3 {
		t.Errorf("expected total 3, got %d", r.Round.Total)
	}
}

func TestQuizScreen_SingleQuestion(t *testing.T) {
	c, store := newCoach(stubSource{})
	s := New(Options{Coach: c, User: "ada", Mode: ModeSingle})
	s.Init()
	for _, r := range "sql" {
		s.Update(keyPress(r))
	}
	s.Update(specialKey(tea.KeyEnter))
	defer s.Close()

	r := pump[roundMsg](t, s)
	if r.Round.Question.Topic != "sql" || r.Round.Difficulty != qz.DifficultyMedium {
		t.Fatalf("expected a medium sql question, got %+v", r.Round)
	}
	s.Update(keyPress('1'))
	pump[doneMsg](t, s)

	p, err := store.Find(context.Background(), "ada")
	if err != nil {
		t.Fatal(err)
	}
	rec := p.QuizHistory[0]
	if rec.Type != qz.SessionSingle || rec.Score != nil || !rec.Results[0].Correct {
		t.Errorf("unexpected single record %+v", rec)
	}
}
