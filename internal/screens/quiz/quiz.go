// Package quiz is the interactive quiz screen: a full adaptive session or a
// single question, played against the coach.
package quiz

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/llm"
	qz "github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/router"
	"github.com/abhisek/careercoach/internal/screen"
	"github.com/abhisek/careercoach/internal/ui/components"
	"github.com/abhisek/careercoach/internal/ui/layout"
)

// Mode selects the kind of session.
type Mode int

const (
	ModeFull Mode = iota
	ModeSingle
)

// Options configures a QuizScreen.
type Options struct {
	Coach *coach.Coach
	User  string
	Mode  Mode

	// Rounds for a full quiz. Zero asks the user.
	Rounds int

	// Topic and Difficulty for a single question. An empty topic asks the
	// user; an empty difficulty means medium.
	Topic      string
	Difficulty qz.Difficulty

	// OnFinish runs when the session record is available. answers holds the
	// submitted option numbers in round order.
	OnFinish func(rec *qz.SessionRecord, answers []string) tea.Cmd
}

type phase int

const (
	phaseSetup phase = iota
	phaseLoading
	phaseQuestion
	phaseFeedback
	phaseDone
)

// QuizScreen implements screen.Screen for a quiz session.
type QuizScreen struct {
	opts    Options
	phase   phase
	input   components.TextInput
	spinner spinner.Model
	bridge  *bridge

	status   string
	notices  []string
	round    qz.Round
	choice   components.MultiChoice
	outcome  *qz.RoundOutcome
	pending  *qz.Round
	answers  []string
	finished bool
	confirm  bool

	record  *qz.SessionRecord
	saveErr error
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.Closer = (*QuizScreen)(nil)
var _ screen.BackInterceptor = (*QuizScreen)(nil)

// New creates a QuizScreen.
func New(opts Options) *QuizScreen {
	if opts.Mode == ModeSingle && !opts.Difficulty.Valid() {
		opts.Difficulty = qz.DifficultyMedium
	}
	s := &QuizScreen{
		opts:    opts,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if s.needsSetup() {
		s.phase = phaseSetup
		if opts.Mode == ModeFull {
			s.input = components.NewTextInput(fmt.Sprintf("%d", qz.DefaultRounds), true, 3)
		} else {
			s.input = components.NewTextInput("e.g. statistics, or random", false, 60)
		}
	} else {
		s.phase = phaseLoading
	}
	return s
}

func (s *QuizScreen) needsSetup() bool {
	if s.opts.Mode == ModeFull {
		return s.opts.Rounds < 1
	}
	return strings.TrimSpace(s.opts.Topic) == ""
}

func (s *QuizScreen) Init() tea.Cmd {
	if s.phase == phaseSetup {
		return s.input.Init()
	}
	return s.start()
}

func (s *QuizScreen) Title() string {
	if s.opts.Mode == ModeSingle {
		return "Quick Question"
	}
	return "Quiz"
}

// Close stops a running session. Rounds answered so far are kept.
func (s *QuizScreen) Close() {
	if s.bridge != nil {
		s.bridge.stop()
	}
}

// InterceptBack asks for confirmation while a session is running.
func (s *QuizScreen) InterceptBack() bool {
	return s.bridge != nil && !s.finished
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirm:
		return []layout.KeyHint{{Key: "Y", Description: "End quiz"}, {Key: "N", Description: "Keep going"}}
	case s.phase == phaseSetup:
		return []layout.KeyHint{{Key: "Enter", Description: "Start"}, {Key: "Esc", Description: "Back"}}
	case s.phase == phaseQuestion:
		return []layout.KeyHint{{Key: "1-4", Description: "Answer"}, {Key: "↑↓ Enter", Description: "Choose"}, {Key: "Esc", Description: "Quit"}}
	case s.phase == phaseFeedback:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case s.phase == phaseDone:
		return []layout.KeyHint{{Key: "Enter", Description: "Back"}, {Key: "R", Description: "Again"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Quit"}}
}

// start launches the session on the bridge.
func (s *QuizScreen) start() tea.Cmd {
	s.phase = phaseLoading
	s.status = "Preparing your quiz..."
	s.bridge = newBridge()

	c, user, opts := s.opts.Coach, s.opts.User, s.opts
	s.bridge.run(func(ctx context.Context, a qz.Answerer, h qz.Hooks) (*qz.SessionRecord, error) {
		if opts.Mode == ModeSingle {
			return c.AskSingle(ctx, user, opts.Topic, opts.Difficulty, a, h)
		}
		return c.RunQuiz(ctx, user, opts.Rounds, a, h)
	})
	return tea.Batch(s.bridge.wait(), s.spinner.Tick)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case generatingMsg:
		s.status = fmt.Sprintf("Writing a %s question on %s...", msg.Difficulty, msg.Topic)
		return s, s.bridge.wait()

	case generationFailedMsg:
		s.notices = append(s.notices, fmt.Sprintf("Couldn't generate a question on %s (%s).", msg.Err.Topic, llm.Describe(msg.Err.Err)))
		return s, s.bridge.wait()

	case roundMsg:
		r := msg.Round
		if s.phase == phaseFeedback {
			s.pending = &r
		} else {
			s.showRound(r)
		}
		return s, s.bridge.wait()

	case outcomeMsg:
		o := msg.Outcome
		s.outcome = &o
		s.choice.Reveal(o.Round.Question.CorrectAnswer)
		s.phase = phaseFeedback
		if o.Change != nil {
			s.notices = append(s.notices, changeNotice(o.Change))
		}
		return s, s.bridge.wait()

	case doneMsg:
		s.finished = true
		s.record, s.saveErr = msg.Record, msg.Err
		s.bridge.stop()
		if s.phase != phaseFeedback {
			s.phase = phaseDone
		}
		if s.opts.OnFinish != nil && s.record != nil {
			return s, s.opts.OnFinish(s.record, s.answers)
		}
		return s, nil

	case spinner.TickMsg:
		if s.phase != phaseLoading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseSetup {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirm {
		switch key {
		case "y", "Y":
			s.confirm = false
			s.Close()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.confirm = false
		}
		return s, nil
	}
	if key == "esc" {
		if s.InterceptBack() {
			s.confirm = true
			return s, nil
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch s.phase {
	case phaseSetup:
		if key == "enter" {
			s.applySetup()
			return s, s.start()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case phaseQuestion:
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		if s.choice.Submitted {
			a := s.choice.Answer()
			s.answers = append(s.answers, a)
			s.bridge.answer(a)
		}
		return s, cmd

	case phaseFeedback:
		if key != "enter" && key != "space" {
			return s, nil
		}
		s.outcome = nil
		switch {
		case s.pending != nil:
			s.showRound(*s.pending)
			s.pending = nil
		case s.finished:
			s.phase = phaseDone
		default:
			s.phase = phaseLoading
			return s, s.spinner.Tick
		}
		return s, nil

	case phaseDone:
		switch key {
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r", "R":
			// Same rounds or topic, straight into a new session.
			again := New(s.opts)
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: again} }
		}
	}
	return s, nil
}

func (s *QuizScreen) applySetup() {
	if s.opts.Mode == ModeFull {
		n, err := s.input.NumericValue()
		s.opts.Rounds = qz.NormalizeRounds(n)
		if err != nil {
			s.opts.Rounds = qz.DefaultRounds
		}
		return
	}
	s.opts.Topic = s.input.Value()
	if s.opts.Topic == "" {
		s.opts.Topic = coach.RandomTopic
	}
}

func (s *QuizScreen) showRound(r qz.Round) {
	s.round = r
	s.choice = components.NewMultiChoice(r.Question.Text, r.Question.Options)
	s.phase = phaseQuestion
}

func changeNotice(c *qz.DifficultyChange) string {
	if c.To.Weight() > c.From.Weight() {
		return fmt.Sprintf("Great job! Difficulty increased to %s.", strings.ToUpper(string(c.To)))
	}
	return fmt.Sprintf("You seem to be struggling. Difficulty lowered to %s.", strings.ToUpper(string(c.To)))
}
