package quiz

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	qz "github.com/abhisek/careercoach/internal/quiz"
)

// bridge runs a quiz session on its own goroutine and exchanges rounds and
// answers with the screen over channels.
type bridge struct {
	ctx     context.Context
	cancel  context.CancelFunc
	events  chan tea.Msg
	answers chan string
	done    chan struct{}
}

// stopGrace bounds how long stop waits for an abandoned session to be saved.
const stopGrace = 2 * time.Second

func newBridge() *bridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &bridge{
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan tea.Msg, 8),
		answers: make(chan string, 1),
		done:    make(chan struct{}),
	}
}

func (b *bridge) emit(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.ctx.Done():
	}
}

// Answer implements quiz.Answerer by handing the round to the screen and
// waiting for its answer.
func (b *bridge) Answer(ctx context.Context, round qz.Round) (string, error) {
	b.emit(roundMsg{Round: round})
	select {
	case a := <-b.answers:
		return a, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *bridge) hooks() qz.Hooks {
	return qz.Hooks{
		OnGenerating: func(topic string, d qz.Difficulty) {
			b.emit(generatingMsg{Topic: topic, Difficulty: d})
		},
		OnGenerationFailure: func(err *qz.GenerationError, consecutive int) {
			b.emit(generationFailedMsg{Err: err, Consecutive: consecutive})
		},
		OnRound: func(o qz.RoundOutcome) {
			b.emit(outcomeMsg{Outcome: o})
		},
	}
}

// run starts play on a goroutine. play must return once ctx is done.
func (b *bridge) run(play func(ctx context.Context, answerer qz.Answerer, hooks qz.Hooks) (*qz.SessionRecord, error)) {
	go func() {
		defer close(b.done)
		rec, err := play(b.ctx, b, b.hooks())
		b.emit(doneMsg{Record: rec, Err: err})
	}()
}

// wait delivers the next session event. It yields nil after stop.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.ctx.Done():
			return nil
		}
	}
}

func (b *bridge) answer(a string) {
	select {
	case b.answers <- a:
	default:
	}
}

// stop cancels the session and waits briefly for it to wind down.
func (b *bridge) stop() {
	b.cancel()
	select {
	case <-b.done:
	case <-time.After(stopGrace):
	}
}
