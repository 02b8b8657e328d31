package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultRounds is used when the requested round count is missing or invalid.
const DefaultRounds = 10

// QuestionSource produces one question for a topic and difficulty.
// Implementations may fail with malformed or absent output.
type QuestionSource interface {
	Generate(ctx context.Context, topic string, difficulty Difficulty) (*Question, error)
}

// Answerer collects the participant's answer for a round. Returning an error
// aborts the session; the rounds played so far are kept.
type Answerer interface {
	Answer(ctx context.Context, round Round) (string, error)
}

// AnswererFunc adapts a function to Answerer.
type AnswererFunc func(ctx context.Context, round Round) (string, error)

func (f AnswererFunc) Answer(ctx context.Context, round Round) (string, error) {
	return f(ctx, round)
}

// Round is one question presented to the participant.
type Round struct {
	Number     int // 1-based
	Total      int
	Question   *Question
	Difficulty Difficulty
}

// RoundOutcome is reported after every answered round.
type RoundOutcome struct {
	Round   Round
	Answer  string
	Valid   bool
	Correct bool
	Points  int
	Score   int
	Change  *DifficultyChange
}

// GenerationError wraps a question-source failure for one attempt.
type GenerationError struct {
	Topic      string
	Difficulty Difficulty
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s question on %q: %v", e.Difficulty, e.Topic, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Hooks are optional callbacks fired synchronously during a run.
type Hooks struct {
	// OnGenerating fires before each question-source call.
	OnGenerating func(topic string, difficulty Difficulty)

	// OnGenerationFailure fires for every failed question-source call.
	OnGenerationFailure func(err *GenerationError, consecutive int)

	// OnRound fires after each answered round.
	OnRound func(outcome RoundOutcome)
}

// Config controls a Runner.
type Config struct {
	// MaxConsecutiveFailures ends the session early. Default: 3.
	MaxConsecutiveFailures int

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Runner drives quiz sessions against a QuestionSource. It performs no I/O of
// its own; the caller persists the returned record.
type Runner struct {
	source QuestionSource
	config Config
	hooks  Hooks
}

// NewRunner creates a Runner.
func NewRunner(source QuestionSource, cfg Config, hooks Hooks) *Runner {
	if cfg.MaxConsecutiveFailures < 1 {
		cfg.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Runner{source: source, config: cfg, hooks: hooks}
}

// NormalizeRounds maps missing or invalid round counts to DefaultRounds.
func NormalizeRounds(n int) int {
	if n < 1 {
		return DefaultRounds
	}
	return n
}

// Run plays a multi-round session. Difficulty adapts across rounds through a
// Controller starting at easy. A failed generation does not use up a round
// slot; the slot is retried until MaxConsecutiveFailures failures in a row
// end the session with the partial results.
func (r *Runner) Run(ctx context.Context, rounds int, topics TopicSelector, answerer Answerer) *SessionRecord {
	rounds = NormalizeRounds(rounds)
	if topics == nil {
		topics = RoundRobin(DefaultTopics)
	}

	score := 0
	rec := r.newRecord(SessionFull)
	rec.Score = &score

	ctrl := NewController()
	budget := newFailureBudget(r.config.MaxConsecutiveFailures)

	for slot := 0; slot < rounds; {
		topic := topics.Topic(slot)
		difficulty := ctrl.Current()

		q, err := r.generate(ctx, topic, difficulty)
		if err != nil {
			if ctx.Err() != nil {
				rec.EndReason = EndAborted
				break
			}
			exhausted := budget.fail()
			rec.GenerationFailures = budget.total
			if r.hooks.OnGenerationFailure != nil {
				r.hooks.OnGenerationFailure(err, budget.consecutive)
			}
			if exhausted {
				rec.EndReason = EndGenerationFailures
				break
			}
			continue
		}
		budget.succeed()

		round := Round{Number: slot + 1, Total: rounds, Question: q, Difficulty: difficulty}
		answer, aerr := answerer.Answer(ctx, round)
		if aerr != nil {
			rec.EndReason = EndAborted
			break
		}

		outcome := resolveAnswer(round, answer)
		switch {
		case !outcome.Valid:
			outcome.Change = ctrl.OnInvalidInput()
		case outcome.Correct:
			outcome.Change = ctrl.OnCorrect()
		default:
			outcome.Change = ctrl.OnWrong()
		}
		score += outcome.Points
		outcome.Score = score

		rec.Results = append(rec.Results, QuestionResult{
			Topic:      topic,
			Difficulty: difficulty,
			Correct:    outcome.Correct,
		})
		if r.hooks.OnRound != nil {
			r.hooks.OnRound(outcome)
		}
		slot++
	}

	if rec.EndReason == "" {
		rec.EndReason = EndCompleted
	}
	return rec
}

// RunSingle asks exactly one question at a fixed topic and difficulty. The
// same correctness rules apply but there is no difficulty adaptation, and the
// record carries no score. The persisted difficulty is the one the question
// was generated at.
func (r *Runner) RunSingle(ctx context.Context, topic string, difficulty Difficulty, answerer Answerer) *SessionRecord {
	if !difficulty.Valid() {
		difficulty = DifficultyMedium
	}
	rec := r.newRecord(SessionSingle)
	budget := newFailureBudget(r.config.MaxConsecutiveFailures)

	for {
		q, err := r.generate(ctx, topic, difficulty)
		if err != nil {
			if ctx.Err() != nil {
				rec.EndReason = EndAborted
				return rec
			}
			exhausted := budget.fail()
			rec.GenerationFailures = budget.total
			if r.hooks.OnGenerationFailure != nil {
				r.hooks.OnGenerationFailure(err, budget.consecutive)
			}
			if exhausted {
				rec.EndReason = EndGenerationFailures
				return rec
			}
			continue
		}

		round := Round{Number: 1, Total: 1, Question: q, Difficulty: difficulty}
		answer, aerr := answerer.Answer(ctx, round)
		if aerr != nil {
			rec.EndReason = EndAborted
			return rec
		}

		outcome := resolveAnswer(round, answer)
		outcome.Score = outcome.Points
		rec.Results = append(rec.Results, QuestionResult{
			Topic:      topic,
			Difficulty: difficulty,
			Correct:    outcome.Correct,
		})
		if r.hooks.OnRound != nil {
			r.hooks.OnRound(outcome)
		}
		rec.EndReason = EndCompleted
		return rec
	}
}

func (r *Runner) newRecord(typ SessionType) *SessionRecord {
	return &SessionRecord{
		ID:        r.config.NewID(),
		Timestamp: r.config.Now().UTC(),
		Type:      typ,
		Results:   []QuestionResult{},
	}
}

func (r *Runner) generate(ctx context.Context, topic string, difficulty Difficulty) (*Question, *GenerationError) {
	if r.hooks.OnGenerating != nil {
		r.hooks.OnGenerating(topic, difficulty)
	}
	q, err := r.source.Generate(ctx, topic, difficulty)
	if err == nil && q == nil {
		err = errors.New("question source returned no question")
	}
	if err != nil {
		return nil, &GenerationError{Topic: topic, Difficulty: difficulty, Err: err}
	}
	if q.Topic == "" {
		q.Topic = topic
	}
	if q.Difficulty == "" {
		q.Difficulty = difficulty
	}
	return q, nil
}

// resolveAnswer resolves one answer against the round's question. Points use the
// difficulty the question was asked at.
func resolveAnswer(round Round, answer string) RoundOutcome {
	out := RoundOutcome{Round: round, Answer: answer}
	choice, ok := ParseAnswer(answer)
	if !ok {
		return out
	}
	out.Valid = true
	out.Answer = choice
	if choice == round.Question.CorrectAnswer {
		out.Correct = true
		out.Points = round.Difficulty.Points()
	}
	return out
}
