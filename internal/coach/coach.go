// Package coach wires the quiz runner, profile storage, analysis and
// recommendations into the operations the CLI, TUI and HTTP API expose.
package coach

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/careercoach/internal/analysis"
	"github.com/abhisek/careercoach/internal/metrics"
	"github.com/abhisek/careercoach/internal/profile"
	"github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/recommend"
)

// RandomTopic asks Question to pick a topic from the configured set.
const RandomTopic = "random"

// Config controls quiz defaults.
type Config struct {
	// Rounds is used when a caller passes a non-positive round count.
	Rounds int

	// Topics is the round-robin rotation for full quizzes.
	Topics []string

	// MaxConsecutiveFailures ends a session early.
	MaxConsecutiveFailures int
}

// DefaultConfig returns the standard quiz settings.
func DefaultConfig() Config {
	return Config{
		Rounds:                 quiz.DefaultRounds,
		Topics:                 quiz.DefaultTopics,
		MaxConsecutiveFailures: quiz.DefaultMaxConsecutiveFailures,
	}
}

// Options holds the collaborators of a Coach. Logger and Metrics may be nil.
type Options struct {
	Source   quiz.QuestionSource
	Profiles profile.Store
	Selector *recommend.Selector
	Config   Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// Coach runs quizzes for users and reports on their history.
type Coach struct {
	source   quiz.QuestionSource
	profiles profile.Store
	analyzer *analysis.Analyzer
	selector *recommend.Selector
	config   Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New creates a Coach. A nil Selector gets a catalog-only selector.
func New(opts Options) *Coach {
	cfg := opts.Config
	if cfg.Rounds < 1 {
		cfg.Rounds = quiz.DefaultRounds
	}
	if len(cfg.Topics) == 0 {
		cfg.Topics = quiz.DefaultTopics
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	analyzer := analysis.NewAnalyzer(opts.Profiles)
	selector := opts.Selector
	if selector == nil {
		selector = recommend.NewSelector(analyzer, nil, recommend.DefaultConfig(), logger, opts.Metrics)
	}
	return &Coach{
		source:   opts.Source,
		profiles: opts.Profiles,
		analyzer: analyzer,
		selector: selector,
		config:   cfg,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// Analyzer returns the analyzer backing Analyze, for building selectors.
func (c *Coach) Analyzer() *analysis.Analyzer {
	return c.analyzer
}

// Topics returns the configured topic rotation.
func (c *Coach) Topics() []string {
	return c.config.Topics
}

// RunQuiz plays a full session and appends it to the user's history. The
// record is returned even when saving it fails.
func (c *Coach) RunQuiz(ctx context.Context, userID string, rounds int, answerer quiz.Answerer, hooks quiz.Hooks) (*quiz.SessionRecord, error) {
	if rounds < 1 {
		rounds = c.config.Rounds
	}
	runner := quiz.NewRunner(c.source, c.runnerConfig(), c.instrument(hooks))
	rec := runner.Run(ctx, rounds, quiz.RoundRobin(c.config.Topics), answerer)
	return rec, c.save(ctx, userID, rec)
}

// AskSingle plays one question on topic and appends the result.
func (c *Coach) AskSingle(ctx context.Context, userID, topic string, difficulty quiz.Difficulty, answerer quiz.Answerer, hooks quiz.Hooks) (*quiz.SessionRecord, error) {
	runner := quiz.NewRunner(c.source, c.runnerConfig(), c.instrument(hooks))
	rec := runner.RunSingle(ctx, c.resolveTopic(topic), difficulty, answerer)
	return rec, c.save(ctx, userID, rec)
}

// Question generates one question without recording anything. topic may be
// RandomTopic or empty to pick from the configured set.
func (c *Coach) Question(ctx context.Context, topic string, difficulty quiz.Difficulty) (*quiz.Question, error) {
	topic = c.resolveTopic(topic)
	q, err := c.source.Generate(ctx, topic, difficulty)
	if err != nil {
		c.metrics.GenerationFailed(difficulty)
		return nil, &quiz.GenerationError{Topic: topic, Difficulty: difficulty, Err: err}
	}
	return q, nil
}

// SubmitResult validates and appends a session played elsewhere, such as in
// a web client.
func (c *Coach) SubmitResult(ctx context.Context, userID string, rec *quiz.SessionRecord) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := c.profiles.AppendQuizResult(ctx, userID, rec); err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	c.metrics.ObserveSession(rec)
	return nil
}

// Analyze returns the user's performance report.
func (c *Coach) Analyze(ctx context.Context, userID string) (*analysis.Report, error) {
	return c.analyzer.Analyze(ctx, userID)
}

// Recommend returns resources for the user's weak areas.
func (c *Coach) Recommend(ctx context.Context, userID string) (*recommend.Result, error) {
	return c.selector.Recommend(ctx, userID)
}

// History returns the user's sessions, oldest first. Unknown users have
// none.
func (c *Coach) History(ctx context.Context, userID string) ([]quiz.SessionRecord, error) {
	p, err := c.profiles.Find(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.QuizHistory, nil
}

func (c *Coach) save(ctx context.Context, userID string, rec *quiz.SessionRecord) error {
	// The session is over; a cancelled caller context must not drop it.
	ctx = context.WithoutCancel(ctx)
	if err := c.profiles.AppendQuizResult(ctx, userID, rec); err != nil {
		c.logger.Error("failed to save quiz session", zap.String("user", userID), zap.String("session", rec.ID), zap.Error(err))
		return fmt.Errorf("save quiz session: %w", err)
	}
	c.metrics.ObserveSession(rec)
	c.logger.Info("quiz session saved",
		zap.String("user", userID),
		zap.String("session", rec.ID),
		zap.String("type", string(rec.Type)),
		zap.Int("answered", len(rec.Results)),
		zap.Int("correct", rec.CorrectCount()),
		zap.Int("generation_failures", rec.GenerationFailures),
		zap.String("end_reason", string(rec.EndReason)),
	)
	return nil
}

func (c *Coach) runnerConfig() quiz.Config {
	return quiz.Config{MaxConsecutiveFailures: c.config.MaxConsecutiveFailures}
}

// instrument adds logging and metrics to the caller's hooks.
func (c *Coach) instrument(h quiz.Hooks) quiz.Hooks {
	onFailure := h.OnGenerationFailure
	h.OnGenerationFailure = func(err *quiz.GenerationError, consecutive int) {
		c.metrics.GenerationFailed(err.Difficulty)
		c.logger.Warn("question generation failed",
			zap.String("topic", err.Topic),
			zap.String("difficulty", string(err.Difficulty)),
			zap.Int("consecutive", consecutive),
			zap.Error(err.Err),
		)
		if onFailure != nil {
			onFailure(err, consecutive)
		}
	}
	return h
}

func (c *Coach) resolveTopic(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" || strings.EqualFold(topic, RandomTopic) {
		return c.config.Topics[rand.IntN(len(c.config.Topics))]
	}
	return topic
}
