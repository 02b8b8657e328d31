package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/careercoach/internal/analysis"
	"github.com/abhisek/careercoach/internal/app"
	"github.com/abhisek/careercoach/internal/chat"
	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/config"
	"github.com/abhisek/careercoach/internal/llm"
	"github.com/abhisek/careercoach/internal/logging"
	"github.com/abhisek/careercoach/internal/metrics"
	"github.com/abhisek/careercoach/internal/profile"
	"github.com/abhisek/careercoach/internal/questiongen"
	"github.com/abhisek/careercoach/internal/recommend"
	"github.com/abhisek/careercoach/internal/screen"
	"github.com/abhisek/careercoach/internal/search"
	"github.com/abhisek/careercoach/internal/store"
)

type envOptions struct {
	// TUI keeps console logging off the alternate screen.
	TUI bool

	// LLM builds a provider, question generator and chat service.
	LLM bool

	// Metrics creates a Prometheus registry for the HTTP server.
	Metrics bool
}

// env is the wired application for one command invocation.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	events   store.EventRepo
	profiles profile.Store
	chats    profile.ChatStore
	provider llm.Provider
	lookup   search.ContentLookup
	metrics  *metrics.Metrics
	coach    *coach.Coach
	chat     *chat.Service

	closers []func()
}

func newEnv(cmd *cobra.Command, opts envOptions) (_ *env, err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Console: !opts.TUI,
	})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	e := &env{cfg: cfg, logger: logger}
	e.closers = append(e.closers, func() { _ = logger.Sync() })
	defer func() {
		if err != nil {
			e.Close()
		}
	}()

	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		mem := profile.NewMemoryStore()
		e.profiles, e.chats = mem, mem
		logger.Info("using in-memory profile store")
	} else {
		if err := e.openStore(); err != nil {
			return nil, err
		}
	}

	if opts.Metrics {
		e.metrics = metrics.New()
	}

	e.lookup = e.buildLookup()

	var source *questiongen.LLMGenerator
	if opts.LLM {
		llmCfg := cfg.LLM.Build()
		e.provider, err = llm.NewProvider(ctx, llmCfg, e.events, logger)
		if err != nil {
			return nil, fmt.Errorf("configure LLM provider: %w", err)
		}
		logger.Info("LLM provider ready", zap.String("provider", llmCfg.Provider), zap.String("model", e.provider.ModelID()))
		source = questiongen.New(e.provider, questiongen.DefaultConfig())
		e.chat = chat.NewService(e.provider, e.chats, chat.DefaultConfig(), logger)
	}

	selector := recommend.NewSelector(analysis.NewAnalyzer(e.profiles), e.lookup, cfg.Recommend.Selector(), logger, e.metrics)
	coachOpts := coach.Options{
		Profiles: e.profiles,
		Selector: selector,
		Config: coach.Config{
			Rounds:                 cfg.Quiz.Rounds,
			Topics:                 cfg.Quiz.Topics,
			MaxConsecutiveFailures: cfg.Quiz.MaxConsecutiveFailures,
		},
		Logger:  logger,
		Metrics: e.metrics,
	}
	if source != nil {
		coachOpts.Source = source
	}
	e.coach = coach.New(coachOpts)
	return e, nil
}

func (e *env) openStore() error {
	path := e.cfg.DB.Path
	if path == "" {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
	} else if err := store.EnsureDir(path); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	e.store = st
	e.events = st.EventRepo()
	e.profiles, e.chats = st.Profiles(), st.Profiles()
	e.closers = append(e.closers, func() { _ = st.Close() })
	e.logger.Debug("database opened", zap.String("path", path))
	return nil
}

// buildLookup returns the web lookup for recommendations and events, with a
// Redis cache in front when one is configured. Nil disables live lookups.
func (e *env) buildLookup() search.ContentLookup {
	if e.cfg.Recommend.Disabled {
		return nil
	}
	var lookup search.ContentLookup = search.NewHTMLLookup(search.WithSearchURL(e.cfg.Recommend.SearchURL))

	if addr := e.cfg.Redis.Addr; addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: e.cfg.Redis.Password,
			DB:       e.cfg.Redis.DB,
		})
		e.closers = append(e.closers, func() { _ = rdb.Close() })
		lookup = search.NewCachedLookup(lookup, rdb, e.cfg.Recommend.CacheTTL, e.logger)
		e.logger.Info("lookup cache enabled", zap.String("redis", addr))
	}
	return lookup
}

// user returns the configured user id.
func (e *env) user() string {
	return e.cfg.User
}

func (e *env) appOptions(start screen.Screen) app.Options {
	return app.Options{
		Coach:  e.coach,
		Chat:   e.chat,
		User:   e.user(),
		Logger: e.logger,
		Start:  start,
	}
}

// Close releases everything newEnv opened, newest first.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// warn prints a user-facing notice on stderr.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
