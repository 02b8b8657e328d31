// Package config loads careercoach settings from defaults, an optional YAML
// file, a .env file, CAREERCOACH_* environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/careercoach/internal/llm"
	"github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/recommend"
	"github.com/abhisek/careercoach/internal/search"
)

const envPrefix = "CAREERCOACH"

// Config is the full application configuration.
type Config struct {
	User      string          `mapstructure:"user"`
	DB        DBConfig        `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type DBConfig struct {
	// Path is the SQLite file. Empty means the XDG default.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
	File   string `mapstructure:"file"`   // rotated JSON log, optional
}

type LLMConfig struct {
	// Provider is ollama, anthropic, openai, gemini, openrouter or mock.
	// Empty probes the standard API key variables.
	Provider string `mapstructure:"provider"`
	// Model overrides the selected provider's model when set.
	Model      string          `mapstructure:"model"`
	Timeout    time.Duration   `mapstructure:"timeout"`
	Ollama     ProviderSection `mapstructure:"ollama"`
	Anthropic  ProviderSection `mapstructure:"anthropic"`
	OpenAI     ProviderSection `mapstructure:"openai"`
	Gemini     ProviderSection `mapstructure:"gemini"`
	OpenRouter ProviderSection `mapstructure:"openrouter"`
	Retry      RetrySection    `mapstructure:"retry"`
}

type ProviderSection struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type RetrySection struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

type QuizConfig struct {
	Rounds                 int      `mapstructure:"rounds"`
	Topics                 []string `mapstructure:"topics"`
	MaxConsecutiveFailures int      `mapstructure:"max_consecutive_failures"`
}

type RecommendConfig struct {
	MaxTopics     int           `mapstructure:"max_topics"`
	QueryFormat   string        `mapstructure:"query_format"`
	SearchURL     string        `mapstructure:"search_url"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
	// CacheTTL applies when Redis is configured.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// Disabled turns live lookups off; only the catalog is used.
	Disabled bool `mapstructure:"disabled"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	JobsFile    string   `mapstructure:"jobs_file"`
	EventsQuery string   `mapstructure:"events_query"`
}

type RedisConfig struct {
	// Addr enables the lookup cache when set, e.g. "localhost:6379".
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"db":        "db.path",
	"user":      "user",
	"log-level": "log.level",
	"provider":  "llm.provider",
	"model":     "llm.model",
	"addr":      "server.addr",
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("user", "local")
	v.SetDefault("db.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.ollama.model", d.Ollama.Model)
	v.SetDefault("llm.ollama.base_url", d.Ollama.BaseURL)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", d.OpenRouter.BaseURL)
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)

	v.SetDefault("quiz.rounds", quiz.DefaultRounds)
	v.SetDefault("quiz.topics", quiz.DefaultTopics)
	v.SetDefault("quiz.max_consecutive_failures", quiz.DefaultMaxConsecutiveFailures)

	v.SetDefault("recommend.max_topics", recommend.DefaultMaxTopics)
	v.SetDefault("recommend.query_format", recommend.DefaultQueryFormat)
	v.SetDefault("recommend.search_url", search.DefaultSearchURL)
	v.SetDefault("recommend.lookup_timeout", recommend.DefaultLookupTimeout)
	v.SetDefault("recommend.cache_ttl", 6*time.Hour)
	v.SetDefault("recommend.disabled", false)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("server.jobs_file", "jobs_and_events.json")
	v.SetDefault("server.events_query", "online data science events")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load builds the configuration. configFile may be empty to search the
// standard locations; flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("db.path", envPrefix+"_DB_PATH"); err != nil {
		return nil, fmt.Errorf("bind db env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("careercoach")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, dir := range configDirs() {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path, ok := legacyDBPath(flags); ok {
		v.Set("db.path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// legacyDBPath reports CAREERCOACH_DB when it should decide the database
// path: CAREERCOACH_DB_PATH and --db both take precedence over it.
func legacyDBPath(flags *pflag.FlagSet) (string, bool) {
	path := os.Getenv(envPrefix + "_DB")
	if path == "" || os.Getenv(envPrefix+"_DB_PATH") != "" {
		return "", false
	}
	if flags != nil {
		if f := flags.Lookup("db"); f != nil && f.Changed {
			return "", false
		}
	}
	return path, true
}

func configDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "careercoach"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "careercoach"))
	}
	return dirs
}

// Build converts the LLM section into an llm.Config. With no provider
// configured the standard API key variables decide, falling back to Ollama.
func (c LLMConfig) Build() llm.Config {
	out := llm.Config{
		Provider:   c.Provider,
		Ollama:     llm.OllamaConfig{Model: c.Ollama.Model, BaseURL: c.Ollama.BaseURL},
		Anthropic:  llm.AnthropicConfig{APIKey: c.Anthropic.APIKey, Model: c.Anthropic.Model},
		OpenAI:     llm.OpenAIConfig{APIKey: c.OpenAI.APIKey, Model: c.OpenAI.Model, BaseURL: c.OpenAI.BaseURL},
		Gemini:     llm.GeminiConfig{APIKey: c.Gemini.APIKey, Model: c.Gemini.Model},
		OpenRouter: llm.OpenRouterConfig{APIKey: c.OpenRouter.APIKey, Model: c.OpenRouter.Model, BaseURL: c.OpenRouter.BaseURL},
		Retry: llm.RetryConfig{
			MaxAttempts: c.Retry.MaxAttempts,
			InitialWait: c.Retry.InitialWait,
			MaxWait:     c.Retry.MaxWait,
			Multiplier:  c.Retry.Multiplier,
		},
		Timeout: c.Timeout,
	}
	if out.Provider == "" {
		out = llm.DiscoverConfig(out)
	}
	if c.Model != "" {
		switch out.Provider {
		case "ollama":
			out.Ollama.Model = c.Model
		case "anthropic":
			out.Anthropic.Model = c.Model
		case "openai":
			out.OpenAI.Model = c.Model
		case "gemini":
			out.Gemini.Model = c.Model
		case "openrouter":
			out.OpenRouter.Model = c.Model
		}
	}
	return out
}

// Selector converts the recommend section into selector settings.
func (c RecommendConfig) Selector() recommend.Config {
	cfg := recommend.DefaultConfig()
	if c.MaxTopics > 0 {
		cfg.MaxTopics = c.MaxTopics
	}
	if c.QueryFormat != "" {
		cfg.QueryFormat = c.QueryFormat
	}
	if c.LookupTimeout > 0 {
		cfg.LookupTimeout = c.LookupTimeout
	}
	return cfg
}
