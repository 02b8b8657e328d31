package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/careercoach/internal/analysis"
	"github.com/abhisek/careercoach/internal/metrics"
	"github.com/abhisek/careercoach/internal/search"
)

const (
	DefaultMaxTopics     = 2
	DefaultQueryFormat   = "best online courses for %s"
	DefaultLookupTimeout = 15 * time.Second

	noDescription = "No description available."
	liveLevel     = "mixed"
)

// Analyzer produces a user's performance report.
type Analyzer interface {
	Analyze(ctx context.Context, userID string) (*analysis.Report, error)
}

// Config controls a Selector.
type Config struct {
	// MaxTopics is how many of the weakest topics get a live lookup.
	MaxTopics int

	// QueryFormat receives the topic as its only argument.
	QueryFormat string

	// LookupTimeout bounds each lookup call.
	LookupTimeout time.Duration

	// Catalog is the static fallback. Nil means DefaultCatalog.
	Catalog []Resource
}

// DefaultConfig returns the standard selector settings.
func DefaultConfig() Config {
	return Config{
		MaxTopics:     DefaultMaxTopics,
		QueryFormat:   DefaultQueryFormat,
		LookupTimeout: DefaultLookupTimeout,
	}
}

// Result is an ordered recommendation list and the tier that produced it.
type Result struct {
	Resources []Resource `json:"resources"`
	Source    Source     `json:"source"`
	WeakAreas []string   `json:"weak_areas"`
}

// Selector turns weak areas into resources: live lookup results first, then
// catalog entries matching the weak topics, then the whole catalog.
type Selector struct {
	analyzer Analyzer
	lookup   search.ContentLookup
	config   Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewSelector creates a Selector. lookup may be nil to use the catalog
// only; logger and m may be nil.
func NewSelector(a Analyzer, lookup search.ContentLookup, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Selector {
	if cfg.MaxTopics < 1 {
		cfg.MaxTopics = DefaultMaxTopics
	}
	if cfg.QueryFormat == "" {
		cfg.QueryFormat = DefaultQueryFormat
	}
	if cfg.Catalog == nil {
		cfg.Catalog = DefaultCatalog
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{analyzer: a, lookup: lookup, config: cfg, logger: logger, metrics: m}
}

// Recommend returns resources for userID. A user without a profile, without
// history or without weak areas gets an empty result, not an error. Only
// storage failures are returned as errors.
func (s *Selector) Recommend(ctx context.Context, userID string) (*Result, error) {
	report, err := s.analyzer.Analyze(ctx, userID)
	switch {
	case errors.Is(err, analysis.ErrNotFound), errors.Is(err, analysis.ErrNoHistory):
		s.metrics.Recommended(string(SourceNone))
		return &Result{Resources: []Resource{}, Source: SourceNone, WeakAreas: []string{}}, nil
	case err != nil:
		return nil, fmt.Errorf("analyze %s: %w", userID, err)
	}

	return s.ForWeakAreas(ctx, report.WeakestAreas()), nil
}

// ForWeakAreas runs the three-tier selection for an ordered weak-topic list.
func (s *Selector) ForWeakAreas(ctx context.Context, weak []string) *Result {
	res := &Result{Resources: []Resource{}, Source: SourceNone, WeakAreas: weak}
	if len(weak) == 0 {
		s.metrics.Recommended(string(SourceNone))
		return res
	}

	topics := weak
	if len(topics) > s.config.MaxTopics {
		topics = topics[:s.config.MaxTopics]
	}
	for _, topic := range topics {
		res.Resources = append(res.Resources, s.live(ctx, topic)...)
	}

	switch {
	case len(res.Resources) > 0:
		res.Source = SourceLive
	default:
		if matched := s.catalogFor(weak); len(matched) > 0 {
			res.Resources, res.Source = matched, SourceCatalogFiltered
		} else {
			res.Resources, res.Source = slices.Clone(s.config.Catalog), SourceCatalogAll
		}
	}

	s.logger.Debug("recommendations selected",
		zap.Strings("weak_areas", weak),
		zap.String("source", string(res.Source)),
		zap.Int("count", len(res.Resources)),
	)
	s.metrics.Recommended(string(res.Source))
	return res
}

// live runs one lookup for topic. Failures are logged and yield nothing.
func (s *Selector) live(ctx context.Context, topic string) []Resource {
	if s.lookup == nil {
		return nil
	}
	if s.config.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.LookupTimeout)
		defer cancel()
	}

	query := fmt.Sprintf(s.config.QueryFormat, topic)
	candidates, err := s.lookup.Search(ctx, query)
	if err != nil {
		s.logger.Info("content lookup failed", zap.String("topic", topic), zap.Error(err))
		s.metrics.Lookup("error")
		return nil
	}

	var out []Resource
	for _, c := range candidates {
		title := strings.TrimSpace(c.Title)
		if title == "" || !isAbsoluteHTTP(c.URL) {
			continue
		}
		desc := strings.TrimSpace(c.Snippet)
		if desc == "" {
			desc = noDescription
		}
		out = append(out, Resource{
			Title:           title,
			URL:             c.URL,
			Description:     desc,
			TopicsCovered:   []string{topic},
			DifficultyLevel: liveLevel,
		})
	}
	if len(out) == 0 {
		s.metrics.Lookup("empty")
	} else {
		s.metrics.Lookup("ok")
	}
	return out
}

func (s *Selector) catalogFor(weak []string) []Resource {
	var out []Resource
	for _, r := range s.config.Catalog {
		for _, t := range r.TopicsCovered {
			if slices.Contains(weak, t) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
