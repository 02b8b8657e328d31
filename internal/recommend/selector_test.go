package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careercoach/internal/analysis"
	"github.com/abhisek/careercoach/internal/profile"
	"github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/search"
)

// fakeLookup answers by query and records every query it receives.
type fakeLookup struct {
	mu      sync.Mutex
	results map[string][]search.Candidate
	errs    map[string]error
	queries []string
}

func (f *fakeLookup) Search(_ context.Context, q string) ([]search.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if err := f.errs[q]; err != nil {
		return nil, err
	}
	return f.results[q], nil
}

func weakProfile(t *testing.T, topics ...string) *profile.MemoryStore {
	t.Helper()
	store := profile.NewMemoryStore()
	var results []quiz.QuestionResult
	for i, topic := range topics {
		// Earlier topics get fewer correct answers so they rank weaker.
		for j := 0; j < 4; j++ {
			results = append(results, quiz.QuestionResult{Topic: topic, Difficulty: quiz.DifficultyEasy, Correct: j < i})
		}
	}
	score := 0
	require.NoError(t, store.AppendQuizResult(context.Background(), "u1", &quiz.SessionRecord{
		ID: "s1", Type: quiz.SessionFull, Score: &score, Results: results,
	}))
	return store
}

func newSelector(store profile.Store, lookup search.ContentLookup) *Selector {
	return NewSelector(analysis.NewAnalyzer(store), lookup, DefaultConfig(), nil, nil)
}

func TestRecommend_NoProfileOrHistory(t *testing.T) {
	ctx := context.Background()
	store := profile.NewMemoryStore()
	s := newSelector(store, &fakeLookup{})

	res, err := s.Recommend(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, res.Resources)
	assert.NotNil(t, res.Resources)
	assert.Equal(t, SourceNone, res.Source)

	_, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
	res, err = s.Recommend(ctx, "fresh")
	require.NoError(t, err)
	assert.Empty(t, res.Resources)
}

func TestRecommend_NoWeakAreas(t *testing.T) {
	store := profile.NewMemoryStore()
	score := 30
	require.NoError(t, store.AppendQuizResult(context.Background(), "u1", &quiz.SessionRecord{
		ID: "s1", Type: quiz.SessionFull, Score: &score,
		Results: []quiz.QuestionResult{
			{Topic: "statistics", Difficulty: quiz.DifficultyEasy, Correct: true},
			{Topic: "statistics", Difficulty: quiz.DifficultyEasy, Correct: true},
			{Topic: "statistics", Difficulty: quiz.DifficultyEasy, Correct: true},
		},
	}))
	lookup := &fakeLookup{}
	res, err := newSelector(store, lookup).Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, res.Resources)
	assert.Empty(t, lookup.queries, "no lookup without weak areas")
}

func TestRecommend_LiveResultsForTwoWeakestTopics(t *testing.T) {
	store := weakProfile(t, "deep learning", "statistics", "AI ethics")
	lookup := &fakeLookup{results: map[string][]search.Candidate{
		"best online courses for deep learning": {
			{Title: "fast.ai Practical Deep Learning", URL: "https://course.fast.ai", Snippet: "Free course."},
			{Title: "Relative link", URL: "/search?q=more"},
			{Title: "", URL: "https://example.com/untitled"},
		},
		"best online courses for statistics": {
			{Title: "Think Stats", URL: "https://greenteapress.com/thinkstats/"},
		},
	}}

	res, err := newSelector(store, lookup).Recommend(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"best online courses for deep learning", "best online courses for statistics"}, lookup.queries)
	assert.Equal(t, SourceLive, res.Source)
	require.Len(t, res.Resources, 2)
	assert.Equal(t, Resource{
		Title:           "fast.ai Practical Deep Learning",
		URL:             "https://course.fast.ai",
		Description:     "Free course.",
		TopicsCovered:   []string{"deep learning"},
		DifficultyLevel: "mixed",
	}, res.Resources[0])
	assert.Equal(t, "No description available.", res.Resources[1].Description)
	assert.Equal(t, []string{"statistics"}, res.Resources[1].TopicsCovered)
}

func TestRecommend_OneLookupFailureDoesNotAbortTheOther(t *testing.T) {
	store := weakProfile(t, "deep learning", "statistics")
	lookup := &fakeLookup{
		errs: map[string]error{"best online courses for deep learning": errors.New("429 Too Many Requests")},
		results: map[string][]search.Candidate{
			"best online courses for statistics": {{Title: "Think Stats", URL: "https://greenteapress.com/thinkstats/"}},
		},
	}

	res, err := newSelector(store, lookup).Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceLive, res.Source)
	require.Len(t, res.Resources, 1)
	assert.Equal(t, "Think Stats", res.Resources[0].Title)
}

func TestRecommend_FallsBackToMatchingCatalogEntries(t *testing.T) {
	store := weakProfile(t, "statistics", "deep learning", "AI ethics")
	lookup := &fakeLookup{errs: map[string]error{
		"best online courses for statistics":    errors.New("blocked"),
		"best online courses for deep learning": errors.New("blocked"),
	}}

	res, err := newSelector(store, lookup).Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceCatalogFiltered, res.Source)

	var titles []string
	for _, r := range res.Resources {
		titles = append(titles, r.Title)
	}
	// All weak topics count for the catalog, not just the two looked up.
	assert.Equal(t, []string{
		"Deep Learning Specialization",
		"Statistics for Data Science",
		"AI Ethics: Global Perspectives",
	}, titles)
}

func TestRecommend_FallsBackToWholeCatalog(t *testing.T) {
	store := weakProfile(t, "prompt engineering")
	res, err := newSelector(store, &fakeLookup{}).Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceCatalogAll, res.Source)
	assert.Equal(t, DefaultCatalog, res.Resources)

	res.Resources[0].Title = "mutated"
	assert.Equal(t, "Introduction to Data Science", DefaultCatalog[0].Title, "result must not alias the catalog")
}

func TestRecommend_NilLookupUsesCatalog(t *testing.T) {
	store := weakProfile(t, "machine learning")
	res, err := newSelector(store, nil).Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceCatalogFiltered, res.Source)
	require.Len(t, res.Resources, 1)
	assert.Equal(t, "Machine Learning Crash Course", res.Resources[0].Title)
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, string) (*analysis.Report, error) {
	return nil, errors.New("database is locked")
}

func TestRecommend_StorageErrorIsReturned(t *testing.T) {
	s := NewSelector(failingAnalyzer{}, nil, DefaultConfig(), nil, nil)
	_, err := s.Recommend(context.Background(), "u1")
	assert.Error(t, err)
}
