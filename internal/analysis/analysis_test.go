package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careercoach/internal/profile"
	"github.com/abhisek/careercoach/internal/quiz"
)

func result(topic string, d quiz.Difficulty, correct bool) quiz.QuestionResult {
	return quiz.QuestionResult{Topic: topic, Difficulty: d, Correct: correct}
}

func repeat(r quiz.QuestionResult, n int) []quiz.QuestionResult {
	out := make([]quiz.QuestionResult, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func session(results ...quiz.QuestionResult) quiz.SessionRecord {
	score := 0
	return quiz.SessionRecord{ID: "s", Type: quiz.SessionFull, Score: &score, Results: results}
}

func TestAggregate_StatsAboveThresholdIsNotWeak(t *testing.T) {
	results := append(repeat(result("stats", quiz.DifficultyEasy, true), 2), result("stats", quiz.DifficultyEasy, false))
	r := Aggregate([]quiz.SessionRecord{session(results...)})

	require.Len(t, r.Topics, 1)
	assert.InDelta(t, 66.7, r.Topics[0].Overall.Accuracy(), 0.05)
	assert.Empty(t, r.WeakestAreas())
	assert.Equal(t, MessageNoWeakness, r.Message)
	assert.Equal(t, "66.7% overall (2/3)", r.Topics[0].Summary())
}

func TestAggregate_AllWrongIsWeak(t *testing.T) {
	r := Aggregate([]quiz.SessionRecord{session(repeat(result("ml", quiz.DifficultyMedium, false), 3)...)})

	assert.Equal(t, []string{"ml"}, r.WeakestAreas())
	assert.Equal(t, MessageWeakAreas, r.Message)
	assert.Equal(t, 0.0, r.WeakAreas[0].Accuracy)
}

func TestAggregate_MinimumSample(t *testing.T) {
	r := Aggregate([]quiz.SessionRecord{session(repeat(result("ml", quiz.DifficultyEasy, false), 2)...)})
	assert.Empty(t, r.WeakestAreas(), "two answers are below the minimum sample")
}

func TestAggregate_RanksWorstFirstAcrossSessions(t *testing.T) {
	history := []quiz.SessionRecord{
		session(
			result("statistics", quiz.DifficultyEasy, true),
			result("statistics", quiz.DifficultyEasy, false),
			result("deep learning", quiz.DifficultyHard, false),
		),
		session(
			result("statistics", quiz.DifficultyMedium, false),
			result("statistics", quiz.DifficultyMedium, false),
			result("deep learning", quiz.DifficultyHard, false),
			result("deep learning", quiz.DifficultyEasy, false),
			result("data science", quiz.DifficultyEasy, true),
			result("data science", quiz.DifficultyEasy, true),
			result("data science", quiz.DifficultyEasy, true),
		),
	}
	r := Aggregate(history)

	assert.Equal(t, []string{"deep learning", "statistics"}, r.WeakestAreas())
	assert.Equal(t, []string{"data science", "deep learning", "statistics"}, topicNames(r))

	perf := r.PerformanceByTopic()
	assert.Equal(t, "25.0% overall (1/4)", perf["statistics"].Summary)
	assert.Equal(t, map[string]string{
		"easy":   "50.0% (1/2)",
		"medium": "0.0% (0/2)",
	}, perf["statistics"].Details)
	assert.NotContains(t, perf["statistics"].Details, "hard")
}

func TestAggregate_NoResults(t *testing.T) {
	r := Aggregate([]quiz.SessionRecord{session()})
	assert.Equal(t, MessageNoData, r.Message)
	assert.Empty(t, r.Topics)
	assert.Empty(t, r.WeakestAreas())
}

func TestAggregate_Deterministic(t *testing.T) {
	history := []quiz.SessionRecord{session(
		result("a", quiz.DifficultyEasy, false),
		result("a", quiz.DifficultyEasy, false),
		result("a", quiz.DifficultyEasy, false),
		result("b", quiz.DifficultyEasy, false),
		result("b", quiz.DifficultyEasy, false),
		result("b", quiz.DifficultyEasy, false),
	)}
	first := Aggregate(history)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first.WeakestAreas(), Aggregate(history).WeakestAreas())
	}
	assert.Equal(t, []string{"a", "b"}, first.WeakestAreas(), "ties break by topic name")
}

func TestAnalyze_Errors(t *testing.T) {
	ctx := context.Background()
	store := profile.NewMemoryStore()
	a := NewAnalyzer(store)

	_, err := a.Analyze(ctx, "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
	_, err = a.Analyze(ctx, "fresh")
	assert.True(t, errors.Is(err, ErrNoHistory))
}

func TestAnalyze_HistoryStaysAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := profile.NewMemoryStore()
	a := NewAnalyzer(store)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rec := session(result("ml", quiz.DifficultyEasy, false))
			assert.NoError(t, store.AppendQuizResult(ctx, "u1", &rec))
		}()
		go func() {
			defer wg.Done()
			_, _ = a.Analyze(ctx, "u1")
		}()
	}
	wg.Wait()

	p, err := store.Find(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, p.QuizHistory, 10)

	r, err := a.Analyze(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ml"}, r.WeakestAreas())
}

func topicNames(r *Report) []string {
	var out []string
	for _, t := range r.Topics {
		out = append(out, t.Topic)
	}
	return out
}
