package quiz

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedSource returns questions whose correct answer is always "1",
// failing for the attempts listed in fail (0-based call index).
type scriptedSource struct {
	calls []call
	fail  map[int]bool
}

type call struct {
	topic      string
	difficulty Difficulty
}

func (s *scriptedSource) Generate(_ context.Context, topic string, d Difficulty) (*Question, error) {
	idx := len(s.calls)
	s.calls = append(s.calls, call{topic, d})
	if s.fail[idx] {
		return nil, errors.New("malformed output")
	}
	return &Question{
		Text:          "Q about " + topic,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: "1",
		Explanation:   "because",
	}, nil
}

type failingSource struct{ calls int }

func (f *failingSource) Generate(context.Context, string, Difficulty) (*Question, error) {
	f.calls++
	return nil, errors.New("no JSON in response")
}

func answers(seq ...string) Answerer {
	i := 0
	return AnswererFunc(func(context.Context, Round) (string, error) {
		a := seq[i%len(seq)]
		i++
		return a, nil
	})
}

func testRunner(src QuestionSource, hooks Hooks) *Runner {
	return NewRunner(src, Config{
		Now:   func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		NewID: func() string { return "sess-1" },
	}, hooks)
}

func TestRun_AllCorrectEscalatesAndScores(t *testing.T) {
	src := &scriptedSource{}
	rec := testRunner(src, Hooks{}).Run(context.Background(), 7, nil, answers("1"))

	if rec.Type != SessionFull {
		t.Errorf("Type = %s, want full", rec.Type)
	}
	if len(rec.Results) != 7 {
		t.Fatalf("results = %d, want 7", len(rec.Results))
	}
	want := []Difficulty{
		DifficultyEasy, DifficultyEasy, DifficultyEasy,
		DifficultyMedium, DifficultyMedium, DifficultyMedium,
		DifficultyHard,
	}
	for i, res := range rec.Results {
		if res.Difficulty != want[i] {
			t.Errorf("round %d difficulty = %s, want %s", i+1, res.Difficulty, want[i])
		}
		if !res.Correct {
			t.Errorf("round %d not correct", i+1)
		}
	}
	// 3*10 + 3*20 + 1*30
	if rec.Score == nil || *rec.Score != 120 {
		t.Errorf("Score = %v, want 120", rec.Score)
	}
	if rec.EndReason != EndCompleted {
		t.Errorf("EndReason = %s, want completed", rec.EndReason)
	}
	if rec.ID != "sess-1" {
		t.Errorf("ID = %q", rec.ID)
	}
}

func TestRun_TopicsRoundRobin(t *testing.T) {
	src := &scriptedSource{}
	rec := testRunner(src, Hooks{}).Run(context.Background(), 8, nil, answers("2"))
	for i, res := range rec.Results {
		want := DefaultTopics[i%len(DefaultTopics)]
		if res.Topic != want {
			t.Errorf("round %d topic = %q, want %q", i+1, res.Topic, want)
		}
	}
}

func TestRun_WrongAnswersDeescalate(t *testing.T) {
	src := &scriptedSource{}
	// Three correct to reach medium, then two wrong back to easy.
	rec := testRunner(src, Hooks{}).Run(context.Background(), 6, nil, answers("1", "1", "1", "2", "3", "1"))
	got := []Difficulty{}
	for _, r := range rec.Results {
		got = append(got, r.Difficulty)
	}
	want := []Difficulty{DifficultyEasy, DifficultyEasy, DifficultyEasy, DifficultyMedium, DifficultyMedium, DifficultyEasy}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("difficulties = %v, want %v", got, want)
		}
	}
	// 3*10 + 0 + 0 + 10
	if *rec.Score != 40 {
		t.Errorf("Score = %d, want 40", *rec.Score)
	}
}

func TestRun_InvalidInputRecordedAsWrong(t *testing.T) {
	var outcomes []RoundOutcome
	src := &scriptedSource{}
	rec := testRunner(src, Hooks{
		OnRound: func(o RoundOutcome) { outcomes = append(outcomes, o) },
	}).Run(context.Background(), 3, nil, answers("x", "", "1"))

	if len(rec.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(rec.Results))
	}
	if rec.Results[0].Correct || rec.Results[1].Correct {
		t.Error("invalid answers must be recorded as incorrect")
	}
	if outcomes[0].Valid || outcomes[1].Valid {
		t.Error("expected invalid outcomes")
	}
	// Two invalid answers at easy clamp; still easy.
	if rec.Results[2].Difficulty != DifficultyEasy {
		t.Errorf("difficulty = %s, want easy", rec.Results[2].Difficulty)
	}
}

func TestRun_AlwaysFailingSourceEndsAfterThree(t *testing.T) {
	src := &failingSource{}
	var failures []int
	rec := testRunner(src, Hooks{
		OnGenerationFailure: func(_ *GenerationError, consecutive int) { failures = append(failures, consecutive) },
	}).Run(context.Background(), 5, nil, answers("1"))

	if src.calls != 3 {
		t.Errorf("source calls = %d, want 3", src.calls)
	}
	if len(rec.Results) != 0 {
		t.Errorf("results = %d, want 0", len(rec.Results))
	}
	if rec.GenerationFailures != 3 {
		t.Errorf("GenerationFailures = %d, want 3", rec.GenerationFailures)
	}
	if rec.EndReason != EndGenerationFailures {
		t.Errorf("EndReason = %s, want generation_failures", rec.EndReason)
	}
	if len(failures) != 3 || failures[2] != 3 {
		t.Errorf("failure hook = %v, want [1 2 3]", failures)
	}
	if rec.Score == nil || *rec.Score != 0 {
		t.Errorf("Score = %v, want 0", rec.Score)
	}
}

func TestRun_FailureDoesNotConsumeSlot(t *testing.T) {
	src := &scriptedSource{fail: map[int]bool{1: true, 2: true}}
	rec := testRunner(src, Hooks{}).Run(context.Background(), 3, nil, answers("1"))

	if len(rec.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(rec.Results))
	}
	if rec.GenerationFailures != 2 {
		t.Errorf("GenerationFailures = %d, want 2", rec.GenerationFailures)
	}
	// The failed slot is retried with the same topic.
	if src.calls[1].topic != src.calls[2].topic || src.calls[2].topic != src.calls[3].topic {
		t.Errorf("retries changed topic: %+v", src.calls)
	}
	if rec.EndReason != EndCompleted {
		t.Errorf("EndReason = %s, want completed", rec.EndReason)
	}
}

func TestRun_SuccessResetsConsecutiveFailures(t *testing.T) {
	// Two failures, success, two failures, success: never three in a row.
	src := &scriptedSource{fail: map[int]bool{0: true, 1: true, 3: true, 4: true}}
	rec := testRunner(src, Hooks{}).Run(context.Background(), 2, nil, answers("1"))
	if len(rec.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(rec.Results))
	}
	if rec.GenerationFailures != 4 {
		t.Errorf("GenerationFailures = %d, want 4", rec.GenerationFailures)
	}
}

func TestRun_AnswererErrorAborts(t *testing.T) {
	src := &scriptedSource{}
	n := 0
	ans := AnswererFunc(func(context.Context, Round) (string, error) {
		n++
		if n == 3 {
			return "", errors.New("quit")
		}
		return "1", nil
	})
	rec := testRunner(src, Hooks{}).Run(context.Background(), 5, nil, ans)
	if len(rec.Results) != 2 {
		t.Errorf("results = %d, want 2", len(rec.Results))
	}
	if rec.EndReason != EndAborted {
		t.Errorf("EndReason = %s, want aborted", rec.EndReason)
	}
}

func TestRun_InvalidRoundsDefault(t *testing.T) {
	src := &scriptedSource{}
	rec := testRunner(src, Hooks{}).Run(context.Background(), 0, nil, answers("2"))
	if len(rec.Results) != DefaultRounds {
		t.Errorf("results = %d, want %d", len(rec.Results), DefaultRounds)
	}
}

func TestRunSingle_UsesRequestedDifficulty(t *testing.T) {
	src := &scriptedSource{}
	rec := testRunner(src, Hooks{}).RunSingle(context.Background(), "statistics", DifficultyHard, answers("1"))

	if rec.Type != SessionSingle {
		t.Errorf("Type = %s, want single", rec.Type)
	}
	if len(rec.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(rec.Results))
	}
	res := rec.Results[0]
	if res.Topic != "statistics" || res.Difficulty != DifficultyHard || !res.Correct {
		t.Errorf("result = %+v", res)
	}
	if rec.Score != nil {
		t.Errorf("single record should carry no score, got %d", *rec.Score)
	}
	if src.calls[0].difficulty != DifficultyHard {
		t.Errorf("generated at %s, want hard", src.calls[0].difficulty)
	}
}

func TestRunSingle_GenerationFailures(t *testing.T) {
	src := &failingSource{}
	rec := testRunner(src, Hooks{}).RunSingle(context.Background(), "statistics", DifficultyEasy, answers("1"))
	if len(rec.Results) != 0 || rec.GenerationFailures != 3 {
		t.Errorf("record = %+v", rec)
	}
}

func TestRunSingle_AnswererErrorAborts(t *testing.T) {
	src := &scriptedSource{}
	ans := AnswererFunc(func(context.Context, Round) (string, error) {
		return "", errors.New("quit")
	})
	rec := testRunner(src, Hooks{}).RunSingle(context.Background(), "statistics", DifficultyMedium, ans)
	if rec.EndReason != EndAborted {
		t.Errorf("EndReason = %s, want aborted", rec.EndReason)
	}
	if len(rec.Results) != 0 || rec.GenerationFailures != 0 {
		t.Errorf("record = %+v", rec)
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &failingSource{}
	rec := testRunner(src, Hooks{}).Run(ctx, 5, nil, answers("1"))
	if rec.EndReason != EndAborted {
		t.Errorf("EndReason = %s, want aborted", rec.EndReason)
	}
	if rec.GenerationFailures != 0 {
		t.Errorf("GenerationFailures = %d, want 0", rec.GenerationFailures)
	}
}

func TestSessionRecord_Validate(t *testing.T) {
	ok := SessionRecord{Type: SessionFull, Results: []QuestionResult{{Topic: "ml", Difficulty: DifficultyEasy}}}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := []SessionRecord{
		{Type: "weekly"},
		{Type: SessionSingle, Results: []QuestionResult{{Topic: "", Difficulty: DifficultyEasy}}},
		{Type: SessionSingle, Results: []QuestionResult{{Topic: "ml", Difficulty: "expert"}}},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
