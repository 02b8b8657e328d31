package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/careercoach/internal/profile"
	"github.com/abhisek/careercoach/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func fullRecord(id string, score int, results ...quiz.QuestionResult) *quiz.SessionRecord {
	return &quiz.SessionRecord{
		ID:        id,
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Type:      quiz.SessionFull,
		Score:     &score,
		Results:   results,
		EndReason: quiz.EndCompleted,
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{
		"users", "quiz_sessions", "question_results",
		"chat_sessions", "chat_messages", "llm_request_events", "global_sequence",
	} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rec := fullRecord("a", 10, quiz.QuestionResult{Topic: "ml", Difficulty: quiz.DifficultyEasy, Correct: true})
	if err := s.Profiles().AppendQuizResult(ctx, "u1", rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	p, err := s.Profiles().Find(ctx, "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(p.QuizHistory) != 1 {
		t.Errorf("history = %d, want 1", len(p.QuizHistory))
	}
}

func TestProfileFindMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Profiles().Find(context.Background(), "nobody")
	if !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestProfileGetCreatesEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, err := s.Profiles().Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.UserID != "u1" || len(p.QuizHistory) != 0 || len(p.ChatSessions) != 0 {
		t.Errorf("profile = %+v", p)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	// A second Get returns the same profile, not a new one.
	again, err := s.Profiles().Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if !again.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", p.CreatedAt, again.CreatedAt)
	}
}

func TestAppendQuizResultRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Profiles()

	full := fullRecord("s1", 30,
		quiz.QuestionResult{Topic: "statistics", Difficulty: quiz.DifficultyEasy, Correct: true},
		quiz.QuestionResult{Topic: "machine learning", Difficulty: quiz.DifficultyMedium, Correct: true},
		quiz.QuestionResult{Topic: "deep learning", Difficulty: quiz.DifficultyMedium, Correct: false},
	)
	full.GenerationFailures = 1
	single := &quiz.SessionRecord{
		ID:        "s2",
		Timestamp: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Type:      quiz.SessionSingle,
		Results:   []quiz.QuestionResult{{Topic: "AI ethics", Difficulty: quiz.DifficultyHard}},
		EndReason: quiz.EndCompleted,
	}

	if err := repo.AppendQuizResult(ctx, "u1", full); err != nil {
		t.Fatalf("append full: %v", err)
	}
	if err := repo.AppendQuizResult(ctx, "u1", single); err != nil {
		t.Fatalf("append single: %v", err)
	}

	p, err := repo.Find(ctx, "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(p.QuizHistory) != 2 {
		t.Fatalf("history = %d, want 2", len(p.QuizHistory))
	}

	got := p.QuizHistory[0]
	if got.ID != "s1" || got.Type != quiz.SessionFull || got.Score == nil || *got.Score != 30 {
		t.Errorf("first record = %+v", got)
	}
	if !got.Timestamp.Equal(full.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, full.Timestamp)
	}
	if got.GenerationFailures != 1 || got.EndReason != quiz.EndCompleted {
		t.Errorf("failures/end = %d/%s", got.GenerationFailures, got.EndReason)
	}
	if len(got.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(got.Results))
	}
	for i, want := range full.Results {
		if got.Results[i] != want {
			t.Errorf("result[%d] = %+v, want %+v", i, got.Results[i], want)
		}
	}

	second := p.QuizHistory[1]
	if second.Score != nil {
		t.Errorf("single record score = %d, want nil", *second.Score)
	}
	if len(second.Results) != 1 || second.Results[0].Difficulty != quiz.DifficultyHard {
		t.Errorf("single results = %+v", second.Results)
	}
}

func TestAppendEmptyResults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := fullRecord("empty", 0)
	rec.Results = nil
	rec.GenerationFailures = 3
	rec.EndReason = quiz.EndGenerationFailures
	if err := s.Profiles().AppendQuizResult(ctx, "u1", rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	p, _ := s.Profiles().Find(ctx, "u1")
	if len(p.QuizHistory) != 1 || len(p.QuizHistory[0].Results) != 0 {
		t.Errorf("history = %+v", p.QuizHistory)
	}
}

func TestAppendRejectsInvalidRecord(t *testing.T) {
	s := openTestStore(t)
	rec := fullRecord("bad", 0, quiz.QuestionResult{Topic: "ml", Difficulty: "insane"})
	if err := s.Profiles().AppendQuizResult(context.Background(), "u1", rec); err == nil {
		t.Fatal("expected error for invalid difficulty")
	}
	if _, err := s.Profiles().Find(context.Background(), "u1"); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("rejected append must not create the profile, err = %v", err)
	}
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	s := openTestStore(t)
	repo := s.Profiles()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := "shared"
			if i%4 == 0 {
				user = "other"
			}
			rec := fullRecord(
				"rec-"+strings.Repeat("x", i+1), 10,
				quiz.QuestionResult{Topic: "statistics", Difficulty: quiz.DifficultyEasy, Correct: true},
			)
			if err := repo.AppendQuizResult(ctx, user, rec); err != nil {
				t.Errorf("append %d: %v", i, err)
			}
			// Reads interleave with writes.
			repo.Find(ctx, user)
		}()
	}
	wg.Wait()

	shared, err := repo.Find(ctx, "shared")
	if err != nil {
		t.Fatalf("find shared: %v", err)
	}
	other, err := repo.Find(ctx, "other")
	if err != nil {
		t.Fatalf("find other: %v", err)
	}
	if got := len(shared.QuizHistory) + len(other.QuizHistory); got != n {
		t.Errorf("total history = %d, want %d", got, n)
	}
	if len(other.QuizHistory) != n/4 {
		t.Errorf("other history = %d, want %d", len(other.QuizHistory), n/4)
	}
}

func TestChatSessions(t *testing.T) {
	s := openTestStore(t)
	repo := s.Profiles()
	ctx := context.Background()

	cs, err := repo.CreateChat(ctx, "u1")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if cs.Title != profile.DefaultChatTitle {
		t.Errorf("title = %q, want %q", cs.Title, profile.DefaultChatTitle)
	}

	first := "How do I move from data analysis into machine learning engineering roles?"
	if err := repo.AppendChatTurn(ctx, "u1", cs.ID, profile.ChatTurn{User: first, Bot: "Start with..."}); err != nil {
		t.Fatalf("append turn: %v", err)
	}
	if err := repo.AppendChatTurn(ctx, "u1", cs.ID, profile.ChatTurn{User: "thanks", Bot: "welcome"}); err != nil {
		t.Fatalf("append turn 2: %v", err)
	}

	list, err := repo.ListChats(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Title != first[:50] {
		t.Errorf("list = %+v", list)
	}

	hist, err := repo.ChatHistory(ctx, "u1", cs.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 || hist[0].User != first || hist[1].Bot != "welcome" {
		t.Errorf("history = %+v", hist)
	}

	// Another user cannot read or append to this chat.
	if h, _ := repo.ChatHistory(ctx, "u2", cs.ID); len(h) != 0 {
		t.Errorf("foreign history = %+v", h)
	}
	if err := repo.AppendChatTurn(ctx, "u2", cs.ID, profile.ChatTurn{User: "x", Bot: "y"}); err != nil {
		t.Errorf("foreign append: %v", err)
	}

	p, err := repo.Find(ctx, "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got := len(p.ChatSessions[cs.ID].History); got != 2 {
		t.Errorf("profile chat history = %d, want 2", got)
	}

	if err := repo.DeleteChat(ctx, "u1", cs.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteChat(ctx, "u1", cs.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if h, _ := repo.ChatHistory(ctx, "u1", cs.ID); len(h) != 0 {
		t.Errorf("history after delete = %+v", h)
	}

	var n int
	s.DB().QueryRow("SELECT COUNT(*) FROM chat_messages").Scan(&n)
	if n != 0 {
		t.Errorf("orphan chat messages = %d", n)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "ollama", Model: "mistral", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "ollama", Model: "mistral", Purpose: "question-gen", InputTokens: 120, OutputTokens: 0, LatencyMs: 400, Success: false, ErrorMessage: "timeout"},
		{Provider: "ollama", Model: "mistral", Purpose: "chat", InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("events = %d, want 3", len(all))
	}
	if all[0].Purpose != "chat" || all[0].Sequence <= all[1].Sequence {
		t.Errorf("events not newest first: %+v", all)
	}

	gen, _ := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen", Limit: 1})
	if len(gen) != 1 || gen[0].ErrorMessage != "timeout" {
		t.Errorf("filtered = %+v", gen)
	}

	e, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.RequestBody != "req" || e.ResponseBody != "resp" || !e.Success {
		t.Errorf("event = %+v", e)
	}
	if missing, err := repo.GetLLMEvent(ctx, 9999); err != nil || missing != nil {
		t.Errorf("missing = %+v, %v", missing, err)
	}

	usage, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("usage rows = %d, want 2", len(usage))
	}
	qg := usage[1]
	if qg.Purpose != "question-gen" || qg.Calls != 2 || qg.InputTokens != 220 || qg.AvgLatencyMs != 300 {
		t.Errorf("question-gen usage = %+v", qg)
	}

	byModel, _ := repo.LLMUsageByModel(ctx)
	if len(byModel) != 1 || byModel[0].Model != "mistral" || byModel[0].Calls != 3 {
		t.Errorf("model usage = %+v", byModel)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "question-gen"})
	s.Profiles().AppendQuizResult(ctx, "u1", fullRecord("s1", 0))
	s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "question-gen"})

	var sessionSeq int64
	if err := s.DB().QueryRow("SELECT seq FROM quiz_sessions WHERE id = 's1'").Scan(&sessionSeq); err != nil {
		t.Fatalf("query session seq: %v", err)
	}
	if sessionSeq != 2 {
		t.Errorf("session seq = %d, want 2", sessionSeq)
	}

	events, _ := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if events[0].Sequence != 3 || events[1].Sequence != 1 {
		t.Errorf("event sequences = %d, %d; want 3, 1", events[0].Sequence, events[1].Sequence)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("CAREERCOACH_DB", filepath.Join(dir, "env", "x.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "env", "x.db") {
		t.Errorf("path = %q", p)
	}

	t.Setenv("CAREERCOACH_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "careercoach", "careercoach.db") {
		t.Errorf("path = %q", p)
	}
}
