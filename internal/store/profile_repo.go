package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/careercoach/internal/profile"
	"github.com/abhisek/careercoach/internal/quiz"
)

// ProfileRepo implements profile.Store and profile.ChatStore on SQLite.
// Operations on one user are serialized by a keyed lock; each write runs in
// a single transaction.
type ProfileRepo struct {
	db   *sql.DB
	keys profile.KeyedMutex
	now  func() time.Time
}

var (
	_ profile.Store     = (*ProfileRepo)(nil)
	_ profile.ChatStore = (*ProfileRepo)(nil)
)

func newProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db, now: time.Now}
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*profile.UserProfile, error) {
	unlock := r.keys.Lock(userID)
	defer unlock()

	if err := r.ensureUser(ctx, r.db, userID); err != nil {
		return nil, err
	}
	return r.load(ctx, userID)
}

func (r *ProfileRepo) Find(ctx context.Context, userID string) (*profile.UserProfile, error) {
	unlock := r.keys.Lock(userID)
	defer unlock()
	return r.load(ctx, userID)
}

func (r *ProfileRepo) AppendQuizResult(ctx context.Context, userID string, rec *quiz.SessionRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid quiz record: %w", err)
	}

	unlock := r.keys.Lock(userID)
	defer unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := r.ensureUser(ctx, tx, userID); err != nil {
		return err
	}
	seq, err := nextSequence(ctx, tx)
	if err != nil {
		return err
	}

	var score any
	if rec.Score != nil {
		score = int64(*rec.Score)
	}
	query, args := builder.Insert("quiz_sessions").
		Columns("seq", "id", "user_id", "timestamp", "type", "score", "generation_failures", "end_reason").
		Values(seq, rec.ID, userID, formatTime(rec.Timestamp), string(rec.Type), score, rec.GenerationFailures, string(rec.EndReason)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save quiz session: %w", err)
	}

	if len(rec.Results) > 0 {
		ins := builder.Insert("question_results").
			Columns("session_seq", "position", "topic", "difficulty", "correct")
		for i, res := range rec.Results {
			ins.Values(seq, i, res.Topic, string(res.Difficulty), res.Correct)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save question results: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ensureUser inserts the user row if missing.
func (r *ProfileRepo) ensureUser(ctx context.Context, q queryer, userID string) error {
	query, args := builder.Insert("users").
		Columns("id", "created_at").
		Values(userID, formatTime(r.now())).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// load reads the full profile. The caller holds the user's key.
func (r *ProfileRepo) load(ctx context.Context, userID string) (*profile.UserProfile, error) {
	query, args := builder.Select("created_at").
		From(builder.Table("users")).
		Where(entsql.EQ("id", userID)).
		Query()
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	p := &profile.UserProfile{
		UserID:       userID,
		ChatSessions: make(map[string]*profile.ChatSession),
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse user created_at: %w", err)
	}

	if p.QuizHistory, err = r.quizHistory(ctx, userID); err != nil {
		return nil, err
	}

	chats, err := r.chatSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, cs := range chats {
		if cs.History, err = r.chatHistory(ctx, cs.ID); err != nil {
			return nil, err
		}
		p.ChatSessions[cs.ID] = cs
	}
	return p, nil
}

func (r *ProfileRepo) quizHistory(ctx context.Context, userID string) ([]quiz.SessionRecord, error) {
	query, args := builder.Select("seq", "id", "timestamp", "type", "score", "generation_failures", "end_reason").
		From(builder.Table("quiz_sessions")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("seq").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz sessions: %w", err)
	}
	defer rows.Close()

	history := []quiz.SessionRecord{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			seq       int64
			rec       quiz.SessionRecord
			ts, typ   string
			score     sql.NullInt64
			endReason string
		)
		if err := rows.Scan(&seq, &rec.ID, &ts, &typ, &score, &rec.GenerationFailures, &endReason); err != nil {
			return nil, fmt.Errorf("scan quiz session: %w", err)
		}
		if rec.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("parse session timestamp: %w", err)
		}
		rec.Type = quiz.SessionType(typ)
		rec.EndReason = quiz.EndReason(endReason)
		if score.Valid {
			v := int(score.Int64)
			rec.Score = &v
		}
		rec.Results = []quiz.QuestionResult{}
		index[seq] = len(history)
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz sessions: %w", err)
	}
	if len(history) == 0 {
		return history, nil
	}

	s := builder.Table("quiz_sessions")
	qr := builder.Table("question_results")
	query, args = builder.Select(qr.C("session_seq"), qr.C("topic"), qr.C("difficulty"), qr.C("correct")).
		From(qr).
		Join(s).On(qr.C("session_seq"), s.C("seq")).
		Where(entsql.EQ(s.C("user_id"), userID)).
		OrderBy(qr.C("session_seq"), qr.C("position")).
		Query()
	rows, err = r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query question results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seq        int64
			res        quiz.QuestionResult
			difficulty string
		)
		if err := rows.Scan(&seq, &res.Topic, &difficulty, &res.Correct); err != nil {
			return nil, fmt.Errorf("scan question result: %w", err)
		}
		res.Difficulty = quiz.Difficulty(difficulty)
		if i, ok := index[seq]; ok {
			history[i].Results = append(history[i].Results, res)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question results: %w", err)
	}
	return history, nil
}
