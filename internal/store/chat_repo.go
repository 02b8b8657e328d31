package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/careercoach/internal/profile"
)

func (r *ProfileRepo) CreateChat(ctx context.Context, userID string) (*profile.ChatSession, error) {
	unlock := r.keys.Lock(userID)
	defer unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := r.ensureUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	cs := &profile.ChatSession{
		ID:        uuid.NewString(),
		Title:     profile.DefaultChatTitle,
		CreatedAt: r.now().UTC(),
	}
	query, args := builder.Insert("chat_sessions").
		Columns("id", "user_id", "title", "created_at").
		Values(cs.ID, userID, cs.Title, formatTime(cs.CreatedAt)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("save chat session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cs, nil
}

func (r *ProfileRepo) ListChats(ctx context.Context, userID string) ([]profile.ChatSummary, error) {
	unlock := r.keys.Lock(userID)
	defer unlock()

	sessions, err := r.chatSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]profile.ChatSummary, 0, len(sessions))
	for _, cs := range sessions {
		out = append(out, profile.ChatSummary{ID: cs.ID, Title: cs.Title})
	}
	return out, nil
}

func (r *ProfileRepo) ChatHistory(ctx context.Context, userID, chatID string) ([]profile.ChatTurn, error) {
	unlock := r.keys.Lock(userID)
	defer unlock()

	owned, err := r.ownsChat(ctx, r.db, userID, chatID)
	if err != nil || !owned {
		return nil, err
	}
	return r.chatHistory(ctx, chatID)
}

func (r *ProfileRepo) DeleteChat(ctx context.Context, userID, chatID string) error {
	unlock := r.keys.Lock(userID)
	defer unlock()

	query, args := builder.Delete("chat_sessions").
		Where(entsql.And(entsql.EQ("id", chatID), entsql.EQ("user_id", userID))).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	return nil
}

func (r *ProfileRepo) AppendChatTurn(ctx context.Context, userID, chatID string, turn profile.ChatTurn) error {
	unlock := r.keys.Lock(userID)
	defer unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	owned, err := r.ownsChat(ctx, tx, userID, chatID)
	if err != nil || !owned {
		return err
	}

	query, args := builder.Select(entsql.Count("*")).
		From(builder.Table("chat_messages")).
		Where(entsql.EQ("chat_id", chatID)).
		Query()
	var n int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return fmt.Errorf("count chat messages: %w", err)
	}

	if n == 0 {
		query, args = builder.Update("chat_sessions").
			Set("title", profile.ChatTitle(turn.User)).
			Where(entsql.EQ("id", chatID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("rename chat session: %w", err)
		}
	}

	query, args = builder.Insert("chat_messages").
		Columns("chat_id", "position", "user_msg", "bot_msg").
		Values(chatID, n, turn.User, turn.Bot).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save chat message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ProfileRepo) ownsChat(ctx context.Context, q queryer, userID, chatID string) (bool, error) {
	query, args := builder.Select(entsql.Count("*")).
		From(builder.Table("chat_sessions")).
		Where(entsql.And(entsql.EQ("id", chatID), entsql.EQ("user_id", userID))).
		Query()
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("query chat session: %w", err)
	}
	return n > 0, nil
}

// chatSessions returns the user's chats oldest first, without history.
func (r *ProfileRepo) chatSessions(ctx context.Context, userID string) ([]*profile.ChatSession, error) {
	query, args := builder.Select("id", "title", "created_at").
		From(builder.Table("chat_sessions")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("created_at", "id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat sessions: %w", err)
	}
	defer rows.Close()

	var out []*profile.ChatSession
	for rows.Next() {
		cs := &profile.ChatSession{}
		var createdAt string
		if err := rows.Scan(&cs.ID, &cs.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		if cs.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse chat created_at: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (r *ProfileRepo) chatHistory(ctx context.Context, chatID string) ([]profile.ChatTurn, error) {
	query, args := builder.Select("user_msg", "bot_msg").
		From(builder.Table("chat_messages")).
		Where(entsql.EQ("chat_id", chatID)).
		OrderBy("position").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var turns []profile.ChatTurn
	for rows.Next() {
		var t profile.ChatTurn
		if err := rows.Scan(&t.User, &t.Bot); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
