package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	usersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeString},
	}
	usersTable = &schema.Table{
		Name:       "users",
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	// Quiz sessions are keyed by their global sequence number so history
	// reads back in append order.
	quizSessionsColumns = []*schema.Column{
		{Name: "seq", Type: field.TypeInt64},
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "timestamp", Type: field.TypeString},
		{Name: "type", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt, Nullable: true},
		{Name: "generation_failures", Type: field.TypeInt, Default: 0},
		{Name: "end_reason", Type: field.TypeString, Default: ""},
	}
	quizSessionsTable = &schema.Table{
		Name:       "quiz_sessions",
		Columns:    quizSessionsColumns,
		PrimaryKey: []*schema.Column{quizSessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_sessions_users_sessions",
				Columns:    []*schema.Column{quizSessionsColumns[2]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "quizsession_user_id_seq", Columns: []*schema.Column{quizSessionsColumns[2], quizSessionsColumns[0]}},
		},
	}

	questionResultsColumns = []*schema.Column{
		{Name: "session_seq", Type: field.TypeInt64},
		{Name: "position", Type: field.TypeInt},
		{Name: "topic", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "correct", Type: field.TypeBool},
	}
	questionResultsTable = &schema.Table{
		Name:       "question_results",
		Columns:    questionResultsColumns,
		PrimaryKey: []*schema.Column{questionResultsColumns[0], questionResultsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "question_results_quiz_sessions_results",
				Columns:    []*schema.Column{questionResultsColumns[0]},
				RefColumns: []*schema.Column{quizSessionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	chatSessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeString},
	}
	chatSessionsTable = &schema.Table{
		Name:       "chat_sessions",
		Columns:    chatSessionsColumns,
		PrimaryKey: []*schema.Column{chatSessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "chat_sessions_users_chats",
				Columns:    []*schema.Column{chatSessionsColumns[1]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "chatsession_user_id_created_at", Columns: []*schema.Column{chatSessionsColumns[1], chatSessionsColumns[3]}},
		},
	}

	chatMessagesColumns = []*schema.Column{
		{Name: "chat_id", Type: field.TypeString},
		{Name: "position", Type: field.TypeInt},
		{Name: "user_msg", Type: field.TypeString},
		{Name: "bot_msg", Type: field.TypeString},
	}
	chatMessagesTable = &schema.Table{
		Name:       "chat_messages",
		Columns:    chatMessagesColumns,
		PrimaryKey: []*schema.Column{chatMessagesColumns[0], chatMessagesColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "chat_messages_chat_sessions_history",
				Columns:    []*schema.Column{chatMessagesColumns[0]},
				RefColumns: []*schema.Column{chatSessionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	llmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeString},
		{Name: "provider", Type: field.TypeString, Default: ""},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "purpose", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
	}
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
			{Name: "llmrequestevent_model", Columns: []*schema.Column{llmRequestEventsColumns[4]}},
		},
	}

	tables = []*schema.Table{
		usersTable,
		quizSessionsTable,
		questionResultsTable,
		chatSessionsTable,
		chatMessagesTable,
		llmRequestEventsTable,
	}
)

func init() {
	quizSessionsTable.ForeignKeys[0].RefTable = usersTable
	questionResultsTable.ForeignKeys[0].RefTable = quizSessionsTable
	chatSessionsTable.ForeignKeys[0].RefTable = usersTable
	chatMessagesTable.ForeignKeys[0].RefTable = chatSessionsTable
}

// migrate brings the tables up to date and seeds the sequence counter.
func migrate(ctx context.Context, db *sql.DB) error {
	m, err := schema.NewMigrate(entsql.OpenDB(dialect.SQLite, db))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return err
	}
	return createSequenceTable(db)
}
