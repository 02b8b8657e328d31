package store

import (
	"context"
	"database/sql"
	"fmt"
)

// The global sequence orders rows across tables: quiz sessions and LLM
// request events share one monotonic counter, so a session can be placed
// relative to the generation calls that produced it.
//
// Raw SQL because the query builder has no notion of atomic counters. The
// counter is advanced inside the caller's transaction so the sequence and
// the row it labels commit together.

func createSequenceTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// nextSequence returns the next sequence number and increments the counter.
func nextSequence(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
