package quiz

import (
	"fmt"
	"strconv"
	"time"
)

// SessionType distinguishes the one-off question path from a multi-round quiz.
type SessionType string

const (
	SessionSingle SessionType = "single"
	SessionFull   SessionType = "full"
)

// EndReason explains why a session stopped.
type EndReason string

const (
	EndCompleted          EndReason = "completed"
	EndGenerationFailures EndReason = "generation_failures"
	EndAborted            EndReason = "aborted"
)

// Question is a validated multiple-choice question from a QuestionSource.
type Question struct {
	Text    string
	Options []string

	// CorrectAnswer is the 1-based option number as a string, "1".."4".
	CorrectAnswer string

	Explanation string
	Topic       string
	Difficulty  Difficulty
}

// CorrectOption returns the text of the correct option.
func (q *Question) CorrectOption() string {
	for i, opt := range q.Options {
		if strconv.Itoa(i+1) == q.CorrectAnswer {
			return opt
		}
	}
	return ""
}

// QuestionResult is the persisted outcome of one round.
type QuestionResult struct {
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Correct    bool       `json:"correct"`
}

// SessionRecord is the immutable result of one quiz session.
type SessionRecord struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Type      SessionType      `json:"type"`
	Score     *int             `json:"score,omitempty"`
	Results   []QuestionResult `json:"results"`

	// GenerationFailures counts question-source failures during the run.
	GenerationFailures int       `json:"generation_failures"`
	EndReason          EndReason `json:"end_reason,omitempty"`
}

// CorrectCount returns the number of correct results.
func (r *SessionRecord) CorrectCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Correct {
			n++
		}
	}
	return n
}

// Validate checks the required fields of a record received at a boundary
// (HTTP submission or storage decode).
func (r *SessionRecord) Validate() error {
	if r.Type != SessionSingle && r.Type != SessionFull {
		return fmt.Errorf("type must be %q or %q, got %q", SessionSingle, SessionFull, r.Type)
	}
	for i, res := range r.Results {
		if res.Topic == "" {
			return fmt.Errorf("results[%d]: topic is empty", i)
		}
		if !res.Difficulty.Valid() {
			return fmt.Errorf("results[%d]: unknown difficulty %q", i, res.Difficulty)
		}
	}
	return nil
}
