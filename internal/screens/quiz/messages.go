package quiz

import (
	qz "github.com/abhisek/careercoach/internal/quiz"
)

// generatingMsg is sent before each question-source call.
type generatingMsg struct {
	Topic      string
	Difficulty qz.Difficulty
}

// roundMsg is sent when a question is ready to be answered.
type roundMsg struct {
	Round qz.Round
}

// generationFailedMsg is sent for every failed question-source call.
type generationFailedMsg struct {
	Err         *qz.GenerationError
	Consecutive int
}

// outcomeMsg is sent after an answer has been scored.
type outcomeMsg struct {
	Outcome qz.RoundOutcome
}

// doneMsg is sent once the session has ended and been saved.
type doneMsg struct {
	Record *qz.SessionRecord
	Err    error
}
