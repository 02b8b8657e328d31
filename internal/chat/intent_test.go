package chat

import "testing"

func TestDetectQuizRequest(t *testing.T) {
	tests := []struct {
		input string
		want  Intent
	}{
		{"start a quiz", Intent{Kind: IntentFullQuiz}},
		{"I want a QUIZ session please", Intent{Kind: IntentFullQuiz}},
		{"let's do a test session", Intent{Kind: IntentFullQuiz}},
		// Any mention of "quiz" wins over the topic patterns.
		{"give me a quiz on statistics", Intent{Kind: IntentFullQuiz}},
		{"quiz me about deep learning", Intent{Kind: IntentFullQuiz}},
		{"test me on machine learning", Intent{Kind: IntentSingleTopic, Topic: "machine learning"}},
		{"Test me on  SQL joins ", Intent{Kind: IntentSingleTopic, Topic: "SQL joins"}},
		{"ask me a question about data engineering?", Intent{Kind: IntentSingleTopic, Topic: "data engineering"}},
		{"How do I become a data analyst?", Intent{Kind: IntentNone}},
		{"", Intent{Kind: IntentNone}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DetectQuizRequest(tt.input); got != tt.want {
				t.Errorf("DetectQuizRequest(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
