package chat

import (
	"regexp"
	"strings"
)

// IntentKind classifies a chat message.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentFullQuiz
	IntentSingleTopic
)

// Intent is the result of DetectQuizRequest. Topic is set for
// IntentSingleTopic only.
type Intent struct {
	Kind  IntentKind
	Topic string
}

// Full-quiz phrases are checked first. The first pattern matches any
// mention of "quiz", so "give me a quiz on X" starts a full quiz.
var fullQuizPatterns = compileAll(
	`(full|complete|long|big)? ?quiz`,
	`quiz session`,
	`test session`,
	`give me (a|an)? ?(full|complete|long|big)? ?quiz`,
	`i want to take a quiz`,
	`start a quiz`,
	`give me a quiz`,
)

var topicPatterns = compileAll(
	`test me on ([\w\s]+)`,
	`quiz me about ([\w\s]+)`,
	`give me a quiz on ([\w\s]+)`,
	`ask me a question about ([\w\s]+)`,
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// DetectQuizRequest decides whether a message asks for a quiz.
func DetectQuizRequest(input string) Intent {
	for _, re := range fullQuizPatterns {
		if re.MatchString(input) {
			return Intent{Kind: IntentFullQuiz}
		}
	}
	for _, re := range topicPatterns {
		if m := re.FindStringSubmatch(input); m != nil {
			if topic := strings.TrimSpace(m[1]); topic != "" {
				return Intent{Kind: IntentSingleTopic, Topic: topic}
			}
		}
	}
	return Intent{Kind: IntentNone}
}
