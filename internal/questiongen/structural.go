package questiongen

import (
	"strconv"
	"strings"

	"github.com/abhisek/careercoach/internal/quiz"
)

const (
	maxQuestionLen    = 500
	maxOptionLen      = 200
	maxExplanationLen = 1000
)

// StructuralValidator checks that required fields are present, within length
// limits, and that the options and answer key are usable.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *quiz.Question) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg}
	}

	if strings.TrimSpace(q.Text) == "" {
		return fail("question is empty")
	}
	if len(q.Text) > maxQuestionLen {
		return fail("question exceeds 500 characters")
	}
	if len(q.Options) != 4 {
		return fail("expected exactly 4 options, got " + strconv.Itoa(len(q.Options)))
	}
	seen := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		key := strings.ToLower(strings.TrimSpace(opt))
		if key == "" {
			return fail("option " + strconv.Itoa(i+1) + " is empty")
		}
		if len(opt) > maxOptionLen {
			return fail("option " + strconv.Itoa(i+1) + " exceeds 200 characters")
		}
		if seen[key] {
			return fail("duplicate option " + strconv.Quote(opt))
		}
		seen[key] = true
	}
	if q.CorrectOption() == "" {
		return fail("correct_answer must be one of \"1\", \"2\", \"3\", \"4\"")
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return fail("explanation is empty")
	}
	if len(q.Explanation) > maxExplanationLen {
		return fail("explanation exceeds 1000 characters")
	}
	return nil
}
