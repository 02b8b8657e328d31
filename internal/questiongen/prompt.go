package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/careercoach/internal/quiz"
)

const systemPrompt = `You write quiz questions for students and professionals preparing for careers in Data and Artificial Intelligence.

Rules:
- Generate exactly one multiple-choice question on the requested topic at the requested difficulty.
- "easy" questions check definitions and vocabulary, "medium" questions check applied understanding, "hard" questions check trade-offs and edge cases.
- Provide four distinct options. Exactly one is correct; distractors should reflect common misconceptions.
- Do not number the options inside their text.
- Keep the explanation short and factual.
- Do not repeat any question from the "already asked" list.`

// buildUserMessage constructs the user message for one question request.
func buildUserMessage(topic string, difficulty quiz.Difficulty, prior []string, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a multiple-choice question on the topic of '%s' at a '%s' difficulty level. ", topic, difficulty)
	b.WriteString("Provide four options (1, 2, 3, 4), indicate the correct answer, and include a brief explanation. ")
	b.WriteString("Reply ONLY in valid JSON with keys: question, options, correct_answer, explanation. ")
	b.WriteString("Do not include any text outside the JSON object.\n")

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildDedup(prior, cfg.MaxPriorQuestions))

	return b.String()
}

// buildDedup formats prior questions for the prompt, keeping the most recent
// max entries. Returns "None" when there are none.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
