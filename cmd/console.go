package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/careercoach/internal/llm"
	"github.com/abhisek/careercoach/internal/quiz"
)

// consoleAnswerer asks each round on out and reads the answer from in.
type consoleAnswerer struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newConsoleAnswerer(in io.Reader, out io.Writer) *consoleAnswerer {
	return &consoleAnswerer{scanner: bufio.NewScanner(in), out: out}
}

func (c *consoleAnswerer) Answer(ctx context.Context, r quiz.Round) (string, error) {
	if r.Total > 1 {
		fmt.Fprintf(c.out, "── Question %d/%d · %s · %s ──\n", r.Number, r.Total, r.Question.Topic, r.Difficulty)
	} else {
		fmt.Fprintf(c.out, "── %s · %s ──\n", r.Question.Topic, r.Difficulty)
	}
	fmt.Fprintln(c.out, r.Question.Text)
	for i, opt := range r.Question.Options {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprint(c.out, "\nYour answer (1-4): ")

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.scanner.Scan() {
		fmt.Fprintln(c.out, "\n(input closed)")
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

// consoleHooks prints progress the way the full-screen quiz shows it.
func consoleHooks(out io.Writer) quiz.Hooks {
	return quiz.Hooks{
		OnGenerationFailure: func(err *quiz.GenerationError, consecutive int) {
			fmt.Fprintf(out, "Couldn't generate a question on %s (%s). Retrying...\n", err.Topic, llm.Describe(err.Err))
		},
		OnRound: func(o quiz.RoundOutcome) {
			switch {
			case !o.Valid:
				fmt.Fprintln(out, "Invalid input! Please enter a number between 1 and 4.")
				fallthrough
			case !o.Correct:
				q := o.Round.Question
				fmt.Fprintf(out, "\033[31m✗ Wrong!\033[0m The correct answer was %s) %s\n", q.CorrectAnswer, q.CorrectOption())
			default:
				fmt.Fprintf(out, "\033[32m✓ Correct!\033[0m +%d points\n", o.Points)
			}
			if e := o.Round.Question.Explanation; e != "" {
				fmt.Fprintf(out, "Explanation: %s\n", e)
			}
			if c := o.Change; c != nil {
				if c.To.Weight() > c.From.Weight() {
					fmt.Fprintf(out, "Great job! Difficulty increased to %s.\n", strings.ToUpper(string(c.To)))
				} else {
					fmt.Fprintf(out, "You seem to be struggling. Difficulty lowered to %s.\n", strings.ToUpper(string(c.To)))
				}
			}
			fmt.Fprintln(out)
		},
	}
}

// runPlainQuiz plays a full quiz on the terminal without the full-screen UI.
func runPlainQuiz(ctx context.Context, e *env, rounds int, in io.Reader, out io.Writer) error {
	if rounds < 1 {
		rounds = e.cfg.Quiz.Rounds
	}
	fmt.Fprintf(out, "Starting a %d-question quiz. Answer with the option number.\n\n", quiz.NormalizeRounds(rounds))

	rec, err := e.coach.RunQuiz(ctx, e.user(), rounds, newConsoleAnswerer(in, out), consoleHooks(out))
	printSessionSummary(out, rec)
	if err != nil {
		return err
	}
	return nil
}

func printSessionSummary(out io.Writer, rec *quiz.SessionRecord) {
	if rec == nil {
		return
	}
	total := len(rec.Results)
	if rec.Score != nil {
		fmt.Fprintf(out, "Your total score after %d questions is %d points.\n", total, *rec.Score)
	}
	fmt.Fprintf(out, "Correct answers: %d of %d\n", rec.CorrectCount(), total)
	switch rec.EndReason {
	case quiz.EndGenerationFailures:
		fmt.Fprintln(out, "The quiz ended early because questions could not be generated.")
	case quiz.EndAborted:
		fmt.Fprintln(out, "The quiz was stopped early. Answered questions were saved.")
	}
}
