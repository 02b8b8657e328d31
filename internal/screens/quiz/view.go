package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/llm"
	qz "github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/ui/components"
	"github.com/abhisek/careercoach/internal/ui/theme"
)

const maxNotices = 3

func (s *QuizScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch {
	case s.confirm:
		body = components.Card("End quiz?", "Answered rounds are kept in your history.\n\n"+theme.Hint.Render("Y to end, N to keep going"), cw)
	case s.phase == phaseSetup:
		body = s.renderSetup(cw)
	case s.phase == phaseLoading:
		body = s.renderLoading(cw)
	case s.phase == phaseQuestion:
		body = s.renderQuestion(cw)
	case s.phase == phaseFeedback:
		body = s.renderFeedback(cw)
	default:
		body = s.renderDone(cw)
	}

	if n := s.renderNotices(cw); n != "" && !s.confirm {
		body += "\n" + n
	}
	return components.Centered(body, width, height)
}

func (s *QuizScreen) renderSetup(cw int) string {
	if s.opts.Mode == ModeFull {
		return components.Card("New quiz",
			fmt.Sprintf("How many questions? (default %d)\n\n%s", qz.DefaultRounds, s.input.View()), cw)
	}
	return components.Card("Quick question",
		fmt.Sprintf("Topic (%s difficulty)\n\n%s", s.opts.Difficulty, s.input.View()), cw)
}

func (s *QuizScreen) renderLoading(cw int) string {
	return components.Card("", s.spinner.View()+" "+theme.Body.Render(s.status), cw)
}

func (s *QuizScreen) renderHeading() string {
	r := s.round
	level := theme.Difficulty(string(r.Difficulty)).Render(strings.ToUpper(string(r.Difficulty)))
	if s.opts.Mode == ModeSingle {
		return fmt.Sprintf("%s · %s", r.Question.Topic, level)
	}
	return fmt.Sprintf("Q%d of %d · %s · %s", r.Number, r.Total, r.Question.Topic, level)
}

func (s *QuizScreen) renderQuestion(cw int) string {
	return components.Card(s.renderHeading(), s.choice.View(cw-6), cw)
}

func (s *QuizScreen) renderFeedback(cw int) string {
	o := s.outcome
	if o == nil {
		return s.renderLoading(cw)
	}

	var b strings.Builder
	b.WriteString(s.choice.View(cw - 6))
	b.WriteString("\n")
	if o.Correct {
		b.WriteString(theme.Correct.Render(fmt.Sprintf("Correct! +%d points", o.Points)))
	} else {
		q := o.Round.Question
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("Wrong! The correct answer was %s) %s", q.CorrectAnswer, q.CorrectOption())))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(cw - 6).Foreground(theme.TextDim).Render(o.Round.Question.Explanation))
	if s.opts.Mode == ModeFull {
		b.WriteString("\n\n")
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Score: %d", o.Score)))
	}
	return components.Card(s.renderHeading(), b.String(), cw)
}

func (s *QuizScreen) renderDone(cw int) string {
	rec := s.record
	if rec == nil {
		return components.Card("Quiz", "No session was recorded.", cw)
	}

	var b strings.Builder
	total := len(rec.Results)
	if rec.Score != nil {
		fmt.Fprintf(&b, "Your total score after %d questions is %d points.\n", total, *rec.Score)
	}
	fmt.Fprintf(&b, "Correct answers: %d of %d\n", rec.CorrectCount(), total)

	switch rec.EndReason {
	case qz.EndGenerationFailures:
		b.WriteString("\n" + theme.Warning.Render("The quiz ended early because questions could not be generated."))
	case qz.EndAborted:
		b.WriteString("\n" + theme.Warning.Render("The quiz was stopped early."))
	}
	if s.saveErr != nil {
		b.WriteString("\n" + theme.Incorrect.Render("Could not save this session: "+llm.Describe(s.saveErr)))
	} else {
		b.WriteString("\n" + theme.Hint.Render("Saved to your history."))
	}
	return components.Card("Quiz complete", b.String(), cw)
}

func (s *QuizScreen) renderNotices(cw int) string {
	if len(s.notices) == 0 {
		return ""
	}
	notices := s.notices
	if len(notices) > maxNotices {
		notices = notices[len(notices)-maxNotices:]
	}
	var lines []string
	for _, n := range notices {
		lines = append(lines, theme.Warning.Render("• "+n))
	}
	return lipgloss.NewStyle().Width(cw).Render(strings.Join(lines, "\n"))
}
