package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/careercoach/internal/analysis"
	"github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/recommend"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show performance by topic and weak areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := e.coach.Analyze(cmd.Context(), e.user())
		if err != nil {
			if errors.Is(err, analysis.ErrNotFound) || errors.Is(err, analysis.ErrNoHistory) {
				fmt.Fprintln(cmd.OutOrStdout(), "No quiz history available for analysis.")
				return nil
			}
			return err
		}

		if asJSON(cmd) {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"performance_by_topic": report.PerformanceByTopic(),
				"message":              report.Message,
				"weakest_areas":        report.WeakestAreas(),
			})
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend courses for your weak areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.coach.Recommend(cmd.Context(), e.user())
		if err != nil {
			if errors.Is(err, analysis.ErrNotFound) || errors.Is(err, analysis.ErrNoHistory) {
				fmt.Fprintln(cmd.OutOrStdout(), "No quiz history yet. Take a quiz first.")
				return nil
			}
			return err
		}

		if asJSON(cmd) {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		printRecommendations(cmd.OutOrStdout(), res)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past quiz sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		sessions, err := e.coach.History(cmd.Context(), e.user())
		if err != nil {
			return err
		}

		if asJSON(cmd) {
			if sessions == nil {
				sessions = []quiz.SessionRecord{}
			}
			return writeJSON(cmd.OutOrStdout(), sessions)
		}
		printHistory(cmd.OutOrStdout(), sessions)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, recommendCmd, historyCmd} {
		c.Flags().Bool("json", false, "Print JSON instead of text")
	}
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *analysis.Report) {
	fmt.Fprintln(w, "Performance by Topic")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, st := range r.Topics {
		fmt.Fprintf(w, "%-24s  %s\n", st.Topic, st.Summary())
		for _, d := range quiz.AllDifficulties {
			if c, ok := st.ByDifficulty[d]; ok && c.Total > 0 {
				fmt.Fprintf(w, "  %-22s  %s\n", d, c)
			}
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Message)
	for i, wa := range r.WeakAreas {
		fmt.Fprintf(w, "  %d. %s (%.1f%%)\n", i+1, wa.Topic, wa.Accuracy)
	}
}

func printRecommendations(w io.Writer, res *recommend.Result) {
	if len(res.WeakAreas) > 0 {
		fmt.Fprintf(w, "Weak areas: %s\n\n", strings.Join(res.WeakAreas, ", "))
	}
	if len(res.Resources) == 0 {
		fmt.Fprintln(w, "Nothing to recommend yet. Keep practicing!")
		return
	}
	for i, r := range res.Resources {
		fmt.Fprintf(w, "%d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(w, "   %s\n", r.URL)
		}
		if r.Description != "" {
			fmt.Fprintf(w, "   %s\n", r.Description)
		}
		if r.DifficultyLevel != "" {
			fmt.Fprintf(w, "   Level: %s\n", r.DifficultyLevel)
		}
	}
	fmt.Fprintf(w, "\nSource: %s\n", res.Source)
}

func printHistory(w io.Writer, sessions []quiz.SessionRecord) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No quiz sessions yet.")
		return
	}
	fmt.Fprintf(w, "%-16s  %-8s  %7s  %6s  %s\n", "Date", "Type", "Correct", "Score", "Ended")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		score := "-"
		if s.Score != nil {
			score = fmt.Sprintf("%d", *s.Score)
		}
		fmt.Fprintf(w, "%-16s  %-8s  %3d/%-3d  %6s  %s\n",
			s.Timestamp.Local().Format("2006-01-02 15:04"),
			s.Type, s.CorrectCount(), len(s.Results), score, s.EndReason)
	}
}
