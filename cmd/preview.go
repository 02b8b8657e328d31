package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/careercoach/internal/config"
	"github.com/abhisek/careercoach/internal/llm"
	"github.com/abhisek/careercoach/internal/logging"
	"github.com/abhisek/careercoach/internal/questiongen"
	"github.com/abhisek/careercoach/internal/quiz"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview generated questions for a topic (no database)",
	Long: `Generate and interactively answer questions for one topic.

This is a stateless developer tool: nothing is saved and difficulty does not
adapt. Useful for evaluating question quality and comparing models.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("topic", "", "Topic to generate questions for (required)")
	previewCmd.Flags().StringP("difficulty", "d", "easy", "Difficulty: easy, medium or hard")
	previewCmd.Flags().Int("count", 5, "Number of questions to generate")
	_ = previewCmd.MarkFlagRequired("topic")
}

func runPreview(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	diff, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")

	difficulty, err := quiz.ParseDifficulty(diff)
	if err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Console: true})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// No EventRepo: calls are only logged.
	ctx := cmd.Context()
	provider, err := llm.NewProvider(ctx, cfg.LLM.Build(), nil, logger)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	gen := questiongen.New(provider, questiongen.DefaultConfig())
	answerer := newConsoleAnswerer(cmd.InOrStdin(), cmd.OutOrStdout())
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Topic: %s (%s) · model %s\n", topic, difficulty, provider.ModelID())
	fmt.Fprintf(out, "Generating %d questions...\n\n", count)

	var correct, asked int
	for i := 1; i <= count; i++ {
		q, err := gen.Generate(ctx, topic, difficulty)
		if err != nil {
			fmt.Fprintf(out, "Question %d: generation failed: %s\n\n", i, llm.Describe(err))
			continue
		}
		asked++

		round := quiz.Round{Number: i, Total: count, Question: q, Difficulty: difficulty}
		answer, err := answerer.Answer(ctx, round)
		if err != nil {
			break
		}

		choice, ok := quiz.ParseAnswer(answer)
		switch {
		case !ok:
			fmt.Fprintf(out, "(not an option) Answer: %s) %s\n", q.CorrectAnswer, q.CorrectOption())
		case choice == q.CorrectAnswer:
			correct++
			fmt.Fprintln(out, "\033[32m✓ Correct!\033[0m")
		default:
			fmt.Fprintf(out, "\033[31m✗ Wrong.\033[0m Answer: %s) %s\n", q.CorrectAnswer, q.CorrectOption())
		}
		if q.Explanation != "" {
			fmt.Fprintf(out, "Explanation: %s\n", q.Explanation)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "── Summary: %d/%d correct ──\n", correct, asked)
	return nil
}
