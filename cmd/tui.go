package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/careercoach/internal/app"
	"github.com/abhisek/careercoach/internal/quiz"
	chatscreen "github.com/abhisek/careercoach/internal/screens/chat"
	quizscreen "github.com/abhisek/careercoach/internal/screens/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take an adaptive multiple-choice quiz",
	Long: `Take a multi-round quiz. Difficulty starts at easy, moves up after three
correct answers in a row and down after two wrong ones. Results are saved to
your history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rounds, _ := cmd.Flags().GetInt("rounds")
		plain, _ := cmd.Flags().GetBool("plain")

		e, err := newEnv(cmd, envOptions{TUI: !plain, LLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		if plain {
			return runPlainQuiz(cmd.Context(), e, rounds, cmd.InOrStdin(), cmd.OutOrStdout())
		}
		start := quizscreen.New(quizscreen.Options{Coach: e.coach, User: e.user(), Mode: quizscreen.ModeFull, Rounds: rounds})
		return app.Run(cmd.Context(), e.appOptions(start))
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [topic]",
	Short: "Answer a single question on a topic",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		diff, _ := cmd.Flags().GetString("difficulty")
		difficulty, err := quiz.ParseDifficulty(diff)
		if err != nil {
			return err
		}
		topic := ""
		if len(args) == 1 {
			topic = args[0]
		}

		e, err := newEnv(cmd, envOptions{TUI: true, LLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		start := quizscreen.New(quizscreen.Options{
			Coach:      e.coach,
			User:       e.user(),
			Mode:       quizscreen.ModeSingle,
			Topic:      topic,
			Difficulty: difficulty,
		})
		return app.Run(cmd.Context(), e.appOptions(start))
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the career coach",
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, _ := cmd.Flags().GetString("resume")

		e, err := newEnv(cmd, envOptions{TUI: true, LLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		if chatID != "" {
			if ok, err := chatExists(cmd.Context(), e, chatID); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("chat %q not found for user %q", chatID, e.user())
			}
		}

		start := chatscreen.New(chatscreen.Options{
			Chat:   e.chat,
			Coach:  e.coach,
			User:   e.user(),
			Logger: e.logger,
			ChatID: chatID,
		})
		return app.Run(cmd.Context(), e.appOptions(start))
	},
}

func init() {
	quizCmd.Flags().IntP("rounds", "r", 0, "Number of questions (0 asks)")
	quizCmd.Flags().Bool("plain", false, "Line-based quiz on stdin/stdout instead of the full-screen UI")

	askCmd.Flags().StringP("difficulty", "d", "medium", "Difficulty: easy, medium or hard")

	chatCmd.Flags().String("resume", "", "Resume the chat with this ID (see `careercoach chats`)")
}
