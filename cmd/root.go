package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/careercoach/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "careercoach",
	Short: "AI career coach for data and AI roles",
	Long: `careercoach: adaptive quizzes, performance analysis and learning
recommendations for careers in data and AI, in the terminal or over HTTP.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{TUI: true, LLM: true})
		if err != nil {
			return err
		}
		defer e.Close()
		return app.Run(cmd.Context(), e.appOptions(nil))
	},
}

// Execute runs the CLI. Cancelling ctx stops long-running commands.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides CAREERCOACH_DB env var)")
	pf.String("config", "", "Path to a YAML config file (default: careercoach.yaml in . or ~/.config/careercoach)")
	pf.StringP("user", "u", "", "User profile to use")
	pf.Bool("ephemeral", false, "Keep everything in memory; nothing is saved")
	pf.String("provider", "", "LLM provider: ollama, anthropic, openai, gemini or openrouter")
	pf.String("model", "", "Model name for the selected provider")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
