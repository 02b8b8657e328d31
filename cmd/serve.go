package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/careercoach/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the quiz, analytics, recommendation and chat operations over HTTP.

The server exposes /metrics for Prometheus and shuts down gracefully on
SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{LLM: true, Metrics: true})
		if err != nil {
			return err
		}
		defer e.Close()

		srv := server.New(server.Options{
			Coach:   e.coach,
			Chat:    e.chat,
			Lookup:  e.lookup,
			Metrics: e.metrics,
			Logger:  e.logger,
			Config: server.Config{
				Addr:        e.cfg.Server.Addr,
				CORSOrigins: e.cfg.Server.CORSOrigins,
				JobsFile:    e.cfg.Server.JobsFile,
				EventsQuery: e.cfg.Server.EventsQuery,
			},
		})
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8000)")
}
