// Package server exposes the coach over HTTP for the web client.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/careercoach/internal/chat"
	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/metrics"
	"github.com/abhisek/careercoach/internal/search"
)

const (
	welcomeMessage = "Welcome to the AI Career Assistant API"

	shutdownTimeout = 5 * time.Second
)

// Config controls the HTTP surface.
type Config struct {
	Addr        string
	CORSOrigins []string

	// JobsFile is a JSON document {"jobs": [...]}. Missing means no jobs.
	JobsFile string

	// EventsQuery is the lookup query behind /api/events.
	EventsQuery string
}

// Options holds the server's collaborators. Lookup, Metrics and Logger may
// be nil.
type Options struct {
	Coach   *coach.Coach
	Chat    *chat.Service
	Lookup  search.ContentLookup
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Config  Config
}

// Server is the HTTP API.
type Server struct {
	coach   *coach.Coach
	chat    *chat.Service
	lookup  search.ContentLookup
	metrics *metrics.Metrics
	logger  *zap.Logger
	config  Config
	engine  *gin.Engine
}

// New builds the router.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.EventsQuery == "" {
		cfg.EventsQuery = "online data science events"
	}

	s := &Server{
		coach:   opts.Coach,
		chat:    opts.Chat,
		lookup:  opts.Lookup,
		metrics: opts.Metrics,
		logger:  logger,
		config:  cfg,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), s.metrics.Middleware())

	if len(s.config.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", recommendationSourceHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": welcomeMessage})
	})
	if s.metrics != nil {
		r.GET("/metrics", s.metrics.Handler())
	}

	api := r.Group("/api")
	{
		chats := api.Group("/chats/:user")
		chats.GET("", s.listChats)
		chats.POST("", s.createChat)
		chats.GET("/:chat", s.chatHistory)
		chats.DELETE("/:chat", s.deleteChat)
		chats.POST("/:chat/messages", s.postMessage)

		api.GET("/quiz", s.getQuestion)
		api.POST("/quiz/result", s.submitResult)
		api.GET("/performance/:user", s.performance)
		api.GET("/recommendations/:user", s.recommendations)
		api.GET("/history/:user", s.history)

		api.GET("/jobs", s.jobs)
		api.GET("/events", s.events)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.config.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("http request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("http request", fields...)
		default:
			logger.Debug("http request", fields...)
		}
	}
}

// abort responds with a JSON error body and records err on the context.
func abort(c *gin.Context, status int, detail string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
