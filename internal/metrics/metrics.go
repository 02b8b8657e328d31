// Package metrics exposes Prometheus instruments for quizzes, question
// generation, recommendations and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/careercoach/internal/quiz"
)

const namespace = "careercoach"

// Metrics holds all instruments. A nil *Metrics records nothing, so
// callers never need to check.
type Metrics struct {
	registry *prometheus.Registry

	sessions           *prometheus.CounterVec
	answers            *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
	recommendations    *prometheus.CounterVec
	lookups            *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates a Metrics on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_sessions_total",
			Help:      "Completed quiz sessions by type and end reason.",
		}, []string{"type", "end_reason"}),
		answers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_answers_total",
			Help:      "Answered quiz rounds by difficulty and outcome.",
		}, []string{"difficulty", "correct"}),
		generationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_generation_failures_total",
			Help:      "Failed question generations by difficulty.",
		}, []string{"difficulty"}),
		recommendations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation calls by the tier that produced the result.",
		}, []string{"source"}),
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_lookups_total",
			Help:      "External content lookups by outcome.",
		}, []string{"outcome"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "endpoint", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 15, 60},
		}, []string{"method", "endpoint"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSession records a finished session and its answered rounds.
func (m *Metrics) ObserveSession(rec *quiz.SessionRecord) {
	if m == nil || rec == nil {
		return
	}
	m.sessions.WithLabelValues(string(rec.Type), string(rec.EndReason)).Inc()
	for _, res := range rec.Results {
		m.answers.WithLabelValues(string(res.Difficulty), strconv.FormatBool(res.Correct)).Inc()
	}
}

// GenerationFailed records one failed question generation.
func (m *Metrics) GenerationFailed(d quiz.Difficulty) {
	if m == nil {
		return
	}
	m.generationFailures.WithLabelValues(string(d)).Inc()
}

// Recommended records which tier produced a recommendation result.
func (m *Metrics) Recommended(source string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(source).Inc()
}

// Lookup records an external lookup outcome: "ok", "empty" or "error".
func (m *Metrics) Lookup(outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
}

// Middleware counts and times every request by its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
