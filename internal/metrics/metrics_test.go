package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careercoach/internal/quiz"
)

func TestObserveSession(t *testing.T) {
	m := New()
	score := 30
	m.ObserveSession(&quiz.SessionRecord{
		Type:      quiz.SessionFull,
		Score:     &score,
		EndReason: quiz.EndCompleted,
		Results: []quiz.QuestionResult{
			{Topic: "statistics", Difficulty: quiz.DifficultyEasy, Correct: true},
			{Topic: "statistics", Difficulty: quiz.DifficultyEasy, Correct: false},
			{Topic: "statistics", Difficulty: quiz.DifficultyMedium, Correct: true},
		},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues("full", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answers.WithLabelValues("easy", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answers.WithLabelValues("easy", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answers.WithLabelValues("medium", "true")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSession(&quiz.SessionRecord{})
	m.GenerationFailed(quiz.DifficultyHard)
	m.Recommended("catalog_all")
	m.Lookup("error")
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/jobs", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"jobs": []any{}}) })
	r.GET("/metrics", m.Handler())

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/jobs", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))

	m.Recommended("live")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `careercoach_recommendations_total{source="live"} 1`), body)
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
