package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abhisek/careercoach/internal/analysis"
	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/recommend"
)

const (
	noHistoryMessage           = "No quiz history available for analysis."
	recommendationSourceHeader = "X-Recommendation-Source"
)

type questionResponse struct {
	Question      string          `json:"question"`
	Options       []string        `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
	Topic         string          `json:"topic"`
	Difficulty    quiz.Difficulty `json:"difficulty"`
}

type resultSubmission struct {
	UserID    string                `json:"user_id" binding:"required"`
	Timestamp time.Time             `json:"timestamp"`
	Type      quiz.SessionType      `json:"type" binding:"required"`
	Score     *int                  `json:"score"`
	Results   []quiz.QuestionResult `json:"results"`
}

type performanceResponse struct {
	Message            string                           `json:"message"`
	PerformanceByTopic map[string]analysis.TopicSummary `json:"performance_by_topic"`
	WeakestAreas       []string                         `json:"weakest_areas"`
}

func (s *Server) getQuestion(c *gin.Context) {
	difficulty, err := quiz.ParseDifficulty(c.DefaultQuery("difficulty", string(quiz.DifficultyEasy)))
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	q, err := s.coach.Question(c.Request.Context(), c.DefaultQuery("topic", coach.RandomTopic), difficulty)
	if err != nil {
		abort(c, http.StatusBadGateway, "Error generating quiz question.", err)
		return
	}
	c.JSON(http.StatusOK, questionResponse{
		Question:      q.Text,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Topic:         q.Topic,
		Difficulty:    q.Difficulty,
	})
}

func (s *Server) submitResult(c *gin.Context) {
	var sub resultSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		abort(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if sub.Timestamp.IsZero() {
		sub.Timestamp = time.Now().UTC()
	}
	rec := &quiz.SessionRecord{
		ID:        uuid.NewString(),
		Timestamp: sub.Timestamp,
		Type:      sub.Type,
		Score:     sub.Score,
		Results:   sub.Results,
		EndReason: quiz.EndCompleted,
	}
	if rec.Results == nil {
		rec.Results = []quiz.QuestionResult{}
	}
	if err := rec.Validate(); err != nil {
		abort(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	if err := s.coach.SubmitResult(c.Request.Context(), sub.UserID, rec); err != nil {
		abort(c, http.StatusInternalServerError, "Error saving quiz results.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Quiz results saved."})
}

func (s *Server) performance(c *gin.Context) {
	report, err := s.coach.Analyze(c.Request.Context(), c.Param("user"))
	switch {
	case errors.Is(err, analysis.ErrNotFound):
		abort(c, http.StatusNotFound, "User profile not found.", err)
		return
	case errors.Is(err, analysis.ErrNoHistory):
		c.JSON(http.StatusOK, performanceResponse{
			Message:            noHistoryMessage,
			PerformanceByTopic: map[string]analysis.TopicSummary{},
			WeakestAreas:       []string{},
		})
		return
	case err != nil:
		abort(c, http.StatusInternalServerError, "An unexpected error occurred.", err)
		return
	}

	c.JSON(http.StatusOK, performanceResponse{
		Message:            report.Message,
		PerformanceByTopic: report.PerformanceByTopic(),
		WeakestAreas:       report.WeakestAreas(),
	})
}

func (s *Server) recommendations(c *gin.Context) {
	res, err := s.coach.Recommend(c.Request.Context(), c.Param("user"))
	if err != nil {
		abort(c, http.StatusInternalServerError, "Failed to get recommendations.", err)
		return
	}
	if res.Resources == nil {
		res.Resources = []recommend.Resource{}
	}
	c.Header(recommendationSourceHeader, string(res.Source))
	c.JSON(http.StatusOK, res.Resources)
}

func (s *Server) history(c *gin.Context) {
	sessions, err := s.coach.History(c.Request.Context(), c.Param("user"))
	if err != nil {
		abort(c, http.StatusInternalServerError, "Failed to load history.", err)
		return
	}
	if sessions == nil {
		sessions = []quiz.SessionRecord{}
	}
	c.JSON(http.StatusOK, sessions)
}
