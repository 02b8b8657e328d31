package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxEvents     = 10
	eventsTimeout = 15 * time.Second

	// breadcrumb marks navigation results rather than event pages.
	breadcrumb = "›"
)

// Job is one entry of the static jobs file.
type Job struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

// Event is an online event found by the content lookup.
type Event struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type jobsFile struct {
	Jobs []Job `json:"jobs"`
}

// loadJobs reads the jobs file. A missing or malformed file yields no jobs.
func loadJobs(path string, logger *zap.Logger) []Job {
	if path == "" {
		return []Job{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read jobs file", zap.String("path", path), zap.Error(err))
		}
		return []Job{}
	}
	var f jobsFile
	if err := json.Unmarshal(data, &f); err != nil {
		logger.Warn("malformed jobs file", zap.String("path", path), zap.Error(err))
		return []Job{}
	}
	if f.Jobs == nil {
		return []Job{}
	}
	return f.Jobs
}

func (s *Server) jobs(c *gin.Context) {
	c.JSON(http.StatusOK, loadJobs(s.config.JobsFile, s.logger))
}

func (s *Server) events(c *gin.Context) {
	c.JSON(http.StatusOK, s.findEvents(c.Request.Context()))
}

// findEvents never fails; lookup errors are logged and yield no events.
func (s *Server) findEvents(ctx context.Context) []Event {
	events := []Event{}
	if s.lookup == nil {
		return events
	}

	ctx, cancel := context.WithTimeout(ctx, eventsTimeout)
	defer cancel()
	candidates, err := s.lookup.Search(ctx, s.config.EventsQuery)
	if err != nil {
		s.logger.Warn("event search failed", zap.String("query", s.config.EventsQuery), zap.Error(err))
		return events
	}

	for i, cand := range candidates {
		if len(events) == maxEvents {
			break
		}
		if cand.Title == "" || strings.Contains(cand.Title, breadcrumb) {
			continue
		}
		if !strings.HasPrefix(cand.URL, "http://") && !strings.HasPrefix(cand.URL, "https://") {
			continue
		}
		events = append(events, Event{ID: i, Title: cand.Title, Description: cand.Snippet, URL: cand.URL})
	}
	return events
}
