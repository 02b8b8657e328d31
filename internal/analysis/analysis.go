// Package analysis aggregates a user's quiz history into per-topic accuracy
// and ranks weak areas.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/abhisek/careercoach/internal/profile"
	"github.com/abhisek/careercoach/internal/quiz"
)

const (
	// WeakThreshold is the accuracy (percent) below which a topic is weak.
	WeakThreshold = 60.0

	// MinSample is the number of answered questions a topic needs before it
	// can qualify as weak.
	MinSample = 3
)

const (
	MessageWeakAreas  = "Based on your quiz history, here are some areas where you could improve:"
	MessageNoWeakness = "Great job! No significant weak areas identified."
	MessageNoData     = "Not enough data to provide a performance analysis."
)

var (
	// ErrNotFound means no profile exists for the user.
	ErrNotFound = errors.New("user profile not found")

	// ErrNoHistory means the profile exists but holds no quiz sessions.
	ErrNoHistory = errors.New("no quiz history")
)

// Counts is a correct/total tally.
type Counts struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns 100 * correct / total, or 0 for an empty tally.
func (c Counts) Accuracy() float64 {
	if c.Total == 0 {
		return 0
	}
	return 100 * float64(c.Correct) / float64(c.Total)
}

func (c Counts) String() string {
	return fmt.Sprintf("%.1f%% (%d/%d)", c.Accuracy(), c.Correct, c.Total)
}

// TopicStat is the aggregate for one topic. ByDifficulty only holds levels
// that have at least one answered question.
type TopicStat struct {
	Topic        string
	Overall      Counts
	ByDifficulty map[quiz.Difficulty]Counts
}

// Summary renders the overall line, e.g. "66.7% overall (2/3)".
func (s TopicStat) Summary() string {
	return fmt.Sprintf("%.1f%% overall (%d/%d)", s.Overall.Accuracy(), s.Overall.Correct, s.Overall.Total)
}

// WeakArea is a topic that qualified as weak.
type WeakArea struct {
	Topic    string
	Accuracy float64
}

// Report is the result of analyzing one user's history.
type Report struct {
	Message string

	// Topics is sorted by topic name.
	Topics []TopicStat

	// WeakAreas is sorted ascending by accuracy, worst first.
	WeakAreas []WeakArea
}

// WeakestAreas returns the weak topic names in rank order.
func (r *Report) WeakestAreas() []string {
	out := make([]string, len(r.WeakAreas))
	for i, w := range r.WeakAreas {
		out[i] = w.Topic
	}
	return out
}

// Analyzer reads profiles and builds reports.
type Analyzer struct {
	store profile.Store
}

// NewAnalyzer creates an Analyzer over store.
func NewAnalyzer(store profile.Store) *Analyzer {
	return &Analyzer{store: store}
}

// Analyze builds the report for userID. It fails with ErrNotFound or
// ErrNoHistory when there is nothing to analyze.
func (a *Analyzer) Analyze(ctx context.Context, userID string) (*Report, error) {
	p, err := a.store.Find(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if len(p.QuizHistory) == 0 {
		return nil, ErrNoHistory
	}
	return Aggregate(p.QuizHistory), nil
}

// Aggregate folds every result of every session into a Report. It is pure
// and deterministic for a fixed history.
func Aggregate(history []quiz.SessionRecord) *Report {
	byTopic := make(map[string]*TopicStat)
	for _, rec := range history {
		for _, res := range rec.Results {
			st, ok := byTopic[res.Topic]
			if !ok {
				st = &TopicStat{Topic: res.Topic, ByDifficulty: make(map[quiz.Difficulty]Counts)}
				byTopic[res.Topic] = st
			}
			d := st.ByDifficulty[res.Difficulty]
			d.Total++
			st.Overall.Total++
			if res.Correct {
				d.Correct++
				st.Overall.Correct++
			}
			st.ByDifficulty[res.Difficulty] = d
		}
	}

	report := &Report{}
	if len(byTopic) == 0 {
		report.Message = MessageNoData
		return report
	}

	for _, st := range byTopic {
		report.Topics = append(report.Topics, *st)
		acc := st.Overall.Accuracy()
		if st.Overall.Total >= MinSample && acc < WeakThreshold {
			report.WeakAreas = append(report.WeakAreas, WeakArea{Topic: st.Topic, Accuracy: acc})
		}
	}
	sort.Slice(report.Topics, func(i, j int) bool {
		return report.Topics[i].Topic < report.Topics[j].Topic
	})
	sort.Slice(report.WeakAreas, func(i, j int) bool {
		a, b := report.WeakAreas[i], report.WeakAreas[j]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		return a.Topic < b.Topic
	})

	if len(report.WeakAreas) > 0 {
		report.Message = MessageWeakAreas
	} else {
		report.Message = MessageNoWeakness
	}
	return report
}
