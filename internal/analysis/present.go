package analysis

import "github.com/abhisek/careercoach/internal/quiz"

// TopicSummary is the presentation form of a TopicStat.
type TopicSummary struct {
	Summary string            `json:"summary"`
	Details map[string]string `json:"details"`
}

// PerformanceByTopic renders every topic as summary and per-difficulty lines.
func (r *Report) PerformanceByTopic() map[string]TopicSummary {
	out := make(map[string]TopicSummary, len(r.Topics))
	for _, st := range r.Topics {
		details := make(map[string]string, len(st.ByDifficulty))
		for _, d := range quiz.AllDifficulties {
			if c, ok := st.ByDifficulty[d]; ok && c.Total > 0 {
				details[string(d)] = c.String()
			}
		}
		out[st.Topic] = TopicSummary{Summary: st.Summary(), Details: details}
	}
	return out
}
