package quiz

// DefaultTopics is the career-domain topic rotation used for full quizzes.
var DefaultTopics = []string{
	"data science",
	"machine learning",
	"deep learning",
	"statistics",
	"data engineering",
	"AI ethics",
}

// TopicSelector picks the topic for a round slot.
type TopicSelector interface {
	Topic(slot int) string
}

// RoundRobin cycles through a fixed topic set by slot index.
type RoundRobin []string

func (r RoundRobin) Topic(slot int) string {
	if len(r) == 0 {
		return DefaultTopics[slot%len(DefaultTopics)]
	}
	return r[slot%len(r)]
}

// FixedTopic always returns the same topic.
type FixedTopic string

func (f FixedTopic) Topic(int) string { return string(f) }
