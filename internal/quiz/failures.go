package quiz

// DefaultMaxConsecutiveFailures ends a session after this many generation
// failures in a row.
const DefaultMaxConsecutiveFailures = 3

// failureBudget is the bounded retry counter for question generation.
type failureBudget struct {
	limit       int
	consecutive int
	total       int
}

func newFailureBudget(limit int) *failureBudget {
	if limit < 1 {
		limit = DefaultMaxConsecutiveFailures
	}
	return &failureBudget{limit: limit}
}

// fail records a failure and reports whether the budget is exhausted.
func (b *failureBudget) fail() bool {
	b.consecutive++
	b.total++
	return b.consecutive >= b.limit
}

// succeed resets the consecutive counter.
func (b *failureBudget) succeed() {
	b.consecutive = 0
}
