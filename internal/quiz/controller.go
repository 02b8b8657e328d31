package quiz

const (
	// EscalateAfter is the correct streak that moves difficulty up one level.
	EscalateAfter = 3

	// DeescalateAfter is the wrong streak that moves difficulty down one level.
	DeescalateAfter = 2
)

// DifficultyState is the transient adaptive state of one session run.
type DifficultyState struct {
	Current       Difficulty
	CorrectStreak int
	WrongStreak   int
}

// DifficultyChange records a level transition for feedback display.
type DifficultyChange struct {
	From Difficulty
	To   Difficulty
}

// Controller decides the difficulty of the next round from answer streaks.
// It performs no I/O. The zero value is not ready; use NewController.
type Controller struct {
	state DifficultyState
}

// NewController returns a controller starting at easy with empty streaks.
func NewController() *Controller {
	return NewControllerAt(DifficultyEasy)
}

// NewControllerAt returns a controller starting at the given level.
// Unknown levels fall back to easy.
func NewControllerAt(start Difficulty) *Controller {
	if !start.Valid() {
		start = DifficultyEasy
	}
	return &Controller{state: DifficultyState{Current: start}}
}

// Current returns the difficulty for the next question.
func (c *Controller) Current() Difficulty {
	return c.state.Current
}

// State returns a copy of the controller state.
func (c *Controller) State() DifficultyState {
	return c.state
}

// OnCorrect records a correct answer. Returns the level change, if any.
func (c *Controller) OnCorrect() *DifficultyChange {
	c.state.CorrectStreak++
	c.state.WrongStreak = 0
	if c.state.CorrectStreak < EscalateAfter {
		return nil
	}
	c.state.CorrectStreak = 0
	return c.move(c.state.Current.Harder())
}

// OnWrong records a wrong answer. Returns the level change, if any.
func (c *Controller) OnWrong() *DifficultyChange {
	c.state.WrongStreak++
	c.state.CorrectStreak = 0
	if c.state.WrongStreak < DeescalateAfter {
		return nil
	}
	c.state.WrongStreak = 0
	return c.move(c.state.Current.Easier())
}

// OnInvalidInput records an unparseable answer. It counts as wrong.
func (c *Controller) OnInvalidInput() *DifficultyChange {
	return c.OnWrong()
}

// move sets the level and reports a change only when it actually moved
// (escalating at hard or de-escalating at easy is a clamp, not a change).
func (c *Controller) move(to Difficulty) *DifficultyChange {
	from := c.state.Current
	c.state.Current = to
	if from == to {
		return nil
	}
	return &DifficultyChange{From: from, To: to}
}
