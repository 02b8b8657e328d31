package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every generated question; the first
	// failure rejects it.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorQuestions caps the "already asked" list sent per topic.
	MaxPriorQuestions int
}

// DefaultConfig returns a Config with the structural validator and
// recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators:        []Validator{&StructuralValidator{}},
		MaxTokens:         512,
		Temperature:       0.7,
		MaxPriorQuestions: 8,
	}
}
