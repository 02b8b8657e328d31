package quiz

import "fmt"

// Difficulty is the ordinal level a question is generated and scored at.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// AllDifficulties lists the levels from easiest to hardest.
var AllDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty validates a difficulty label.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
}

// Valid reports whether d is one of the three known levels.
func (d Difficulty) Valid() bool {
	_, err := ParseDifficulty(string(d))
	return err == nil
}

// Weight is the score multiplier for a correct answer at this level.
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 1
	}
}

// Points is the score awarded for a correct answer at this level.
func (d Difficulty) Points() int {
	return d.Weight() * 10
}

// Harder returns the next level up, clamped at hard.
func (d Difficulty) Harder() Difficulty {
	switch d {
	case DifficultyEasy:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Easier returns the next level down, clamped at easy.
func (d Difficulty) Easier() Difficulty {
	switch d {
	case DifficultyHard:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}
