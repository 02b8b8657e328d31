package quiz

import "strings"

// ParseAnswer normalizes a participant's answer. Only a single numeral
// "1".."4" (surrounding whitespace ignored) is a valid choice.
func ParseAnswer(input string) (choice string, ok bool) {
	s := strings.TrimSpace(input)
	if len(s) != 1 || s[0] < '1' || s[0] > '4' {
		return "", false
	}
	return s, true
}
