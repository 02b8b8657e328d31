package components

import (
	"strconv"
	"strings"
	"unicode"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput is a focused single-line prompt. A numeric input drops typed
// or pasted text that is not all digits.
type TextInput struct {
	model   textinput.Model
	numeric bool
}

func NewTextInput(placeholder string, numeric bool, limit int) TextInput {
	m := textinput.New()
	m.Prompt = "› "
	m.Placeholder = placeholder
	m.CharLimit = max(limit, 0)
	m.Focus()
	return TextInput{model: m, numeric: numeric}
}

func (t TextInput) Init() tea.Cmd {
	return t.model.Focus()
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.numeric && !digitsOnly(msg) {
		return t, nil
	}
	var cmd tea.Cmd
	t.model, cmd = t.model.Update(msg)
	return t, cmd
}

// digitsOnly reports whether msg may reach a numeric input. Keys without
// text, like backspace and arrows, always pass.
func digitsOnly(msg tea.Msg) bool {
	var text string
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		text = msg.Text
	case tea.PasteMsg:
		text = msg.Content
	default:
		return true
	}
	return strings.IndexFunc(text, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

func (t TextInput) View() string { return t.model.View() }

// Value is the input with surrounding space trimmed.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.model.Value())
}

func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Value())
}

func (t *TextInput) Reset() { t.model.Reset() }

func (t *TextInput) SetWidth(w int) { t.model.SetWidth(w) }
