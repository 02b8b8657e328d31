package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Items are numbered from 1 and the number
// key picks the item directly.
type MenuItem struct {
	Label    string
	Hint     string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical, numbered navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	return m
}

// move steps the selection by delta over enabled items. It stops at the
// ends rather than wrapping.
func (m *Menu) move(delta int) {
	for i := m.Selected + delta; i >= 0 && i < len(m.Items); i += delta {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
	if m.Selected < 0 {
		m.Selected = 0
	}
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch k := kmsg.String(); k {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		return m, m.activate(m.Selected)
	default:
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(m.Items) && !m.Items[n-1].Disabled {
			m.Selected = n - 1
			return m, m.activate(m.Selected)
		}
	}
	return m, nil
}

// View renders the menu. Only the selected item shows its hint.
func (m Menu) View() string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, item := range m.Items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		switch {
		case item.Disabled:
			b.WriteString(dim.Render("    " + label))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + label))
			if item.Hint != "" {
				b.WriteString("  " + theme.Hint.Render(item.Hint))
			}
		default:
			b.WriteString(theme.Unselected.Render("    " + label))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
