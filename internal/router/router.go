// Package router keeps the stack of screens the TUI navigates through.
// Screens ask for navigation by returning one of the *ScreenMsg messages.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careercoach/internal/screen"
)

type PushScreenMsg struct {
	Screen screen.Screen
}

type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the active screen at the same depth, e.g. to
// restart a finished quiz.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// Router is a stack of screens. The bottom screen never leaves.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop drops the active screen unless it is the root.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) > 1 {
		r.release(len(r.stack) - 1)
		r.stack = r.stack[:len(r.stack)-1]
	}
	return nil
}

func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) == 0 {
		return r.Push(s)
	}
	r.release(len(r.stack) - 1)
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// CloseAll releases every screen, top first. The app calls it on exit.
func (r *Router) CloseAll() {
	for i := len(r.stack) - 1; i >= 0; i-- {
		r.release(i)
	}
}

// release stops background work owned by the screen at depth i.
func (r *Router) release(i int) {
	if c, ok := r.stack[i].(screen.Closer); ok {
		c.Close()
	}
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int { return len(r.stack) }

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	top := r.Active()
	if top == nil {
		return nil
	}
	next, cmd := top.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if top := r.Active(); top != nil {
		return top.View(width, height)
	}
	return ""
}
