// Package keys dispatches key presses through a stack of binding scopes.
//
// The innermost (most recently pushed) scope is consulted first, so a modal
// scope shadows the bindings of the scopes beneath it. There is exactly one
// dispatcher per program; scopes are pushed when a modal mounts and popped
// when it unmounts.
package keys

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is what a binding resolves to.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionHelp

	// Base (dashboard) actions.
	ActionViewMetrics
	ActionViewChat
	ActionViewSummary
	ActionSelectUp
	ActionSelectDown
	ActionOpenBanner
	ActionTogglePlay
	ActionCycleWorkMode
	ActionToggleContrast
	ActionNextIteration

	// Banner actions.
	ActionCloseBanner
	ActionPanelChat
	ActionPanelPrompts
	ActionPanelMetrics
	ActionPanelPrev
	ActionPanelNext
	ActionSend
	ActionNextRouting
	ActionHideTargets
	ActionCycleInput
	ActionRouteAll
	ActionRouteSelected
	ActionRouteCycle
	ActionRouteSequence
	ActionRouteParallel
	ActionRouteDirect
	ActionRouteHuman
	ActionRouteBookmark
)

// Binding pairs a key binding with the action it triggers.
type Binding struct {
	Key    key.Binding
	Action Action
}

// Scope is a named set of bindings. A modal scope hides every scope beneath
// it: keys it does not bind resolve to nothing and fall through to the
// focused widget instead.
type Scope struct {
	Name     string
	Modal    bool
	Bindings []Binding
}

// Dispatcher resolves key presses against a scope stack.
type Dispatcher struct {
	stack []Scope
}

// NewDispatcher returns a dispatcher with base as its bottom scope.
func NewDispatcher(base Scope) *Dispatcher {
	return &Dispatcher{stack: []Scope{base}}
}

// Push mounts a scope on top of the stack. Pushing a scope whose name is
// already on top is a no-op, so repeated mounts never double-register.
func (d *Dispatcher) Push(s Scope) {
	if top, ok := d.Top(); ok && top.Name == s.Name {
		return
	}
	d.stack = append(d.stack, s)
}

// Pop unmounts the named scope if it is on top. It reports whether a scope
// was removed. The bottom scope is never popped.
func (d *Dispatcher) Pop(name string) bool {
	if len(d.stack) <= 1 {
		return false
	}
	if d.stack[len(d.stack)-1].Name != name {
		return false
	}
	d.stack = d.stack[:len(d.stack)-1]
	return true
}

// Top returns the innermost scope.
func (d *Dispatcher) Top() (Scope, bool) {
	if len(d.stack) == 0 {
		return Scope{}, false
	}
	return d.stack[len(d.stack)-1], true
}

// Dispatch resolves msg to an action, searching from the innermost scope out.
func (d *Dispatcher) Dispatch(msg tea.KeyMsg) (Action, bool) {
	for i := len(d.stack) - 1; i >= 0; i-- {
		for _, b := range d.stack[i].Bindings {
			if key.Matches(msg, b.Key) {
				return b.Action, true
			}
		}
		if d.stack[i].Modal {
			break
		}
	}
	return ActionNone, false
}

// Active returns the key bindings of the innermost scope, for help rendering.
func (d *Dispatcher) Active() []key.Binding {
	top, ok := d.Top()
	if !ok {
		return nil
	}
	out := make([]key.Binding, 0, len(top.Bindings))
	for _, b := range top.Bindings {
		out = append(out, b.Key)
	}
	return out
}

// ShortHelp implements help.KeyMap over the innermost scope.
func (d *Dispatcher) ShortHelp() []key.Binding {
	all := d.Active()
	if len(all) > 6 {
		return all[:6]
	}
	return all
}

// FullHelp implements help.KeyMap over the innermost scope, four per column.
func (d *Dispatcher) FullHelp() [][]key.Binding {
	all := d.Active()
	var cols [][]key.Binding
	for len(all) > 0 {
		n := min(4, len(all))
		cols = append(cols, all[:n])
		all = all[n:]
	}
	return cols
}
