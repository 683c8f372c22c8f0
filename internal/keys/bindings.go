package keys

import "github.com/charmbracelet/bubbles/key"

// Scope names.
const (
	ScopeBase   = "base"
	ScopeBanner = "banner"
)

// Terminals cannot report ctrl+digit, so the Ctrl+1/2/3 jumps are bound to
// alt+digit and the function keys instead.

// BaseScope is active while no banner is open.
func BaseScope() Scope {
	return Scope{
		Name: ScopeBase,
		Bindings: []Binding{
			{key.NewBinding(key.WithKeys("alt+1", "f1"), key.WithHelp("alt+1", "metrics")), ActionViewMetrics},
			{key.NewBinding(key.WithKeys("alt+2", "f2"), key.WithHelp("alt+2", "chat")), ActionViewChat},
			{key.NewBinding(key.WithKeys("alt+3", "f3"), key.WithHelp("alt+3", "summary")), ActionViewSummary},
			{key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open banner")), ActionOpenBanner},
			{key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "prev agent")), ActionSelectUp},
			{key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "next agent")), ActionSelectDown},
			{key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")), ActionTogglePlay},
			{key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "work mode")), ActionCycleWorkMode},
			{key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next iteration")), ActionNextIteration},
			{key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "contrast")), ActionToggleContrast},
			{key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close banner")), ActionCloseBanner},
			{key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")), ActionHelp},
			{key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")), ActionQuit},
		},
	}
}

// BannerScope is pushed while a banner is open. It is modal: unbound keys
// go to the chat input.
func BannerScope() Scope {
	return Scope{
		Name:  ScopeBanner,
		Modal: true,
		Bindings: []Binding{
			{key.NewBinding(key.WithKeys("alt+1", "f1"), key.WithHelp("alt+1", "chat")), ActionPanelChat},
			{key.NewBinding(key.WithKeys("alt+2", "f2"), key.WithHelp("alt+2", "prompts")), ActionPanelPrompts},
			{key.NewBinding(key.WithKeys("alt+3", "f3"), key.WithHelp("alt+3", "metrics")), ActionPanelMetrics},
			{key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev panel")), ActionPanelPrev},
			{key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next panel")), ActionPanelNext},
			{key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")), ActionCloseBanner},
			{key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")), ActionSend},
			{key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "routing")), ActionNextRouting},
			{key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "hide targets")), ActionHideTargets},
			{key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "input mode")), ActionCycleInput},
			{key.NewBinding(key.WithKeys("f5"), key.WithHelp("f5", "send to all")), ActionRouteAll},
			{key.NewBinding(key.WithKeys("f6"), key.WithHelp("f6", "selected")), ActionRouteSelected},
			{key.NewBinding(key.WithKeys("f7"), key.WithHelp("f7", "cycle")), ActionRouteCycle},
			{key.NewBinding(key.WithKeys("f8"), key.WithHelp("f8", "sequence")), ActionRouteSequence},
			{key.NewBinding(key.WithKeys("f9"), key.WithHelp("f9", "parallel")), ActionRouteParallel},
			{key.NewBinding(key.WithKeys("f10"), key.WithHelp("f10", "direct")), ActionRouteDirect},
			{key.NewBinding(key.WithKeys("f11"), key.WithHelp("f11", "human")), ActionRouteHuman},
			{key.NewBinding(key.WithKeys("f12"), key.WithHelp("f12", "bookmark")), ActionRouteBookmark},
			{key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")), ActionQuit},
		},
	}
}
