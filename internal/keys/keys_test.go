package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func alt(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Alt: true}
}

func TestBaseScopeDispatch(t *testing.T) {
	d := NewDispatcher(BaseScope())
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Action
	}{
		{"alt+1 metrics", alt("1"), ActionViewMetrics},
		{"alt+2 chat", alt("2"), ActionViewChat},
		{"f3 summary", tea.KeyMsg{Type: tea.KeyF3}, ActionViewSummary},
		{"enter opens", tea.KeyMsg{Type: tea.KeyEnter}, ActionOpenBanner},
		{"j selects down", runes("j"), ActionSelectDown},
		{"up selects up", tea.KeyMsg{Type: tea.KeyUp}, ActionSelectUp},
		{"space plays", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, ActionTogglePlay},
		{"q quits", runes("q"), ActionQuit},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, ActionQuit},
		{"? help", runes("?"), ActionHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Dispatch(tt.msg)
			if !ok || got != tt.want {
				t.Errorf("Dispatch(%q) = %v, %v; want %v", tt.msg.String(), got, ok, tt.want)
			}
		})
	}
}

func TestUnboundKey(t *testing.T) {
	d := NewDispatcher(BaseScope())
	if a, ok := d.Dispatch(runes("z")); ok || a != ActionNone {
		t.Errorf("Dispatch(z) = %v, %v; want none", a, ok)
	}
}

func TestBannerScopeShadowsBase(t *testing.T) {
	d := NewDispatcher(BaseScope())
	d.Push(BannerScope())

	got, _ := d.Dispatch(alt("1"))
	if got != ActionPanelChat {
		t.Errorf("alt+1 with banner open = %v, want panel chat", got)
	}
	got, _ = d.Dispatch(tea.KeyMsg{Type: tea.KeyEnter})
	if got != ActionSend {
		t.Errorf("enter with banner open = %v, want send", got)
	}
}

func TestModalScopeBlocksFallthrough(t *testing.T) {
	d := NewDispatcher(BaseScope())
	d.Push(BannerScope())

	for _, s := range []string{"q", "w", "c", "n", "j"} {
		if a, ok := d.Dispatch(runes(s)); ok {
			t.Errorf("Dispatch(%q) under banner = %v; want it left for the input", s, a)
		}
	}
	if a, _ := d.Dispatch(tea.KeyMsg{Type: tea.KeyCtrlC}); a != ActionQuit {
		t.Errorf("ctrl+c under banner = %v, want quit", a)
	}
}

func TestNonModalScopeFallsThrough(t *testing.T) {
	d := NewDispatcher(BaseScope())
	d.Push(Scope{Name: "overlay", Bindings: []Binding{
		{key.NewBinding(key.WithKeys("x")), ActionHideTargets},
	}})

	if a, _ := d.Dispatch(runes("x")); a != ActionHideTargets {
		t.Errorf("x = %v, want overlay binding", a)
	}
	if a, _ := d.Dispatch(runes("q")); a != ActionQuit {
		t.Errorf("q = %v, want base binding through a non-modal scope", a)
	}
}

func TestPopRestoresBase(t *testing.T) {
	d := NewDispatcher(BaseScope())
	d.Push(BannerScope())
	if !d.Pop(ScopeBanner) {
		t.Fatal("Pop(banner) should succeed")
	}
	if a, _ := d.Dispatch(alt("1")); a != ActionViewMetrics {
		t.Errorf("alt+1 after pop = %v, want view metrics", a)
	}
	if a, _ := d.Dispatch(runes("q")); a != ActionQuit {
		t.Errorf("q after pop = %v, want quit", a)
	}
}

func TestPushSameScopeTwiceIsNoop(t *testing.T) {
	d := NewDispatcher(BaseScope())
	d.Push(BannerScope())
	d.Push(BannerScope())
	d.Pop(ScopeBanner)
	if top, _ := d.Top(); top.Name != ScopeBase {
		t.Errorf("top after single pop = %q, want base", top.Name)
	}
}

func TestPopWrongNameOrBase(t *testing.T) {
	d := NewDispatcher(BaseScope())
	if d.Pop(ScopeBase) {
		t.Error("the base scope must never be popped")
	}
	d.Push(BannerScope())
	if d.Pop("overlay") {
		t.Error("Pop of a scope that is not on top should fail")
	}
	if top, _ := d.Top(); top.Name != ScopeBanner {
		t.Errorf("top after failed pop = %q, want banner", top.Name)
	}
}

func TestRoutingFunctionKeys(t *testing.T) {
	d := NewDispatcher(BaseScope())
	d.Push(BannerScope())
	tests := []struct {
		typ  tea.KeyType
		want Action
	}{
		{tea.KeyF5, ActionRouteAll},
		{tea.KeyF6, ActionRouteSelected},
		{tea.KeyF7, ActionRouteCycle},
		{tea.KeyF8, ActionRouteSequence},
		{tea.KeyF9, ActionRouteParallel},
		{tea.KeyF10, ActionRouteDirect},
		{tea.KeyF11, ActionRouteHuman},
		{tea.KeyF12, ActionRouteBookmark},
	}
	for _, tt := range tests {
		msg := tea.KeyMsg{Type: tt.typ}
		if a, _ := d.Dispatch(msg); a != tt.want {
			t.Errorf("%s = %v, want %v", msg.String(), a, tt.want)
		}
	}
}

func TestHelpFollowsTopScope(t *testing.T) {
	d := NewDispatcher(BaseScope())
	if got := len(d.ShortHelp()); got != 6 {
		t.Errorf("ShortHelp len = %d, want 6", got)
	}
	d.Push(BannerScope())
	full := d.FullHelp()
	total := 0
	for _, col := range full {
		if len(col) > 4 {
			t.Errorf("help column has %d bindings, want at most 4", len(col))
		}
		total += len(col)
	}
	if total != len(BannerScope().Bindings) {
		t.Errorf("FullHelp covers %d bindings, want %d", total, len(BannerScope().Bindings))
	}
}
