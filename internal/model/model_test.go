package model

import "testing"

func TestPanelNavigationNeverWraps(t *testing.T) {
	// Walk every next/prev sequence up to length 6 from every panel.
	var walk func(p Panel, depth int)
	walk = func(p Panel, depth int) {
		if p.Index() < 0 || p.Index() > 2 {
			t.Fatalf("panel index %d out of range", p.Index())
		}
		if depth == 0 {
			return
		}
		walk(p.Next(), depth-1)
		walk(p.Prev(), depth-1)
	}
	for _, p := range Panels() {
		walk(p, 6)
	}

	if PanelMetrics.Next() != PanelMetrics {
		t.Error("Next from metrics should stay on metrics")
	}
	if PanelChat.Prev() != PanelChat {
		t.Error("Prev from chat should stay on chat")
	}
	if PanelChat.Next() != PanelPrompts || PanelPrompts.Next() != PanelMetrics {
		t.Error("Next should follow chat -> prompts -> metrics")
	}
}

func TestPanelBounds(t *testing.T) {
	if !PanelChat.IsFirst() || PanelChat.IsLast() {
		t.Error("chat should be first and not last")
	}
	if !PanelMetrics.IsLast() || PanelMetrics.IsFirst() {
		t.Error("metrics should be last and not first")
	}
	if Panel(7).Valid() {
		t.Error("Panel(7) should not be valid")
	}
}

func TestParsePanel(t *testing.T) {
	tests := []struct {
		input string
		want  Panel
		err   bool
	}{
		{"chat", PanelChat, false},
		{"Prompts", PanelPrompts, false},
		{"m", PanelMetrics, false},
		{"summary", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePanel(tt.input)
			if tt.err {
				if err == nil {
					t.Errorf("ParsePanel(%q) expected error", tt.input)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParsePanel(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestParseWorkMode(t *testing.T) {
	tests := []struct {
		input string
		want  WorkMode
		err   bool
	}{
		{"open", WorkOpen, false},
		{"Closed", WorkClosed, false},
		{"review", WorkReview, false},
		{"draft", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseWorkMode(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("ParseWorkMode(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseWorkMode(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
}

func TestRoutingModeRevealsTargets(t *testing.T) {
	reveal := map[RoutingMode]bool{
		RouteAll:      false,
		RouteSelected: true,
		RouteCycle:    true,
		RouteSequence: true,
		RouteParallel: true,
		RouteDirect:   true,
		RouteHuman:    true,
		RouteBookmark: false,
	}
	if len(RoutingModes()) != 8 {
		t.Fatalf("expected 8 routing modes, got %d", len(RoutingModes()))
	}
	for _, m := range RoutingModes() {
		if m.RevealsTargets() != reveal[m] {
			t.Errorf("%s.RevealsTargets() = %v, want %v", m, m.RevealsTargets(), reveal[m])
		}
	}
}

func TestRoutingModeNextWraps(t *testing.T) {
	if RouteBookmark.Next() != RouteAll {
		t.Errorf("bookmark.Next() = %s, want all", RouteBookmark.Next())
	}
	if RouteAll.Next() != RouteSelected {
		t.Errorf("all.Next() = %s, want selected", RouteAll.Next())
	}
}

func TestParseRoutingMode(t *testing.T) {
	for _, m := range RoutingModes() {
		got, err := ParseRoutingMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseRoutingMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseRoutingMode("broadcast"); err == nil {
		t.Error("ParseRoutingMode should reject unknown modes")
	}
}

func TestParseAgentStatus(t *testing.T) {
	tests := []struct {
		input string
		want  AgentStatus
		err   bool
	}{
		{"", StatusIdle, false},
		{"idle", StatusIdle, false},
		{"Active", StatusActive, false},
		{"processing", StatusProcessing, false},
		{"complete", StatusComplete, false},
		{"sleeping", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAgentStatus(tt.input)
		if tt.err != (err != nil) {
			t.Errorf("ParseAgentStatus(%q) err = %v, want err=%v", tt.input, err, tt.err)
			continue
		}
		if !tt.err && got != tt.want {
			t.Errorf("ParseAgentStatus(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLogEntryInvolves(t *testing.T) {
	e := LogEntry{FromID: HumanID, ToID: "atlas"}
	if !e.Involves("atlas") || !e.Involves(HumanID) {
		t.Error("entry should involve both sender and receiver")
	}
	if e.Involves("nova") {
		t.Error("entry should not involve an unrelated agent")
	}
}

func TestCycles(t *testing.T) {
	if WorkReview.Next() != WorkOpen {
		t.Error("work mode should wrap review -> open")
	}
	if InputGesture.Next() != InputText {
		t.Error("input mode should wrap gesture -> text")
	}
}

func TestParseDashboardView(t *testing.T) {
	for i, name := range []string{"metrics", "chat", "summary"} {
		v, err := ParseDashboardView(name)
		if err != nil {
			t.Fatalf("ParseDashboardView(%q): %v", name, err)
		}
		if v != DashboardViews()[i] {
			t.Errorf("ParseDashboardView(%q) = %v", name, v)
		}
	}
	if _, err := ParseDashboardView("prompts"); err == nil {
		t.Error("prompts is a banner panel, not a dashboard view")
	}
}

func TestAgentInitial(t *testing.T) {
	if got := (Agent{Name: "Atlas"}).Initial(); got != "A" {
		t.Errorf("Initial() = %q, want A", got)
	}
	if got := (Agent{}).Initial(); got != "?" {
		t.Errorf("Initial() of empty name = %q, want ?", got)
	}
}
