package datasource

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/daviddao/agentroom/internal/model"
)

func TestDefaultScenario(t *testing.T) {
	s := Default()

	if len(s.Agents) != 4 {
		t.Fatalf("expected 4 built-in agents, got %d", len(s.Agents))
	}
	atlas, ok := s.Agent("atlas")
	if !ok {
		t.Fatal("missing atlas")
	}
	if atlas.Name != "Atlas" || atlas.Status != model.StatusActive {
		t.Errorf("atlas = %+v", atlas)
	}
	if len(s.Active) != 3 || len(s.Reserve) != 4 {
		t.Errorf("prompts = %d active, %d reserve; want 3, 4", len(s.Active), len(s.Reserve))
	}
	if len(s.Metrics) != 6 {
		t.Errorf("expected 6 metrics, got %d", len(s.Metrics))
	}
	if s.Summary.TotalMessages != 24 {
		t.Errorf("TotalMessages = %d, want 24", s.Summary.TotalMessages)
	}
	if len(s.InitialLogs) == 0 {
		t.Error("built-in scenario should seed the communication log")
	}
	for _, e := range s.InitialLogs {
		if e.FromName == "" || e.ToName == "" {
			t.Errorf("seed entry missing display names: %+v", e)
		}
	}
}

func TestDefaultReturnsFreshCopy(t *testing.T) {
	a := Default()
	a.Agents[0].Name = "changed"
	if Default().Agents[0].Name == "changed" {
		t.Error("Default should not share state between calls")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no agents", "title: x\n", "no agents"},
		{"empty id", "agents:\n  - name: A\n", "empty id"},
		{"reserved id", "agents:\n  - id: human\n", "reserved"},
		{"duplicate id", "agents:\n  - id: a\n  - id: a\n", "duplicate"},
		{"bad status", "agents:\n  - id: a\n    status: asleep\n", "unknown agent status"},
		{"unknown field", "agents:\n  - id: a\ncolour: red\n", "colour"},
		{"bad log participant", "agents:\n  - id: a\nlog:\n  - {from: a, to: ghost, message: hi}\n", "unknown participant"},
		{"bad log type", "agents:\n  - id: a\nlog:\n  - {from: a, to: human, message: hi, type: shout}\n", "unknown type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	s, err := Parse([]byte("agents:\n  - id: solo\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a := s.Agents[0]
	if a.Name != "solo" {
		t.Errorf("Name default = %q, want id", a.Name)
	}
	if a.Color == "" || a.GlowColor != a.Color {
		t.Errorf("color defaults not applied: %+v", a)
	}
	if s.Title == "" {
		t.Error("Title default not applied")
	}
}

func TestParseLogUsesDisplayNames(t *testing.T) {
	s, err := Parse([]byte(`
agents:
  - id: atlas
    name: Atlas
log:
  - {from: human, to: atlas, message: hello}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e := s.InitialLogs[0]
	if e.FromName != model.HumanName || e.ToName != "Atlas" {
		t.Errorf("names = %q -> %q", e.FromName, e.ToName)
	}
	if e.Type != model.EntrySpeech {
		t.Errorf("Type = %q, want speech default", e.Type)
	}
}

func TestLoadWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	writeFile(t, path, "agents: [")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("Load error %v should include path", err)
	}
}

func TestDisplayNameAndIndex(t *testing.T) {
	s := Default()
	if s.DisplayName(model.HumanID) != model.HumanName {
		t.Error("human should resolve to Human")
	}
	if s.DisplayName("nova") != "Nova" {
		t.Error("nova should resolve to Nova")
	}
	if s.DisplayName("ghost") != "ghost" {
		t.Error("unknown IDs should fall back to the ID")
	}
	if s.AgentIndex("vex") != 2 || s.AgentIndex("ghost") != -1 {
		t.Error("AgentIndex mismatch")
	}
}
