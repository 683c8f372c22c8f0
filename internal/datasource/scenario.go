package datasource

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/daviddao/agentroom/internal/model"
)

// Scenario is the mock reference data the room is populated with.
type Scenario struct {
	Title       string
	Objective   string
	Criteria    string
	Agents      []model.Agent
	Iterations  []model.Iteration
	Active      []model.Prompt
	Reserve     []model.Prompt
	Metrics     []model.Metric
	Tasks       []model.Task
	Summary     model.SessionSummary
	InitialLogs []model.LogEntry
}

// Agent returns the agent with the given ID.
func (s *Scenario) Agent(id string) (model.Agent, bool) {
	for _, a := range s.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return model.Agent{}, false
}

// AgentIndex returns the position of id in the roster, or -1.
func (s *Scenario) AgentIndex(id string) int {
	for i, a := range s.Agents {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// DisplayName resolves a participant ID (an agent or the human) to its name.
func (s *Scenario) DisplayName(id string) string {
	if id == model.HumanID {
		return model.HumanName
	}
	if a, ok := s.Agent(id); ok {
		return a.Name
	}
	return id
}

// --- YAML wire format ---

type scenarioFile struct {
	Title      string            `yaml:"title"`
	Objective  string            `yaml:"objective"`
	Criteria   string            `yaml:"success_criteria"`
	Agents     []agentFile       `yaml:"agents"`
	Iterations []model.Iteration `yaml:"iterations"`
	Prompts    struct {
		Active  []model.Prompt `yaml:"active"`
		Reserve []model.Prompt `yaml:"reserve"`
	} `yaml:"prompts"`
	Metrics []model.Metric       `yaml:"metrics"`
	Tasks   []model.Task         `yaml:"tasks"`
	Summary model.SessionSummary `yaml:"summary"`
	Log     []logFile            `yaml:"log"`
}

type agentFile struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Role        string     `yaml:"role"`
	Color       string     `yaml:"color"`
	GlowColor   string     `yaml:"glow_color"`
	Position    [3]float64 `yaml:"position"`
	Status      string     `yaml:"status"`
	Description string     `yaml:"description"`
	Icon        string     `yaml:"icon"`
}

type logFile struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Message string `yaml:"message"`
	Type    string `yaml:"type"`
}

// Load reads and validates the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a YAML scenario. Unknown fields are rejected so typos surface
// instead of silently falling back to defaults.
func Parse(data []byte) (*Scenario, error) {
	var f scenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	s := &Scenario{
		Title:      f.Title,
		Objective:  f.Objective,
		Criteria:   f.Criteria,
		Iterations: f.Iterations,
		Active:     f.Prompts.Active,
		Reserve:    f.Prompts.Reserve,
		Metrics:    f.Metrics,
		Tasks:      f.Tasks,
		Summary:    f.Summary,
	}

	for i, af := range f.Agents {
		st, err := model.ParseAgentStatus(af.Status)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		s.Agents = append(s.Agents, model.Agent{
			ID:          strings.TrimSpace(af.ID),
			Name:        af.Name,
			Role:        af.Role,
			Color:       af.Color,
			GlowColor:   af.GlowColor,
			Position:    af.Position,
			Status:      st,
			Description: af.Description,
			Icon:        af.Icon,
		})
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	for i, lf := range f.Log {
		kind := model.EntryType(lf.Type)
		if lf.Type == "" {
			kind = model.EntrySpeech
		}
		if !kind.Valid() {
			return nil, fmt.Errorf("log %d: unknown type %q", i, lf.Type)
		}
		for _, id := range []string{lf.From, lf.To} {
			if _, ok := s.Agent(id); !ok && id != model.HumanID {
				return nil, fmt.Errorf("log %d: unknown participant %q", i, id)
			}
		}
		s.InitialLogs = append(s.InitialLogs, model.LogEntry{
			FromID:   lf.From,
			FromName: s.DisplayName(lf.From),
			ToID:     lf.To,
			ToName:   s.DisplayName(lf.To),
			Message:  lf.Message,
			Type:     kind,
		})
	}

	s.applyDefaults()
	return s, nil
}

func (s *Scenario) validate() error {
	if len(s.Agents) == 0 {
		return errors.New("scenario has no agents")
	}
	seen := make(map[string]bool, len(s.Agents))
	for i, a := range s.Agents {
		switch {
		case a.ID == "":
			return fmt.Errorf("agent %d: empty id", i)
		case a.ID == model.HumanID:
			return fmt.Errorf("agent %d: id %q is reserved", i, model.HumanID)
		case seen[a.ID]:
			return fmt.Errorf("agent %d: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

func (s *Scenario) applyDefaults() {
	if s.Title == "" {
		s.Title = "Untitled session"
	}
	for i := range s.Agents {
		a := &s.Agents[i]
		if a.Name == "" {
			a.Name = a.ID
		}
		if a.Color == "" {
			a.Color = "#CDD6F4"
		}
		if a.GlowColor == "" {
			a.GlowColor = a.Color
		}
	}
}
