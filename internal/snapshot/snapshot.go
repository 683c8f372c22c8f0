// Package snapshot builds immutable data snapshots from the agentroom store.
//
// A DataSnapshot captures the roster, the communication log, and the shared
// UI state at a point in time. Snapshots are rebuilt whenever the store
// signals a change and swapped into the UI model.
package snapshot

import (
	"context"
	"time"

	"github.com/daviddao/agentroom/internal/model"
	"github.com/daviddao/agentroom/internal/store"
)

// AgentView is an agent as it should be drawn right now.
type AgentView struct {
	model.Agent

	// Effective status after applying the current iteration.
	Effective model.AgentStatus

	Sent     int
	Received int
	Selected bool
}

// DataSnapshot is an immutable, self-contained view of the session.
type DataSnapshot struct {
	Title     string
	Objective string
	Criteria  string

	Agents []AgentView
	Log    []model.LogEntry

	Active  []model.Prompt
	Reserve []model.Prompt
	Metrics []model.Metric
	Tasks   []model.Task
	Summary model.SessionSummary

	Iterations     []model.Iteration
	IterationIndex int
	Iteration      model.Iteration
	HasIteration   bool

	Panel         model.Panel
	Routing       model.RoutingMode
	BannerOpen    bool
	BannerAgentID string
	View          model.DashboardView
	SelectedAgent string

	SessionDuration time.Duration
	StartedAt       time.Time
	Playing         bool
	WorkMode        model.WorkMode
	HighContrast    bool

	// Counts.
	TotalEntries int
	HumanEntries int
	Busy         int

	// Timestamp of snapshot creation.
	BuiltAt time.Time
}

// Build queries the store and returns a complete snapshot.
func Build(ctx context.Context, s *store.Store) (*DataSnapshot, error) {
	logs, err := s.Logs(ctx)
	if err != nil {
		return nil, err
	}
	sc := s.Scenario()
	idx, it, hasIt := s.Iteration()
	playing := s.Playing()
	selected := s.SelectedAgent()
	bannerID, bannerOpen := s.Banner()

	sent := make(map[string]int)
	received := make(map[string]int)
	var human int
	for _, e := range logs {
		sent[e.FromID]++
		received[e.ToID]++
		if e.FromID == model.HumanID {
			human++
		}
	}

	agents := make([]AgentView, 0, len(sc.Agents))
	var busy int
	for _, a := range sc.Agents {
		v := AgentView{
			Agent:     a,
			Effective: EffectiveStatus(a, it, hasIt && playing),
			Sent:      sent[a.ID],
			Received:  received[a.ID],
			Selected:  a.ID == selected,
		}
		if v.Effective == model.StatusActive || v.Effective == model.StatusProcessing {
			busy++
		}
		agents = append(agents, v)
	}

	return &DataSnapshot{
		Title:           sc.Title,
		Objective:       sc.Objective,
		Criteria:        sc.Criteria,
		Agents:          agents,
		Log:             logs,
		Active:          sc.Active,
		Reserve:         sc.Reserve,
		Metrics:         sc.Metrics,
		Tasks:           sc.Tasks,
		Summary:         sc.Summary,
		Iterations:      sc.Iterations,
		IterationIndex:  idx,
		Iteration:       it,
		HasIteration:    hasIt,
		Panel:           s.Panel(),
		Routing:         s.RoutingMode(),
		BannerOpen:      bannerOpen,
		BannerAgentID:   bannerID,
		View:            s.DashboardView(),
		SelectedAgent:   selected,
		SessionDuration: s.SessionDuration(),
		StartedAt:       s.StartedAt(),
		Playing:         playing,
		WorkMode:        s.WorkMode(),
		HighContrast:    s.HighContrast(),
		TotalEntries:    len(logs),
		HumanEntries:    human,
		Busy:            busy,
		BuiltAt:         time.Now(),
	}, nil
}

// EffectiveStatus is the status an agent shows: processing while the session
// plays and the agent contributes to the current iteration, otherwise the
// scenario status.
func EffectiveStatus(a model.Agent, it model.Iteration, playing bool) model.AgentStatus {
	if playing {
		if _, ok := it.Contributions[a.ID]; ok {
			return model.StatusProcessing
		}
	}
	return a.Status
}

// Agent returns the view of the agent with the given ID.
func (d *DataSnapshot) Agent(id string) (AgentView, bool) {
	for _, a := range d.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return AgentView{}, false
}
