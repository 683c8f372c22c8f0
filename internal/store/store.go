// Package store holds the process-wide UI state of an agentroom session.
//
// A Store is created by the composition root and handed to every consumer.
// All accessors are safe for concurrent use; in practice they are called from
// the bubbletea update loop, plus the watcher and timer goroutines that feed it.
// Subscribers are signalled after every mutation that changed state.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/daviddao/agentroom/internal/commlog"
	"github.com/daviddao/agentroom/internal/datasource"
	"github.com/daviddao/agentroom/internal/model"
)

// ErrUnknownAgent is returned when an agent ID is not in the current scenario.
var ErrUnknownAgent = errors.New("unknown agent")

// Store is the shared state container.
type Store struct {
	mu sync.RWMutex

	scenario *datasource.Scenario
	log      commlog.Log

	panel         model.Panel
	routing       model.RoutingMode
	bannerOpen    bool
	bannerAgentID string
	generation    uint64

	highContrast  bool
	playing       bool
	elapsed       time.Duration
	workMode      model.WorkMode
	iteration     int
	selectedAgent string
	view          model.DashboardView
	startedAt     time.Time

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// New creates a store over scenario s and communication log l, seeding the
// log with the scenario's initial entries.
func New(ctx context.Context, s *datasource.Scenario, l commlog.Log) (*Store, error) {
	if s == nil || len(s.Agents) == 0 {
		return nil, errors.New("store: scenario has no agents")
	}
	for _, e := range s.InitialLogs {
		if _, err := l.Append(ctx, e); err != nil {
			return nil, fmt.Errorf("seed log: %w", err)
		}
	}
	st := &Store{
		scenario:      s,
		log:           l,
		panel:         model.PanelChat,
		routing:       model.RouteAll,
		playing:       true,
		selectedAgent: s.Agents[0].ID,
		startedAt:     time.Now(),
		subs:          make(map[int]chan struct{}),
	}
	st.iteration = firstActiveIteration(s)
	return st, nil
}

func firstActiveIteration(s *datasource.Scenario) int {
	for i, it := range s.Iterations {
		if it.Status == model.IterationActive {
			return i
		}
	}
	return 0
}

// Close closes the underlying communication log.
func (s *Store) Close() error {
	return s.log.Close()
}

// --- Change notification ---

// Subscribe returns a channel that receives a signal after state changes,
// and a function that cancels the subscription. Signals coalesce: a slow
// reader sees at least one signal after the latest change, not one per change.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default: // already signaled, skip
		}
	}
}

// mutate runs fn under the write lock and notifies subscribers when fn
// reports a change.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// --- Scenario ---

// Scenario returns the current scenario. Callers must not modify it.
func (s *Store) Scenario() *datasource.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenario
}

// Agents returns the current roster.
func (s *Store) Agents() []model.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Agent(nil), s.scenario.Agents...)
}

// Agent looks up an agent in the current scenario.
func (s *Store) Agent(id string) (model.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenario.Agent(id)
}

// ReplaceScenario swaps in a reloaded scenario. An open banner whose agent
// no longer exists is closed; a dangling selection moves to the first agent.
// The communication log is kept.
func (s *Store) ReplaceScenario(next *datasource.Scenario) error {
	if next == nil || len(next.Agents) == 0 {
		return errors.New("store: scenario has no agents")
	}
	s.mutate(func() bool {
		s.scenario = next
		if s.bannerOpen {
			if _, ok := next.Agent(s.bannerAgentID); !ok {
				s.bannerOpen = false
				s.bannerAgentID = ""
				s.generation++
			}
		}
		if _, ok := next.Agent(s.selectedAgent); !ok {
			s.selectedAgent = next.Agents[0].ID
		}
		if s.iteration >= len(next.Iterations) {
			s.iteration = firstActiveIteration(next)
		}
		return true
	})
	return nil
}

// --- Banner panel state machine ---

// Panel returns the active banner panel.
func (s *Store) Panel() model.Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.panel
}

// SetPanel jumps to p unconditionally. Invalid panels are ignored.
func (s *Store) SetPanel(p model.Panel) {
	if !p.Valid() {
		return
	}
	s.mutate(func() bool {
		changed := s.panel != p
		s.panel = p
		return changed
	})
}

// NextPanel moves to the following panel unless already at the last.
func (s *Store) NextPanel() bool {
	return s.mutate(func() bool {
		next := s.panel.Next()
		changed := next != s.panel
		s.panel = next
		return changed
	})
}

// PrevPanel moves to the preceding panel unless already at the first.
func (s *Store) PrevPanel() bool {
	return s.mutate(func() bool {
		prev := s.panel.Prev()
		changed := prev != s.panel
		s.panel = prev
		return changed
	})
}

// --- Routing ---

// RoutingMode returns the shared message routing mode.
func (s *Store) RoutingMode() model.RoutingMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routing
}

// SetRoutingMode selects m unconditionally. Invalid modes are ignored.
func (s *Store) SetRoutingMode(m model.RoutingMode) {
	if !m.Valid() {
		return
	}
	s.mutate(func() bool {
		changed := s.routing != m
		s.routing = m
		return changed
	})
}

// --- Banner visibility ---

// OpenBanner shows the banner for agentID, replacing any open banner.
func (s *Store) OpenBanner(agentID string) error {
	var err error
	s.mutate(func() bool {
		if _, ok := s.scenario.Agent(agentID); !ok {
			err = fmt.Errorf("open banner %q: %w", agentID, ErrUnknownAgent)
			return false
		}
		s.bannerOpen = true
		s.bannerAgentID = agentID
		s.selectedAgent = agentID
		s.generation++
		return true
	})
	return err
}

// CloseBanner hides the banner. It reports whether a banner was open.
func (s *Store) CloseBanner() bool {
	return s.mutate(func() bool {
		if !s.bannerOpen {
			return false
		}
		s.bannerOpen = false
		s.bannerAgentID = ""
		s.generation++
		return true
	})
}

// Banner returns the agent whose banner is open.
func (s *Store) Banner() (agentID string, open bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.bannerOpen || s.bannerAgentID == "" {
		return "", false
	}
	return s.bannerAgentID, true
}

// Generation identifies the current banner instance. It changes whenever a
// banner opens, closes, or switches agent.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// --- Communication log ---

// AppendLog appends an entry to the shared log.
func (s *Store) AppendLog(ctx context.Context, e model.LogEntry) (model.LogEntry, error) {
	out, err := s.log.Append(ctx, e)
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("append log: %w", err)
	}
	s.notify()
	return out, nil
}

// Logs returns the whole log in insertion order.
func (s *Store) Logs(ctx context.Context) ([]model.LogEntry, error) {
	return s.log.All(ctx)
}

// LogsFor returns entries sent by or to agentID, in insertion order.
func (s *Store) LogsFor(ctx context.Context, agentID string) ([]model.LogEntry, error) {
	return s.log.ForAgent(ctx, agentID)
}

// --- Chrome state ---

// HighContrast reports whether the monochrome palette is on.
func (s *Store) HighContrast() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highContrast
}

// SetHighContrast turns the monochrome palette on or off.
func (s *Store) SetHighContrast(on bool) {
	s.mutate(func() bool {
		changed := s.highContrast != on
		s.highContrast = on
		return changed
	})
}

// ToggleHighContrast flips the monochrome palette.
func (s *Store) ToggleHighContrast() {
	s.mutate(func() bool {
		s.highContrast = !s.highContrast
		return true
	})
}

// Playing reports whether the session timer is running.
func (s *Store) Playing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}

// TogglePlaying pauses or resumes the session timer.
func (s *Store) TogglePlaying() {
	s.mutate(func() bool {
		s.playing = !s.playing
		return true
	})
}

// SessionDuration is the elapsed played time.
func (s *Store) SessionDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elapsed
}

// StartedAt is the wall-clock time the session began.
func (s *Store) StartedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

// AdvanceSession adds d to the elapsed time while playing. It reports
// whether time advanced.
func (s *Store) AdvanceSession(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	return s.mutate(func() bool {
		if !s.playing {
			return false
		}
		s.elapsed += d
		return true
	})
}

// WorkMode returns the room's work mode.
func (s *Store) WorkMode() model.WorkMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workMode
}

// SetWorkMode sets the room's work mode.
func (s *Store) SetWorkMode(w model.WorkMode) {
	s.mutate(func() bool {
		changed := s.workMode != w
		s.workMode = w
		return changed
	})
}

// CycleWorkMode moves to the next work mode, wrapping around.
func (s *Store) CycleWorkMode() {
	s.mutate(func() bool {
		s.workMode = s.workMode.Next()
		return true
	})
}

// Iteration returns the index of the current iteration and the iteration
// itself; ok is false when the scenario has none.
func (s *Store) Iteration() (idx int, it model.Iteration, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.scenario.Iterations) == 0 {
		return 0, model.Iteration{}, false
	}
	return s.iteration, s.scenario.Iterations[s.iteration], true
}

// AdvanceIteration moves to the next iteration, wrapping to the first.
func (s *Store) AdvanceIteration() {
	s.mutate(func() bool {
		n := len(s.scenario.Iterations)
		if n == 0 {
			return false
		}
		s.iteration = (s.iteration + 1) % n
		return true
	})
}

// --- Selection and dashboard ---

// SelectedAgent returns the ID of the agent highlighted in the scene.
func (s *Store) SelectedAgent() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedAgent
}

// SelectAgent highlights id. Unknown IDs return ErrUnknownAgent.
func (s *Store) SelectAgent(id string) error {
	var err error
	s.mutate(func() bool {
		if _, ok := s.scenario.Agent(id); !ok {
			err = fmt.Errorf("select %q: %w", id, ErrUnknownAgent)
			return false
		}
		changed := s.selectedAgent != id
		s.selectedAgent = id
		return changed
	})
	return err
}

// SelectNextAgent moves the selection down the roster, clamping at the end.
func (s *Store) SelectNextAgent() { s.stepSelection(1) }

// SelectPrevAgent moves the selection up the roster, clamping at the start.
func (s *Store) SelectPrevAgent() { s.stepSelection(-1) }

func (s *Store) stepSelection(delta int) {
	s.mutate(func() bool {
		agents := s.scenario.Agents
		i := s.scenario.AgentIndex(s.selectedAgent) + delta
		i = max(0, min(i, len(agents)-1))
		changed := agents[i].ID != s.selectedAgent
		s.selectedAgent = agents[i].ID
		return changed
	})
}

// DashboardView returns the view shown under the scene.
func (s *Store) DashboardView() model.DashboardView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetDashboardView switches the view shown under the scene.
func (s *Store) SetDashboardView(v model.DashboardView) {
	s.mutate(func() bool {
		changed := s.view != v
		s.view = v
		return changed
	})
}
