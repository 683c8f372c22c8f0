// Package banner implements the agent banner: the modal overlay with chat,
// prompt-queue, and metrics panels, its routing selector, and the simulated
// chat exchange.
//
// A Banner is bound to one open instance in the store. The store's generation
// counter is the banner's lifetime token: once the banner is closed, reopened,
// or switched to another agent, responses scheduled by the old instance are
// dropped instead of landing in the shared log.
package banner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/daviddao/agentroom/internal/model"
	"github.com/daviddao/agentroom/internal/store"
)

// ResponseDelay is how long a simulated agent takes to answer.
const ResponseDelay = 1500 * time.Millisecond

// ResponseText is the templated reply of a simulated agent.
func ResponseText(agentName string) string {
	return fmt.Sprintf("Response from %s: Processing your request...", agentName)
}

// Pending is a simulated response waiting to be delivered.
type Pending struct {
	Generation uint64
	AgentID    string
	Delay      time.Duration
}

// Banner holds the ephemeral state of one open banner. It is not safe for
// concurrent use; the UI loop owns it.
type Banner struct {
	store  *store.Store
	agent  model.Agent
	gen    uint64
	logger *slog.Logger
	delay  time.Duration

	pending     int
	showTargets bool
	inputMode   model.InputMode
	gesture     *Recognizer
}

// Option configures a Banner.
type Option func(*Banner)

// WithLogger sets the logger for banner debug events.
func WithLogger(l *slog.Logger) Option {
	return func(b *Banner) { b.logger = l }
}

// WithResponseDelay overrides ResponseDelay.
func WithResponseDelay(d time.Duration) Option {
	return func(b *Banner) { b.delay = d }
}

// Open shows the banner for agentID and returns its local state.
// Any previously open banner is superseded.
func Open(st *store.Store, agentID string, opts ...Option) (*Banner, error) {
	if err := st.OpenBanner(agentID); err != nil {
		return nil, err
	}
	agent, _ := st.Agent(agentID)
	b := &Banner{
		store:     st,
		agent:     agent,
		gen:       st.Generation(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		delay:     ResponseDelay,
		inputMode: model.InputText,
		gesture:   NewRecognizer(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger.Debug("banner opened", "agent_id", agentID, "generation", b.gen)
	return b, nil
}

// Agent returns the agent this banner shows.
func (b *Banner) Agent() model.Agent { return b.agent }

// Generation is the store generation this banner was opened under.
func (b *Banner) Generation() uint64 { return b.gen }

// Live reports whether this banner is still the open one.
func (b *Banner) Live() bool {
	id, open := b.store.Banner()
	return open && id == b.agent.ID && b.store.Generation() == b.gen
}

// Close hides the banner. It reports whether anything changed, so repeated
// calls are harmless.
func (b *Banner) Close() bool {
	if !b.Live() {
		return false
	}
	closed := b.store.CloseBanner()
	if closed {
		b.logger.Debug("banner closed", "agent_id", b.agent.ID, "generation", b.gen)
	}
	return closed
}

// --- Panel navigation ---

// Panel returns the active panel.
func (b *Banner) Panel() model.Panel { return b.store.Panel() }

// Next moves to the following panel. It reports false at the last one.
func (b *Banner) Next() bool { return b.store.NextPanel() }

// Prev moves to the preceding panel. It reports false at the first one.
func (b *Banner) Prev() bool { return b.store.PrevPanel() }

// SetPanel jumps directly to p.
func (b *Banner) SetPanel(p model.Panel) { b.store.SetPanel(p) }

// TouchStart records the start of a touch sequence on the content region.
func (b *Banner) TouchStart(x, y float64) { b.gesture.Start(x, y) }

// TouchEnd finishes the touch sequence and applies any resulting swipe.
func (b *Banner) TouchEnd(x, y float64) Swipe {
	s := b.gesture.End(x, y)
	switch s {
	case SwipeNext:
		b.Next()
	case SwipePrev:
		b.Prev()
	}
	return s
}

// Touching reports whether a touch sequence is in progress.
func (b *Banner) Touching() bool { return b.gesture.Armed() }

// CancelTouch abandons a touch sequence without classifying it.
func (b *Banner) CancelTouch() { b.gesture.Reset() }

// --- Chat ---

// Typing reports whether the agent is composing a reply.
func (b *Banner) Typing() bool { return b.pending > 0 }

// Messages returns the log entries involving this banner's agent.
func (b *Banner) Messages(ctx context.Context) ([]model.LogEntry, error) {
	return b.store.LogsFor(ctx, b.agent.ID)
}

// Send posts text from the human to the agent. Blank text, or a banner that
// is no longer the open one, is ignored and reports ok=false. On success the caller schedules the returned Pending and
// hands it back to Deliver once p.Delay has elapsed.
func (b *Banner) Send(ctx context.Context, text string) (p Pending, ok bool, err error) {
	msg := strings.TrimSpace(text)
	if msg == "" || !b.Live() {
		return Pending{}, false, nil
	}
	_, err = b.store.AppendLog(ctx, model.LogEntry{
		FromID:   model.HumanID,
		FromName: model.HumanName,
		ToID:     b.agent.ID,
		ToName:   b.agent.Name,
		Message:  msg,
		Type:     model.EntrySpeech,
	})
	if err != nil {
		return Pending{}, false, err
	}
	b.pending++
	return Pending{Generation: b.gen, AgentID: b.agent.ID, Delay: b.delay}, true, nil
}

// Deliver appends the agent's reply for p. It is a no-op, reporting false,
// when the banner that scheduled p is no longer the open one.
func (b *Banner) Deliver(ctx context.Context, p Pending) (bool, error) {
	if p.Generation == b.gen && b.pending > 0 {
		b.pending--
	}
	if p.Generation != b.store.Generation() || p.Generation != b.gen {
		b.logger.Debug("dropping stale response",
			"agent_id", p.AgentID, "generation", p.Generation, "current", b.store.Generation())
		return false, nil
	}
	_, err := b.store.AppendLog(ctx, model.LogEntry{
		FromID:   b.agent.ID,
		FromName: b.agent.Name,
		ToID:     model.HumanID,
		ToName:   model.HumanName,
		Message:  ResponseText(b.agent.Name),
		Type:     model.EntrySpeech,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// --- Routing ---

// RoutingMode returns the shared routing mode.
func (b *Banner) RoutingMode() model.RoutingMode { return b.store.RoutingMode() }

// SelectRouting sets the shared routing mode. Modes that address specific
// agents reveal the target picker; all and bookmark hide it.
func (b *Banner) SelectRouting(m model.RoutingMode) {
	if !m.Valid() {
		return
	}
	b.store.SetRoutingMode(m)
	b.showTargets = m.RevealsTargets()
}

// NextRouting cycles to the following routing mode.
func (b *Banner) NextRouting() {
	b.SelectRouting(b.store.RoutingMode().Next())
}

// TargetsVisible reports whether the target picker is shown.
func (b *Banner) TargetsVisible() bool { return b.showTargets }

// HideTargets dismisses the target picker without changing the mode.
func (b *Banner) HideTargets() { b.showTargets = false }

// Targets lists every agent except this banner's own, in roster order.
func (b *Banner) Targets() []model.Agent {
	var out []model.Agent
	for _, a := range b.store.Agents() {
		if a.ID != b.agent.ID {
			out = append(out, a)
		}
	}
	return out
}

// PickTarget acknowledges a target choice. Targets are not persisted and
// do not affect delivery.
func (b *Banner) PickTarget(agentID string) {
	b.logger.Debug("routing target picked", "agent_id", agentID, "mode", b.store.RoutingMode().String())
}

// --- Input mode ---

// InputMode returns how the draft is being composed.
func (b *Banner) InputMode() model.InputMode { return b.inputMode }

// SetInputMode chooses speech, text, or gesture input.
func (b *Banner) SetInputMode(m model.InputMode) { b.inputMode = m }

// CycleInputMode moves to the next input mode.
func (b *Banner) CycleInputMode() { b.inputMode = b.inputMode.Next() }

// Stub reports a press on an attachment, camera, or pen control. These
// controls have no behavior.
func (b *Banner) Stub(name string) {
	b.logger.Debug("stub control pressed", "control", name, "agent_id", b.agent.ID)
}
