package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/daviddao/agentroom/internal/banner"
	"github.com/daviddao/agentroom/internal/datasource"
	"github.com/daviddao/agentroom/internal/keys"
	"github.com/daviddao/agentroom/internal/model"
	"github.com/daviddao/agentroom/internal/snapshot"
	"github.com/daviddao/agentroom/internal/store"
)

// --- Messages ---

type storeChangedMsg struct{}

type scenarioChangedMsg struct{}

type scenarioLoadedMsg struct {
	scenario *datasource.Scenario
	err      error
}

type snapshotReadyMsg struct {
	snap *snapshot.DataSnapshot
	err  error
}

type tickMsg struct{}

type loadingStepMsg struct{}

// responseDueMsg fires when a simulated agent reply is ready.
type responseDueMsg struct {
	pending banner.Pending
}

// loadingStages are shown in turn before the room appears.
var loadingStages = []string{
	"Initializing agents...",
	"Loading scenario...",
	"Connecting communication log...",
	"Preparing room...",
}

const loadingStep = 250 * time.Millisecond

// --- Model ---

type uiModel struct {
	store        *store.Store
	watcher      *datasource.Watcher
	snap         *snapshot.DataSnapshot
	scenarioPath string
	logger       *slog.Logger

	dispatcher *keys.Dispatcher
	banner     *banner.Banner // nil while no banner is open

	input   textinput.Model
	chat    viewport.Model
	spinner spinner.Model
	help    help.Model

	width    int
	height   int
	showHelp bool

	loading      bool
	loadingStage int

	iterationEvery time.Duration
	sinceIteration time.Duration
	responseDelay  time.Duration

	lastRefresh time.Time
	lastErr     error
}

func newModel(s *store.Store, w *datasource.Watcher, snap *snapshot.DataSnapshot, path string) uiModel {
	ti := textinput.New()
	ti.Placeholder = "Message the agent..."
	ti.Prompt = "> "
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return uiModel{
		store:          s,
		watcher:        w,
		snap:           snap,
		scenarioPath:   path,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		dispatcher:     keys.NewDispatcher(keys.BaseScope()),
		input:          ti,
		chat:           viewport.New(0, 0),
		spinner:        sp,
		help:           help.New(),
		iterationEvery: 20 * time.Second,
		responseDelay:  banner.ResponseDelay,
		lastRefresh:    time.Now(),
	}
}

func (m uiModel) Init() tea.Cmd {
	cmds := []tea.Cmd{tickEvery()}
	if m.loading {
		cmds = append(cmds, loadingEvery(), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func loadingEvery() tea.Cmd {
	return tea.Tick(loadingStep, func(time.Time) tea.Msg {
		return loadingStepMsg{}
	})
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Any key skips the loading sequence.
		if m.loading {
			m.loading = false
			return m, nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.loading {
			return m, nil
		}
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m = m.resizeBanner()
		return m.syncChat(), nil

	case loadingStepMsg:
		if !m.loading {
			return m, nil
		}
		m.loadingStage++
		if m.loadingStage >= len(loadingStages) {
			m.loading = false
			return m, nil
		}
		return m, loadingEvery()

	case spinner.TickMsg:
		if !m.loading && (m.banner == nil || !m.banner.Typing()) {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if !m.loading && m.store.AdvanceSession(time.Second) {
			m.sinceIteration += time.Second
			if m.iterationEvery > 0 && m.sinceIteration >= m.iterationEvery {
				m.sinceIteration = 0
				m.store.AdvanceIteration()
			}
		}
		return m, tickEvery()

	case responseDueMsg:
		return m.deliver(msg.pending), nil

	case storeChangedMsg:
		return m, m.refreshSnapshot()

	case scenarioChangedMsg:
		return m, m.reloadScenario()

	case scenarioLoadedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			m.logger.Warn("scenario reload failed", "path", m.scenarioPath, "err", msg.err)
			return m, nil
		}
		if err := m.store.ReplaceScenario(msg.scenario); err != nil {
			m.lastErr = err
			return m, nil
		}
		m.lastErr = nil
		m.logger.Debug("scenario reloaded", "path", m.scenarioPath, "agents", len(msg.scenario.Agents))
		if m.banner != nil && !m.banner.Live() {
			m = m.dropBanner()
		}
		return m, m.refreshSnapshot()

	case snapshotReadyMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		if msg.snap != nil {
			m.snap = msg.snap
			m.lastRefresh = time.Now()
			// The banner may have been closed underneath us by a reload.
			if m.banner != nil && !m.banner.Live() {
				m = m.dropBanner()
			}
			m = m.syncChat()
		}
		return m, nil
	}

	if m.banner != nil {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey resolves a key press through the dispatcher. Keys the banner
// scope does not bind go to the draft.
func (m uiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok := m.dispatcher.Dispatch(msg)
	if !ok {
		if m.banner == nil {
			return m, nil
		}
		if msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch action {
	case keys.ActionQuit:
		if m.watcher != nil {
			m.watcher.Close()
		}
		m.store.Close()
		return m, tea.Quit

	case keys.ActionHelp:
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case keys.ActionViewMetrics:
		m.store.SetDashboardView(model.ViewMetrics)
	case keys.ActionViewChat:
		m.store.SetDashboardView(model.ViewChat)
	case keys.ActionViewSummary:
		m.store.SetDashboardView(model.ViewSummary)

	case keys.ActionSelectUp:
		m.store.SelectPrevAgent()
	case keys.ActionSelectDown:
		m.store.SelectNextAgent()

	case keys.ActionOpenBanner:
		var err error
		m, err = m.openBanner(m.store.SelectedAgent())
		if err != nil {
			m.lastErr = err
		}
		return m, textinput.Blink

	case keys.ActionTogglePlay:
		m.store.TogglePlaying()
	case keys.ActionCycleWorkMode:
		m.store.CycleWorkMode()
	case keys.ActionToggleContrast:
		m.store.ToggleHighContrast()
	case keys.ActionNextIteration:
		m.store.AdvanceIteration()
		m.sinceIteration = 0

	case keys.ActionCloseBanner:
		m = m.closeBanner()

	case keys.ActionPanelChat:
		m.banner.SetPanel(model.PanelChat)
	case keys.ActionPanelPrompts:
		m.banner.SetPanel(model.PanelPrompts)
	case keys.ActionPanelMetrics:
		m.banner.SetPanel(model.PanelMetrics)
	case keys.ActionPanelPrev:
		m.banner.Prev()
	case keys.ActionPanelNext:
		m.banner.Next()

	case keys.ActionSend:
		return m.send()

	case keys.ActionNextRouting:
		m.banner.NextRouting()
	case keys.ActionHideTargets:
		m.banner.HideTargets()
	case keys.ActionCycleInput:
		m.banner.CycleInputMode()

	case keys.ActionRouteAll, keys.ActionRouteSelected, keys.ActionRouteCycle, keys.ActionRouteSequence,
		keys.ActionRouteParallel, keys.ActionRouteDirect, keys.ActionRouteHuman, keys.ActionRouteBookmark:
		m.banner.SelectRouting(routeForAction(action))
	}
	return m, nil
}

// routeForAction maps the direct routing actions onto routing modes, in order.
func routeForAction(a keys.Action) model.RoutingMode {
	return model.RoutingMode(a - keys.ActionRouteAll)
}

// openBanner shows the banner for agentID, superseding any open one. The
// banner scope is pushed once no matter how many banners open in a row.
func (m uiModel) openBanner(agentID string) (uiModel, error) {
	b, err := banner.Open(m.store, agentID,
		banner.WithLogger(m.logger),
		banner.WithResponseDelay(m.responseDelay))
	if err != nil {
		return m, err
	}
	m.banner = b
	m.dispatcher.Push(keys.BannerScope())
	m.showHelp = false
	m.help.ShowAll = false
	m.input.Reset()
	m.input.SetValue("")
	m.input.Focus()
	m = m.resizeBanner()
	m = m.syncChat()
	m.chat.GotoBottom()
	return m, nil
}

// closeBanner hides the open banner. It is a no-op when none is open.
func (m uiModel) closeBanner() uiModel {
	if m.banner == nil {
		return m
	}
	m.banner.Close()
	return m.dropBanner()
}

// dropBanner forgets the banner's local state and unmounts its key scope.
func (m uiModel) dropBanner() uiModel {
	m.banner = nil
	m.dispatcher.Pop(keys.ScopeBanner)
	m.input.Blur()
	m.input.Reset()
	return m
}

// send posts the draft and schedules the simulated reply.
func (m uiModel) send() (tea.Model, tea.Cmd) {
	if m.banner == nil {
		return m, nil
	}
	p, ok, err := m.banner.Send(context.Background(), m.input.Value())
	if err != nil {
		m.lastErr = err
		return m, nil
	}
	if !ok {
		return m, nil
	}
	m.input.Reset()
	return m, tea.Batch(
		tea.Tick(p.Delay, func(time.Time) tea.Msg { return responseDueMsg{pending: p} }),
		m.spinner.Tick,
	)
}

// deliver hands a due reply to the open banner. Replies scheduled by a banner
// that has since closed are dropped.
func (m uiModel) deliver(p banner.Pending) uiModel {
	if m.banner == nil {
		m.logger.Debug("dropping response for closed banner", "agent_id", p.AgentID, "generation", p.Generation)
		return m
	}
	if _, err := m.banner.Deliver(context.Background(), p); err != nil {
		m.lastErr = err
	}
	return m
}

func (m uiModel) refreshSnapshot() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		snap, err := snapshot.Build(context.Background(), s)
		return snapshotReadyMsg{snap: snap, err: err}
	}
}

func (m uiModel) reloadScenario() tea.Cmd {
	path := m.scenarioPath
	return func() tea.Msg {
		sc, err := datasource.Load(path)
		return scenarioLoadedMsg{scenario: sc, err: err}
	}
}
