package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/daviddao/agentroom/internal/model"
)

// Terminal cells are scaled to pixels before gesture recognition so the
// swipe thresholds keep their pointer-device meaning.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

// --- Clickable chips ---

type hitKind int

const (
	hitNone hitKind = iota
	hitView
	hitClose
	hitPanel
	hitPrev
	hitNext
	hitRoute
	hitTarget
	hitHideTargets
	hitInputMode
	hitStub
	hitSend
)

type hit struct {
	kind    hitKind
	view    model.DashboardView
	panel   model.Panel
	route   model.RoutingMode
	agentID string
	stub    string
	input   model.InputMode
}

// chip is one clickable segment of a row. Rows are chips joined by a single
// space, so rendering and hit-testing agree on every offset.
type chip struct {
	label string
	style lipgloss.Style
	hit   hit
}

func (c chip) render() string { return c.style.Render(c.label) }

func renderChips(chips []chip) string {
	parts := make([]string, len(chips))
	for i, c := range chips {
		parts[i] = c.render()
	}
	return strings.Join(parts, " ")
}

// chipAt returns the chip covering column x, if any.
func chipAt(chips []chip, x int) (hit, bool) {
	pos := 0
	for _, c := range chips {
		w := lipgloss.Width(c.render())
		if x >= pos && x < pos+w {
			return c.hit, true
		}
		pos += w + 1
	}
	return hit{}, false
}

var (
	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#313244")).
			Padding(0, 1)

	stubChipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086")).
			Padding(0, 1)

	sendChipStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1E1E2E")).
			Background(lipgloss.Color("#A6E3A1")).
			Padding(0, 1)
)

// activeChipStyle returns s, or the reverse-video style in high contrast.
func (m uiModel) activeChipStyle(s lipgloss.Style) lipgloss.Style {
	if m.highContrast() {
		return hcActiveStyle
	}
	return s
}

func (m uiModel) plainChipStyle(s lipgloss.Style) lipgloss.Style {
	if m.highContrast() {
		return hcChipStyle
	}
	return s
}

// --- Layout ---

// bannerLayout holds the screen rows of the banner's parts.
type bannerLayout struct {
	header     int
	routing    int
	targets    int
	bodyTop    int
	bodyHeight int
	input      int
	controls   int
	footer     int
}

func layoutBanner(height int) bannerLayout {
	top := headerRows
	footer := height - 2
	l := bannerLayout{
		header:   top,
		routing:  top + 1,
		targets:  top + 2,
		bodyTop:  top + 4,
		input:    footer - 2,
		controls: footer - 1,
		footer:   footer,
	}
	l.bodyHeight = max(1, l.input-l.bodyTop)
	return l
}

func (l bannerLayout) inBody(y int) bool {
	return y >= l.bodyTop && y < l.bodyTop+l.bodyHeight
}

func (m uiModel) headerChips() []chip {
	return []chip{{label: "esc x", style: m.plainChipStyle(chipStyle), hit: hit{kind: hitClose}}}
}

func (m uiModel) routingChips() []chip {
	current := m.banner.RoutingMode()
	chips := make([]chip, 0, len(model.RoutingModes()))
	for _, r := range model.RoutingModes() {
		style := m.plainChipStyle(chipStyle)
		if r == current {
			style = m.activeChipStyle(chipStyle.
				Foreground(lipgloss.Color("#1E1E2E")).
				Background(lipgloss.Color(r.Color())).
				Bold(true))
		}
		chips = append(chips, chip{label: r.String(), style: style, hit: hit{kind: hitRoute, route: r}})
	}
	return chips
}

func (m uiModel) targetChips() []chip {
	if !m.banner.TargetsVisible() {
		return nil
	}
	var chips []chip
	for _, a := range m.banner.Targets() {
		style := m.plainChipStyle(chipStyle.Foreground(lipgloss.Color(a.Color)))
		chips = append(chips, chip{
			label: a.Initial() + " " + a.Name,
			style: style,
			hit:   hit{kind: hitTarget, agentID: a.ID},
		})
	}
	return append(chips, chip{label: "x", style: m.plainChipStyle(stubChipStyle), hit: hit{kind: hitHideTargets}})
}

func (m uiModel) inputChips() []chip {
	current := m.banner.InputMode()
	var chips []chip
	for _, mode := range model.InputModes() {
		style := m.plainChipStyle(chipStyle)
		if mode == current {
			style = m.activeChipStyle(tabActiveStyle)
		}
		chips = append(chips, chip{label: mode.String(), style: style, hit: hit{kind: hitInputMode, input: mode}})
	}
	return chips
}

func (m uiModel) controlChips() []chip {
	chips := make([]chip, 0, 4)
	for _, name := range []string{"attach", "camera", "pen"} {
		chips = append(chips, chip{label: name, style: m.plainChipStyle(stubChipStyle), hit: hit{kind: hitStub, stub: name}})
	}
	return append(chips, chip{label: "send", style: m.activeChipStyle(sendChipStyle), hit: hit{kind: hitSend}})
}

func (m uiModel) footerChips() []chip {
	current := m.banner.Panel()
	arrow := func(label string, kind hitKind, disabled bool) chip {
		style := m.plainChipStyle(chipStyle)
		if disabled {
			style = m.plainChipStyle(stubChipStyle)
		}
		return chip{label: label, style: style, hit: hit{kind: kind}}
	}

	chips := []chip{arrow("‹", hitPrev, current.IsFirst())}
	for _, p := range model.Panels() {
		style := tabInactiveStyle
		if p == current {
			style = m.activeChipStyle(tabActiveStyle)
		}
		chips = append(chips, chip{label: p.Label(), style: style, hit: hit{kind: hitPanel, panel: p}})
	}
	return append(chips, arrow("›", hitNext, current.IsLast()))
}

// bannerHitAt maps a screen cell to the banner control under it.
func (m uiModel) bannerHitAt(x, y int) (hit, bool) {
	l := layoutBanner(m.height)
	switch y {
	case l.header:
		return chipAt(m.headerChips(), x)
	case l.routing:
		return chipAt(m.routingChips(), x)
	case l.targets:
		return chipAt(m.targetChips(), x)
	case l.input:
		return chipAt(m.inputChips(), x)
	case l.controls:
		return chipAt(m.controlChips(), x)
	case l.footer:
		return chipAt(m.footerChips(), x)
	}
	return hit{}, false
}

// --- Mouse ---

func (m uiModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if tea.MouseEvent(msg).IsWheel() {
		if m.banner != nil && m.banner.Panel() == model.PanelChat {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.banner == nil {
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if msg.Y == 1 {
			if h, ok := chipAt(m.tabChips(), msg.X); ok {
				m.store.SetDashboardView(h.view)
			}
			return m, nil
		}
		if id, ok := m.sceneAgentAt(msg.X, msg.Y); ok {
			if err := m.store.SelectAgent(id); err != nil {
				m.lastErr = err
				return m, nil
			}
			var err error
			if m, err = m.openBanner(id); err != nil {
				m.lastErr = err
			}
		}
		return m, nil
	}

	px, py := float64(msg.X*cellWidthPx), float64(msg.Y*cellHeightPx)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if layoutBanner(m.height).inBody(msg.Y) {
			m.banner.TouchStart(px, py)
			return m, nil
		}
		if h, ok := m.bannerHitAt(msg.X, msg.Y); ok {
			return m.applyHit(h)
		}
	case tea.MouseActionRelease:
		if m.banner.Touching() {
			m.banner.TouchEnd(px, py)
		}
	}
	return m, nil
}

func (m uiModel) applyHit(h hit) (tea.Model, tea.Cmd) {
	switch h.kind {
	case hitClose:
		m = m.closeBanner()
	case hitPanel:
		m.banner.SetPanel(h.panel)
	case hitPrev:
		m.banner.Prev()
	case hitNext:
		m.banner.Next()
	case hitRoute:
		m.banner.SelectRouting(h.route)
	case hitTarget:
		m.banner.PickTarget(h.agentID)
	case hitHideTargets:
		m.banner.HideTargets()
	case hitInputMode:
		m.banner.SetInputMode(h.input)
	case hitStub:
		m.banner.Stub(h.stub)
	case hitSend:
		return m.send()
	}
	return m, nil
}

// --- Banner state sync ---

// resizeBanner fits the chat viewport and draft input to the window.
func (m uiModel) resizeBanner() uiModel {
	l := layoutBanner(m.height)
	m.chat.Width = max(1, m.width)
	m.chat.Height = max(1, l.bodyHeight-1) // last body row is the typing line
	m.input.Width = max(10, m.width-32) // room for the input mode chips
	return m
}

// syncChat reloads the banner agent's conversation from the log, keeping the
// scrollback pinned to the newest message when it was already at the bottom.
func (m uiModel) syncChat() uiModel {
	if m.banner == nil {
		return m
	}
	entries, err := m.banner.Messages(context.Background())
	if err != nil {
		m.lastErr = err
		return m
	}
	atBottom := m.chat.AtBottom()
	if len(entries) == 0 {
		m.chat.SetContent(dimStyle.Render("  No messages yet. Say hello."))
	} else {
		m.chat.SetContent(strings.Join(m.renderLogLines(entries, m.chat.Width), "\n"))
	}
	if atBottom {
		m.chat.GotoBottom()
	}
	return m
}

// --- Banner rendering ---

func (m uiModel) renderBanner() string {
	l := layoutBanner(m.height)
	a := m.banner.Agent()
	status := a.Status
	if v, ok := m.snap.Agent(a.ID); ok {
		status = v.Effective
	}

	var rows []string

	// Header.
	info := fmt.Sprintf("%s %s", statusGlyph(status), a.Name)
	header := renderChips(m.headerChips()) + " " + m.accent(a.Color).Bold(true).Render(info) +
		dimStyle.Render(fmt.Sprintf(" · %s · %s · routing: %s", a.Role, status, m.banner.RoutingMode().Label()))
	rows = append(rows, header)

	// Routing selector and target picker.
	rows = append(rows, renderChips(m.routingChips()))
	if m.banner.TargetsVisible() {
		rows = append(rows, renderChips(m.targetChips()))
	} else {
		rows = append(rows, dimStyle.Render("  ctrl+r: next routing | F5-F12: pick routing | ctrl+e: input mode"))
	}
	rows = append(rows, dimStyle.Render(strings.Repeat("─", max(0, m.width))))

	// Body.
	body := m.renderPanel(l.bodyHeight)
	bodyLines := strings.Split(body, "\n")
	for len(bodyLines) < l.bodyHeight {
		bodyLines = append(bodyLines, "")
	}
	rows = append(rows, bodyLines[:l.bodyHeight]...)

	// Draft, controls, and panel tabs.
	rows = append(rows, renderChips(m.inputChips())+" "+m.renderDraft())
	rows = append(rows, renderChips(m.controlChips()))
	rows = append(rows, renderChips(m.footerChips()))

	return strings.Join(rows, "\n")
}

func (m uiModel) renderDraft() string {
	switch m.banner.InputMode() {
	case model.InputSpeech:
		return dimStyle.Render("listening... (speech is simulated; typing still works) ") + m.input.View()
	case model.InputGesture:
		return dimStyle.Render("gesture input (simulated) ") + m.input.View()
	}
	return m.input.View()
}

func (m uiModel) renderPanel(height int) string {
	switch m.banner.Panel() {
	case model.PanelPrompts:
		return m.renderPromptsPanel()
	case model.PanelMetrics:
		return m.renderMetricsPanel()
	}
	typing := ""
	if m.banner.Typing() {
		typing = m.spinner.View() + " " + dimStyle.Render(m.banner.Agent().Name+" is typing...")
	}
	return m.chat.View() + "\n" + typing
}

func (m uiModel) renderPromptsPanel() string {
	var b strings.Builder
	section := func(title string, prompts []model.Prompt) {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", title, len(prompts))))
		b.WriteRune('\n')
		if len(prompts) == 0 {
			b.WriteString(dimStyle.Render("  (empty)"))
			b.WriteRune('\n')
			return
		}
		for _, p := range prompts {
			tags := promptStatusStyle(p.Status).Render(fmt.Sprintf("[%s]", p.Status)) + " " +
				priorityStyle(p.Priority).Render(fmt.Sprintf("[%s]", p.Priority))
			b.WriteString(fmt.Sprintf("  %d. %s %s\n", p.ID, p.Text, tags))
		}
	}
	section("Active Queue", m.snap.Active)
	b.WriteRune('\n')
	section("Reserve Queue", m.snap.Reserve)
	return b.String()
}

func promptStatusStyle(s model.PromptStatus) lipgloss.Style {
	switch s {
	case model.PromptRunning:
		return warnStyle
	case model.PromptActive:
		return doneStyle
	}
	return dimStyle
}

func priorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return errStyle
	case model.PriorityMedium:
		return warnStyle
	}
	return dimStyle
}

func (m uiModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Performance Metrics"))
	b.WriteRune('\n')
	b.WriteString(m.renderMetricGrid(m.width))
	b.WriteRune('\n')

	b.WriteString(headerStyle.Render("Current Tasks"))
	b.WriteRune('\n')
	for _, t := range m.snap.Tasks {
		box := dimStyle.Render("[ ]")
		if t.Completed {
			box = doneStyle.Render("[x]")
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", box, t.Text))
	}
	b.WriteRune('\n')

	b.WriteString(headerStyle.Render("Session Summary"))
	b.WriteRune('\n')
	b.WriteString(m.renderSummaryCounts())
	return b.String()
}
