package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/daviddao/agentroom/internal/model"
	"github.com/daviddao/agentroom/internal/snapshot"
)

// headerRows is the number of screen rows above the content area:
// title bar, tab bar, and a blank line.
const headerRows = 3

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6C7086")).
				Background(lipgloss.Color("#313244")).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89B4FA"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	msgFromStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#89B4FA")).
			Bold(true)

	msgToStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAB387"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))

	// High-contrast replacements.
	hcStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	hcActiveStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	hcChipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
)

func (m uiModel) highContrast() bool {
	return m.snap != nil && m.snap.HighContrast
}

// accent colours text with c, or renders it plain white in high contrast.
func (m uiModel) accent(c string) lipgloss.Style {
	if m.highContrast() {
		return hcStyle
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// --- View rendering ---

func (m uiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.loading {
		return m.renderLoading()
	}

	var b strings.Builder

	// Title bar.
	b.WriteString(truncateLines(m.renderTitleBar(), m.width))
	b.WriteRune('\n')

	// Tab bar.
	b.WriteString(truncateLines(m.renderTabBar(), m.width))
	b.WriteRune('\n')
	b.WriteRune('\n')

	footer := m.renderFooter()
	footerLines := strings.Count(footer, "\n") + 1
	contentHeight := m.contentHeight()

	var content string
	if m.banner != nil {
		content = m.renderBanner()
	} else {
		content = m.renderRoom(contentHeight)
	}

	lines := strings.Split(content, "\n")
	if len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}

	// Truncate each line to terminal width so content doesn't wrap
	// on resize. Uses ANSI-aware width measurement.
	b.WriteString(truncateLines(strings.Join(lines, "\n"), m.width))

	// Pad to fill screen.
	rendered := strings.Count(b.String(), "\n")
	for rendered < m.height-footerLines {
		b.WriteRune('\n')
		rendered++
	}

	b.WriteString(truncateLines(footer, m.width))
	return b.String()
}

// renderFooter is the status bar, or the full key help when toggled.
func (m uiModel) renderFooter() string {
	if m.showHelp {
		return m.help.View(m.dispatcher)
	}
	return m.renderStatusBar()
}

// contentHeight is the number of rows between the header and the footer.
func (m uiModel) contentHeight() int {
	footerLines := strings.Count(m.renderFooter(), "\n") + 1
	return max(1, m.height-headerRows-footerLines)
}

func (m uiModel) renderLoading() string {
	stage := min(m.loadingStage, len(loadingStages)-1)
	bar := strings.Repeat("■", stage+1) + strings.Repeat("□", len(loadingStages)-stage-1)
	body := strings.Join([]string{
		titleStyle.Render("agentroom"),
		"",
		m.spinner.View() + " " + loadingStages[stage],
		dimStyle.Render(bar),
		"",
		dimStyle.Render("press any key to skip"),
	}, "\n")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m uiModel) renderTitleBar() string {
	title := titleStyle.Render("agentroom")
	if m.snap.Title != "" {
		title += " " + headerStyle.Render(m.snap.Title)
	}

	play := doneStyle.Render("▶ " + clockDuration(m.snap.SessionDuration))
	if !m.snap.Playing {
		play = warnStyle.Render("⏸ " + clockDuration(m.snap.SessionDuration))
	}
	iter := "no iterations"
	if m.snap.HasIteration {
		iter = fmt.Sprintf("iter %d/%d %s", m.snap.IterationIndex+1, len(m.snap.Iterations), m.snap.Iteration.Name)
	}
	stats := dimStyle.Render(fmt.Sprintf("%s | mode: %s | started %s ",
		iter, m.snap.WorkMode, humanize.Time(m.snap.StartedAt)))

	right := play + " " + stats
	gap := strings.Repeat(" ", max(1, m.width-lipgloss.Width(title)-lipgloss.Width(right)))
	return title + gap + right
}

// tabChips are the dashboard view tabs, shared by rendering and hit-testing.
func (m uiModel) tabChips() []chip {
	var chips []chip
	for _, v := range model.DashboardViews() {
		style := tabInactiveStyle
		if m.banner == nil && v == m.snap.View {
			style = m.activeChipStyle(tabActiveStyle)
		}
		chips = append(chips, chip{label: v.String(), style: style, hit: hit{kind: hitView, view: v}})
	}
	return chips
}

func (m uiModel) renderTabBar() string {
	out := renderChips(m.tabChips())
	// Show the open banner as the active tab.
	if m.banner != nil {
		a := m.banner.Agent()
		out += " " + m.activeChipStyle(tabActiveStyle).Render("Agent: "+a.Name)
	}
	return out
}

func (m uiModel) renderStatusBar() string {
	if m.lastErr != nil {
		left := " " + errStyle.Render("error: "+m.lastErr.Error())
		return statusBarStyle.Render(left)
	}
	ago := time.Since(m.lastRefresh).Truncate(time.Second)
	left := " " + contextHelp(m.banner != nil)
	right := fmt.Sprintf("routing: %s | %s messages | refreshed %s ago ",
		m.snap.Routing, humanize.Comma(int64(m.snap.TotalEntries)), ago)
	gap := strings.Repeat(" ", max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)))
	return statusBarStyle.Render(left + gap + right)
}

// contextHelp returns help text for the base room or the open banner.
func contextHelp(bannerOpen bool) string {
	if bannerOpen {
		return "←/→: panels | alt+1/2/3: jump | enter: send | ctrl+r: routing | esc: close"
	}
	return "j/k: select | enter: open | alt+1/2/3: views | space: play | ?: help | q: quit"
}

// --- Room (no banner) ---

// sceneRows is how many rows the agent scene takes, leaving room for the
// dashboard view below it.
func sceneRows(contentHeight int) int {
	return max(3, min(8, contentHeight/3))
}

func (m uiModel) renderRoom(contentHeight int) string {
	var b strings.Builder
	rows := sceneRows(contentHeight)
	b.WriteString(m.renderScene(rows))
	b.WriteRune('\n')
	b.WriteString(dimStyle.Render(strings.Repeat("─", max(0, m.width))))
	b.WriteRune('\n')

	switch m.snap.View {
	case model.ViewMetrics:
		b.WriteString(m.renderMetricsView())
	case model.ViewChat:
		b.WriteString(m.renderChatView(contentHeight - rows - 1))
	case model.ViewSummary:
		b.WriteString(m.renderSummaryView())
	}
	return b.String()
}

// sceneLabel is one agent placed on the scene grid.
type sceneLabel struct {
	agent    snapshot.AgentView
	row, col int
	text     string
	width    int
}

func statusGlyph(s model.AgentStatus) string {
	switch s {
	case model.StatusActive:
		return "●"
	case model.StatusProcessing:
		return "◉"
	case model.StatusComplete:
		return "✓"
	}
	return "○"
}

// layoutScene projects agent (x, z) positions onto a width × rows grid.
// Labels sharing a row are pushed right so they never overlap.
func layoutScene(agents []snapshot.AgentView, width, rows int) []sceneLabel {
	extent := 1.0
	for _, a := range agents {
		extent = math.Max(extent, math.Max(math.Abs(a.Position[0]), math.Abs(a.Position[2])))
	}

	labels := make([]sceneLabel, 0, len(agents))
	for _, a := range agents {
		text := statusGlyph(a.Effective) + " " + a.Name
		if a.Selected {
			text = "[" + text + "]"
		} else {
			text = " " + text + " "
		}
		w := lipgloss.Width(text)
		usable := float64(max(0, width-w))
		col := int(math.Round((a.Position[0] + extent) / (2 * extent) * usable))
		row := int(math.Round((a.Position[2] + extent) / (2 * extent) * float64(max(0, rows-1))))
		labels = append(labels, sceneLabel{agent: a, row: row, col: col, text: text, width: w})
	}

	sort.SliceStable(labels, func(i, j int) bool {
		if labels[i].row != labels[j].row {
			return labels[i].row < labels[j].row
		}
		return labels[i].col < labels[j].col
	})
	for i := 1; i < len(labels); i++ {
		prev := labels[i-1]
		if labels[i].row == prev.row && labels[i].col < prev.col+prev.width+1 {
			labels[i].col = prev.col + prev.width + 1
		}
	}
	return labels
}

func (m uiModel) renderScene(rows int) string {
	labels := layoutScene(m.snap.Agents, m.width, rows)
	lines := make([]string, rows)
	cursor := make([]int, rows)
	for _, l := range labels {
		style := m.accent(l.agent.Color)
		if l.agent.Selected {
			style = style.Bold(true)
			if m.highContrast() {
				style = style.Reverse(true)
			}
		}
		lines[l.row] += strings.Repeat(" ", max(0, l.col-cursor[l.row])) + style.Render(l.text)
		cursor[l.row] = l.col + l.width
	}
	return strings.Join(lines, "\n")
}

// sceneAgentAt returns the agent whose scene label covers screen cell (x, y).
func (m uiModel) sceneAgentAt(x, y int) (string, bool) {
	rows := sceneRows(m.contentHeight())
	row := y - headerRows
	if row < 0 || row >= rows {
		return "", false
	}
	for _, l := range layoutScene(m.snap.Agents, m.width, rows) {
		if l.row == row && x >= l.col && x < l.col+l.width {
			return l.agent.ID, true
		}
	}
	return "", false
}

// --- Dashboard views ---

func (m uiModel) renderMetricsView() string {
	var b strings.Builder

	// Agents table.
	b.WriteString(headerStyle.Render("Agents"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d busy | %s from you",
		m.snap.Busy, humanize.Comma(int64(m.snap.HumanEntries)))))
	b.WriteRune('\n')
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-12s %-14s %-11s %5s %5s",
		"Name", "Role", "Status", "Sent", "Recv")))
	b.WriteRune('\n')
	for _, a := range m.snap.Agents {
		marker := "  "
		if a.Selected {
			marker = "> "
		}
		line := fmt.Sprintf("%-12s %-14s %-11s %5d %5d",
			truncate(a.Name, 12), truncate(a.Role, 14), a.Effective, a.Sent, a.Received)
		b.WriteString(marker + m.accent(a.Color).Render(line))
		b.WriteRune('\n')
	}

	if len(m.snap.Metrics) > 0 {
		b.WriteRune('\n')
		b.WriteString(headerStyle.Render("Performance"))
		b.WriteRune('\n')
		b.WriteString(m.renderMetricGrid(m.width))
	}
	return b.String()
}

func (m uiModel) renderChatView(height int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Communication Log (%d)", len(m.snap.Log))))
	b.WriteRune('\n')
	if len(m.snap.Log) == 0 {
		b.WriteString(dimStyle.Render("  No messages yet."))
		return b.String()
	}
	lines := m.renderLogLines(m.snap.Log, m.width)
	// Keep the newest entries visible.
	if height > 1 && len(lines) > height-1 {
		lines = lines[len(lines)-(height-1):]
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func (m uiModel) renderSummaryView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Session"))
	b.WriteRune('\n')
	if m.snap.Objective != "" {
		for _, l := range wrapText("Objective: "+m.snap.Objective, max(20, m.width-2)) {
			b.WriteString("  " + l + "\n")
		}
	}
	if m.snap.Criteria != "" {
		for _, l := range wrapText("Success: "+m.snap.Criteria, max(20, m.width-2)) {
			b.WriteString("  " + dimStyle.Render(l) + "\n")
		}
	}
	b.WriteRune('\n')

	b.WriteString(headerStyle.Render("Iterations"))
	b.WriteRune('\n')
	for i, it := range m.snap.Iterations {
		marker := "  "
		if m.snap.HasIteration && i == m.snap.IterationIndex {
			marker = "▶ "
		}
		line := fmt.Sprintf("%d. %-14s %-10s %s", it.ID, truncate(it.Name, 14), it.Status, it.Description)
		b.WriteString(marker + iterationStyle(it.Status).Render(line))
		b.WriteRune('\n')
	}
	if m.snap.HasIteration && len(m.snap.Iteration.Contributions) > 0 {
		ids := make([]string, 0, len(m.snap.Iteration.Contributions))
		for id := range m.snap.Iteration.Contributions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			name := id
			if a, ok := m.snap.Agent(id); ok {
				name = a.Name
			}
			b.WriteString(fmt.Sprintf("     %s %s\n", msgFromStyle.Render(name+":"), m.snap.Iteration.Contributions[id]))
		}
	}
	b.WriteRune('\n')

	b.WriteString(headerStyle.Render("Summary"))
	b.WriteRune('\n')
	b.WriteString(m.renderSummaryCounts())
	return b.String()
}

func iterationStyle(s model.IterationStatus) lipgloss.Style {
	switch s {
	case model.IterationCompleted:
		return doneStyle
	case model.IterationActive:
		return warnStyle
	}
	return dimStyle
}

// --- Shared fragments ---

// renderLogLines formats log entries as "time from → to [type]" headers with
// the wrapped message below.
func (m uiModel) renderLogLines(entries []model.LogEntry, width int) []string {
	var lines []string
	for _, e := range entries {
		ts := dimStyle.Render(e.Timestamp.Format("15:04:05"))
		header := fmt.Sprintf("%s %s → %s", ts,
			msgFromStyle.Render(e.FromName), msgToStyle.Render(e.ToName))
		if e.Type != model.EntrySpeech {
			header += " " + dimStyle.Render("["+string(e.Type)+"]")
		}
		lines = append(lines, header)
		for _, l := range wrapText(e.Message, max(20, width-4)) {
			lines = append(lines, "    "+l)
		}
	}
	return lines
}

// renderMetricGrid lays the performance tiles out two per row.
func (m uiModel) renderMetricGrid(width int) string {
	colWidth := max(20, width/2-2)
	var b strings.Builder
	for i, mt := range m.snap.Metrics {
		cell := fmt.Sprintf("%-*s", colWidth, truncate(mt.Label, colWidth-10)+": "+mt.Value)
		b.WriteString("  " + m.accent(mt.Color).Render(cell))
		if i%2 == 1 || i == len(m.snap.Metrics)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m uiModel) renderSummaryCounts() string {
	s := m.snap.Summary
	return fmt.Sprintf("  %s messages | %d insights | %d decisions | %d action items\n",
		humanize.Comma(int64(s.TotalMessages)), s.KeyInsights, s.DecisionsMade, s.ActionItems)
}

// --- Helpers ---

// truncateLines truncates each line in content to at most width visible
// characters, preserving ANSI escape codes. This prevents terminal line
// wrapping when the window is resized narrower.
func truncateLines(content string, width int) string {
	if width <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}

// wrapText breaks s into lines at most width cells wide, splitting on word
// boundaries where possible. Words wider than width are hard-split on
// grapheme boundaries. Embedded newlines are respected.
func wrapText(s string, width int) []string {
	if width <= 0 {
		width = 80
	}
	return strings.Split(ansi.Wrap(s, width, ""), "\n")
}

// truncate shortens s to n cells, marking the cut with "..." when there is
// room for it.
func truncate(s string, n int) string {
	if n <= 3 {
		return ansi.Truncate(s, n, "")
	}
	return ansi.Truncate(s, n, "...")
}

// clockDuration renders an elapsed session time as mm:ss, or h:mm:ss past
// the hour.
func clockDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
