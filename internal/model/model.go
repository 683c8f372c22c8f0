// Package model defines the reference data and UI enumerations shared by the
// agentroom store, banner, and renderer.
package model

import (
	"fmt"
	"strings"
	"time"
)

// HumanID is the reserved participant ID for the person at the keyboard.
const (
	HumanID   = "human"
	HumanName = "Human"
)

// AgentStatus is the lifecycle state shown on an agent avatar.
type AgentStatus int

const (
	StatusIdle AgentStatus = iota
	StatusActive
	StatusProcessing
	StatusComplete
)

func (s AgentStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusActive:
		return "active"
	case StatusProcessing:
		return "processing"
	case StatusComplete:
		return "complete"
	}
	return "?"
}

// ParseAgentStatus maps a scenario string to an AgentStatus.
// Empty input is idle.
func ParseAgentStatus(s string) (AgentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "idle":
		return StatusIdle, nil
	case "active":
		return StatusActive, nil
	case "processing":
		return StatusProcessing, nil
	case "complete":
		return StatusComplete, nil
	}
	return 0, fmt.Errorf("unknown agent status %q", s)
}

// MarshalText renders the status as its scenario string.
func (s AgentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Agent is immutable identity data for one avatar in the room.
type Agent struct {
	ID          string
	Name        string
	Role        string
	Color       string
	GlowColor   string
	Position    [3]float64
	Status      AgentStatus
	Description string
	Icon        string
}

// Initial returns the first rune of the agent name, used by the target picker.
func (a Agent) Initial() string {
	for _, r := range a.Name {
		return string(r)
	}
	return "?"
}

// EntryType classifies a communication log entry.
type EntryType string

const (
	EntrySpeech   EntryType = "speech"
	EntryTask     EntryType = "task"
	EntryFeedback EntryType = "feedback"
	EntryComplete EntryType = "complete"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntrySpeech, EntryTask, EntryFeedback, EntryComplete:
		return true
	}
	return false
}

// LogEntry is one record in the append-only communication log.
// FromID/ToID join entries to agents; the names are for display only.
type LogEntry struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	FromID    string    `json:"from_id"`
	FromName  string    `json:"from"`
	ToID      string    `json:"to_id"`
	ToName    string    `json:"to"`
	Message   string    `json:"message"`
	Type      EntryType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Involves reports whether the entry was sent by or addressed to agentID.
func (e LogEntry) Involves(agentID string) bool {
	return e.FromID == agentID || e.ToID == agentID
}

// --- Banner panels ---

// Panel is one of the banner sub-views. The declaration order is the
// navigation order.
type Panel int

const (
	PanelChat Panel = iota
	PanelPrompts
	PanelMetrics
	panelCount
)

// Panels returns every panel in navigation order.
func Panels() []Panel {
	return []Panel{PanelChat, PanelPrompts, PanelMetrics}
}

func (p Panel) String() string {
	switch p {
	case PanelChat:
		return "chat"
	case PanelPrompts:
		return "prompts"
	case PanelMetrics:
		return "metrics"
	}
	return "?"
}

// Label is the footer tab text.
func (p Panel) Label() string {
	switch p {
	case PanelChat:
		return "Chat"
	case PanelPrompts:
		return "Prompts"
	case PanelMetrics:
		return "Metrics"
	}
	return "?"
}

// Index returns the zero-based position of p in navigation order.
func (p Panel) Index() int { return int(p) }

// Valid reports whether p is a real panel.
func (p Panel) Valid() bool { return p >= PanelChat && p < panelCount }

// Next returns the following panel, or p itself when p is the last one.
func (p Panel) Next() Panel {
	if p+1 < panelCount {
		return p + 1
	}
	return p
}

// Prev returns the preceding panel, or p itself when p is the first one.
func (p Panel) Prev() Panel {
	if p > PanelChat {
		return p - 1
	}
	return p
}

// IsFirst and IsLast drive the disabled state of the footer arrows.
func (p Panel) IsFirst() bool { return p == PanelChat }
func (p Panel) IsLast() bool  { return p == panelCount-1 }

// ParsePanel maps a flag string to a Panel.
func ParsePanel(s string) (Panel, error) {
	switch strings.ToLower(s) {
	case "chat", "c":
		return PanelChat, nil
	case "prompts", "p":
		return PanelPrompts, nil
	case "metrics", "m":
		return PanelMetrics, nil
	}
	return 0, fmt.Errorf("unknown panel %q (valid: chat, prompts, metrics)", s)
}

// --- Routing ---

// RoutingMode is the strategy selected for addressing a message.
type RoutingMode int

const (
	RouteAll RoutingMode = iota
	RouteSelected
	RouteCycle
	RouteSequence
	RouteParallel
	RouteDirect
	RouteHuman
	RouteBookmark
	routeCount
)

// RoutingModes returns the eight modes in selector order.
func RoutingModes() []RoutingMode {
	out := make([]RoutingMode, 0, routeCount)
	for m := RouteAll; m < routeCount; m++ {
		out = append(out, m)
	}
	return out
}

func (m RoutingMode) String() string {
	switch m {
	case RouteAll:
		return "all"
	case RouteSelected:
		return "selected"
	case RouteCycle:
		return "cycle"
	case RouteSequence:
		return "sequence"
	case RouteParallel:
		return "parallel"
	case RouteDirect:
		return "direct"
	case RouteHuman:
		return "human"
	case RouteBookmark:
		return "bookmark"
	}
	return "?"
}

// Label is the human-readable title of the mode.
func (m RoutingMode) Label() string {
	switch m {
	case RouteAll:
		return "Send to All"
	case RouteSelected:
		return "Send to Selected"
	case RouteCycle:
		return "Cycle Exchange"
	case RouteSequence:
		return "Sequential"
	case RouteParallel:
		return "Parallel"
	case RouteDirect:
		return "Direct Send"
	case RouteHuman:
		return "Send to Human"
	case RouteBookmark:
		return "Bookmark"
	}
	return "?"
}

// Color is the accent used when the mode is active.
func (m RoutingMode) Color() string {
	switch m {
	case RouteAll:
		return "#4CAF50"
	case RouteSelected:
		return "#2196F3"
	case RouteCycle:
		return "#FF9800"
	case RouteSequence:
		return "#9C27B0"
	case RouteParallel:
		return "#00BCD4"
	case RouteDirect:
		return "#E91E63"
	case RouteHuman:
		return "#FF5722"
	case RouteBookmark:
		return "#795548"
	}
	return "#FFFFFF"
}

// RevealsTargets reports whether selecting m opens the target picker.
func (m RoutingMode) RevealsTargets() bool {
	switch m {
	case RouteSelected, RouteCycle, RouteSequence, RouteParallel, RouteDirect, RouteHuman:
		return true
	}
	return false
}

// Valid reports whether m is one of the eight modes.
func (m RoutingMode) Valid() bool { return m >= RouteAll && m < routeCount }

// Next cycles to the following mode, wrapping after bookmark.
func (m RoutingMode) Next() RoutingMode { return (m + 1) % routeCount }

// ParseRoutingMode maps a string to a RoutingMode.
func ParseRoutingMode(s string) (RoutingMode, error) {
	for _, m := range RoutingModes() {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown routing mode %q", s)
}

// InputMode is the banner's chosen input affordance.
type InputMode int

const (
	InputText InputMode = iota
	InputSpeech
	InputGesture
	inputCount
)

func (m InputMode) String() string {
	switch m {
	case InputText:
		return "text"
	case InputSpeech:
		return "speech"
	case InputGesture:
		return "gesture"
	}
	return "?"
}

// Next cycles text -> speech -> gesture -> text.
func (m InputMode) Next() InputMode { return (m + 1) % inputCount }

// InputModes lists the input modes in cycle order.
func InputModes() []InputMode { return []InputMode{InputText, InputSpeech, InputGesture} }

// --- Session chrome ---

// WorkMode is the room's collaboration phase shown in the top bar.
type WorkMode int

const (
	WorkOpen WorkMode = iota
	WorkClosed
	WorkReview
	workCount
)

func (w WorkMode) String() string {
	switch w {
	case WorkOpen:
		return "open"
	case WorkClosed:
		return "closed"
	case WorkReview:
		return "review"
	}
	return "?"
}

// Next cycles open -> closed -> review -> open.
func (w WorkMode) Next() WorkMode { return (w + 1) % workCount }

// ParseWorkMode maps a flag string to a WorkMode.
func ParseWorkMode(s string) (WorkMode, error) {
	switch strings.ToLower(s) {
	case "open":
		return WorkOpen, nil
	case "closed":
		return WorkClosed, nil
	case "review":
		return WorkReview, nil
	}
	return 0, fmt.Errorf("unknown work mode %q (valid: open, closed, review)", s)
}

// DashboardView is a root-level content tab, reachable when no banner is open.
type DashboardView int

const (
	ViewMetrics DashboardView = iota
	ViewChat
	ViewSummary
	viewCount
)

// DashboardViews returns the root tabs in Ctrl+1/2/3 order.
func DashboardViews() []DashboardView {
	return []DashboardView{ViewMetrics, ViewChat, ViewSummary}
}

func (v DashboardView) String() string {
	switch v {
	case ViewMetrics:
		return "Metrics"
	case ViewChat:
		return "Chat"
	case ViewSummary:
		return "Summary"
	}
	return "?"
}

// ParseDashboardView maps a --view flag string to a DashboardView.
func ParseDashboardView(s string) (DashboardView, error) {
	switch strings.ToLower(s) {
	case "metrics", "m":
		return ViewMetrics, nil
	case "chat", "c":
		return ViewChat, nil
	case "summary", "s":
		return ViewSummary, nil
	}
	return 0, fmt.Errorf("unknown view %q (valid: metrics, chat, summary)", s)
}

// --- Mock content ---

// PromptStatus is the queue state of a prompt.
type PromptStatus string

const (
	PromptActive  PromptStatus = "active"
	PromptRunning PromptStatus = "running"
	PromptReserve PromptStatus = "reserve"
)

// Priority ranks a prompt.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Prompt is one entry of the static prompt queue.
type Prompt struct {
	ID       int          `yaml:"id" json:"id"`
	Text     string       `yaml:"text" json:"text"`
	Status   PromptStatus `yaml:"status" json:"status"`
	Priority Priority     `yaml:"priority" json:"priority"`
}

// Metric is one tile of the performance grid.
type Metric struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
	Color string `yaml:"color" json:"color"`
}

// Task is one item of the current-tasks checklist.
type Task struct {
	Text      string `yaml:"text" json:"text"`
	Completed bool   `yaml:"completed" json:"completed"`
}

// SessionSummary holds the headline counts of the metrics panel.
type SessionSummary struct {
	TotalMessages int `yaml:"total_messages" json:"total_messages"`
	KeyInsights   int `yaml:"key_insights" json:"key_insights"`
	DecisionsMade int `yaml:"decisions_made" json:"decisions_made"`
	ActionItems   int `yaml:"action_items" json:"action_items"`
}

// IterationStatus is the progress of one collaboration round.
type IterationStatus string

const (
	IterationCompleted IterationStatus = "completed"
	IterationActive    IterationStatus = "active"
	IterationPlanned   IterationStatus = "planned"
)

// Iteration is one round of the collaboration, with per-agent contributions.
type Iteration struct {
	ID            int               `yaml:"id" json:"id"`
	Name          string            `yaml:"name" json:"name"`
	Status        IterationStatus   `yaml:"status" json:"status"`
	Description   string            `yaml:"description" json:"description"`
	Contributions map[string]string `yaml:"contributions" json:"contributions,omitempty"`
}
