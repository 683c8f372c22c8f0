// arv is a terminal room for watching and talking to a team of simulated
// AI agents.
//
// It loads a scenario (agents, iterations, prompt queue, metrics), lays the
// agents out as a scene, and opens an agent banner with chat, prompt-queue,
// and metrics panels. Agent replies are simulated locally.
//
// Usage:
//
//	arv                         # Auto-discover .agentroom/scenario.yaml, else built-in
//	arv --scenario <path>       # Use a specific scenario file
//	arv --json                  # Dump current state as JSON and exit
//	arv --agent <id>            # Open the banner for an agent on startup
//	arv --panel prompts         # Start the banner on a specific panel
//	arv --view chat             # Start on a specific dashboard view
//	arv --work-mode review      # Start in a work mode
//	arv --transcript <path>     # Keep the communication log in a SQLite file
//	arv --log <path>            # Write debug logs to a file
//	arv --version               # Print version and exit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/daviddao/agentroom/internal/banner"
	"github.com/daviddao/agentroom/internal/commlog"
	"github.com/daviddao/agentroom/internal/datasource"
	"github.com/daviddao/agentroom/internal/model"
	"github.com/daviddao/agentroom/internal/snapshot"
	"github.com/daviddao/agentroom/internal/store"
)

// Version is set via ldflags at build time (e.g. -X main.Version=v0.1.0).
var Version = "dev"

// jsonOutput is the structure for --json mode.
type jsonOutput struct {
	Session jsonSession          `json:"session"`
	Agents  []jsonAgent          `json:"agents"`
	Log     []model.LogEntry     `json:"log"`
	Prompts jsonPrompts          `json:"prompts"`
	Metrics []model.Metric       `json:"metrics"`
	Tasks   []model.Task         `json:"tasks"`
	Summary model.SessionSummary `json:"summary"`
	State   jsonState            `json:"state"`
}

type jsonSession struct {
	Title     string          `json:"title"`
	Objective string          `json:"objective"`
	Criteria  string          `json:"success_criteria,omitempty"`
	Iteration model.Iteration `json:"iteration"`
	Elapsed   string          `json:"elapsed"`
}

type jsonAgent struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Role     string            `json:"role"`
	Status   model.AgentStatus `json:"status"`
	Sent     int               `json:"sent"`
	Received int               `json:"received"`
}

type jsonPrompts struct {
	Active  []model.Prompt `json:"active"`
	Reserve []model.Prompt `json:"reserve"`
}

type jsonState struct {
	Panel        string `json:"panel"`
	Routing      string `json:"routing"`
	BannerAgent  string `json:"banner_agent,omitempty"`
	View         string `json:"view"`
	Playing      bool   `json:"playing"`
	WorkMode     string `json:"work_mode"`
	HighContrast bool   `json:"high_contrast"`
}

func main() {
	scenarioPath := flag.String("scenario", "", "path to scenario.yaml (default: auto-discover, else built-in)")
	jsonMode := flag.Bool("json", false, "dump current state as JSON and exit (no TUI)")
	agentFlag := flag.String("agent", "", "open the banner for an agent on startup")
	panelFlag := flag.String("panel", "", "start the banner on a panel (chat|prompts|metrics)")
	viewFlag := flag.String("view", "", "start in a dashboard view (metrics|chat|summary)")
	transcript := flag.String("transcript", "", "keep the communication log in this SQLite file (\":memory:\" for in-memory)")
	logPath := flag.String("log", "", "write debug logs to this file")
	highContrast := flag.Bool("high-contrast", false, "start in high-contrast mode")
	workMode := flag.String("work-mode", "", "start in a work mode (open|closed|review)")
	iterEvery := flag.Duration("iteration-every", 20*time.Second, "advance the iteration after this much played time (0 disables)")
	responseDelay := flag.Duration("response-delay", banner.ResponseDelay, "simulated agent response delay")
	noLoading := flag.Bool("no-loading", false, "skip the loading sequence")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("arv %s\n", Version)
		os.Exit(0)
	}

	if *scenarioPath != "" {
		os.Setenv(datasource.EnvScenario, *scenarioPath)
	}

	logger, closeLog, err := newLogger(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arv: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	sc, path, err := datasource.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "arv: %v\n", err)
		os.Exit(1)
	}

	l, err := openLog(*transcript)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arv: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := store.New(ctx, sc, l)
	if err != nil {
		l.Close()
		fmt.Fprintf(os.Stderr, "arv: %v\n", err)
		os.Exit(1)
	}
	st.SetHighContrast(*highContrast)

	// Apply --view and --panel flags.
	if *viewFlag != "" {
		v, err := model.ParseDashboardView(*viewFlag)
		if err != nil {
			st.Close()
			fmt.Fprintf(os.Stderr, "arv: %v\n", err)
			os.Exit(1)
		}
		st.SetDashboardView(v)
	}
	if *workMode != "" {
		wm, err := model.ParseWorkMode(*workMode)
		if err != nil {
			st.Close()
			fmt.Fprintf(os.Stderr, "arv: %v\n", err)
			os.Exit(1)
		}
		st.SetWorkMode(wm)
	}
	if *panelFlag != "" {
		p, err := model.ParsePanel(*panelFlag)
		if err != nil {
			st.Close()
			fmt.Fprintf(os.Stderr, "arv: %v\n", err)
			os.Exit(1)
		}
		st.SetPanel(p)
	}

	// --agent selects the agent; the banner opens below, or in the store for --json.
	if *agentFlag != "" {
		if err := st.SelectAgent(*agentFlag); err != nil {
			st.Close()
			fmt.Fprintf(os.Stderr, "arv: %v\n", err)
			os.Exit(1)
		}
	}

	// --json mode: build snapshot, print JSON, exit.
	if *jsonMode {
		if *agentFlag != "" {
			if err := st.OpenBanner(*agentFlag); err != nil {
				st.Close()
				fmt.Fprintf(os.Stderr, "arv: %v\n", err)
				os.Exit(1)
			}
		}
		snap, err := snapshot.Build(ctx, st)
		st.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "arv: snapshot: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(buildJSONOutput(snap)); err != nil {
			fmt.Fprintf(os.Stderr, "arv: json: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// The built-in scenario has no file to watch.
	var w *datasource.Watcher
	if path != "" {
		w, err = datasource.NewWatcher(path, datasource.WithWatchLogger(logger))
		if err != nil {
			st.Close()
			fmt.Fprintf(os.Stderr, "arv: watch: %v\n", err)
			os.Exit(1)
		}
		logger.Debug("watching scenario", "path", w.Path())
	}

	snap, err := snapshot.Build(ctx, st)
	if err != nil {
		closeAll(w, st)
		fmt.Fprintf(os.Stderr, "arv: snapshot: %v\n", err)
		os.Exit(1)
	}

	m := newModel(st, w, snap, path)
	m.logger = logger
	m.iterationEvery = *iterEvery
	m.responseDelay = *responseDelay
	m.loading = !*noLoading

	// Apply --agent flag: open that agent's banner.
	if *agentFlag != "" {
		if m, err = m.openBanner(*agentFlag); err != nil {
			closeAll(w, st)
			fmt.Fprintf(os.Stderr, "arv: %v\n", err)
			os.Exit(1)
		}
		if m.snap, err = snapshot.Build(ctx, st); err != nil {
			closeAll(w, st)
			fmt.Fprintf(os.Stderr, "arv: snapshot: %v\n", err)
			os.Exit(1)
		}
		m = m.syncChat()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Feed store changes into the TUI.
	changes, cancel := st.Subscribe()
	defer cancel()
	go func() {
		for range changes {
			p.Send(storeChangedMsg{})
		}
	}()

	// Feed scenario file changes into the TUI.
	if w != nil {
		go func() {
			for range w.Changes() {
				p.Send(scenarioChangedMsg{})
			}
		}()
	}

	logger.Info("session started", "scenario", path, "agents", len(sc.Agents), "transcript", *transcript)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "arv: %v\n", err)
		os.Exit(1)
	}
}

// newLogger opens the debug log. Without a path, logs are discarded since the
// TUI owns the terminal.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h).With("component", "arv"), func() { f.Close() }, nil
}

// openLog picks the communication log backend: an in-process slice by
// default, SQLite when a transcript is requested.
func openLog(transcript string) (commlog.Log, error) {
	if transcript == "" {
		return commlog.NewMemory(), nil
	}
	l, err := commlog.OpenSQLite(transcript)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	return l, nil
}

func closeAll(w *datasource.Watcher, st *store.Store) {
	if w != nil {
		w.Close()
	}
	st.Close()
}

// buildJSONOutput converts a snapshot into the JSON output structure.
func buildJSONOutput(snap *snapshot.DataSnapshot) jsonOutput {
	agents := make([]jsonAgent, len(snap.Agents))
	for i, ag := range snap.Agents {
		agents[i] = jsonAgent{
			ID:       ag.ID,
			Name:     ag.Name,
			Role:     ag.Role,
			Status:   ag.Effective,
			Sent:     ag.Sent,
			Received: ag.Received,
		}
	}

	log := snap.Log
	if log == nil {
		log = []model.LogEntry{}
	}

	return jsonOutput{
		Session: jsonSession{
			Title:     snap.Title,
			Objective: snap.Objective,
			Criteria:  snap.Criteria,
			Iteration: snap.Iteration,
			Elapsed:   clockDuration(snap.SessionDuration),
		},
		Agents:  agents,
		Log:     log,
		Prompts: jsonPrompts{Active: snap.Active, Reserve: snap.Reserve},
		Metrics: snap.Metrics,
		Tasks:   snap.Tasks,
		Summary: snap.Summary,
		State: jsonState{
			Panel:        snap.Panel.String(),
			Routing:      snap.Routing.String(),
			BannerAgent:  snap.BannerAgentID,
			View:         snap.View.String(),
			Playing:      snap.Playing,
			WorkMode:     snap.WorkMode.String(),
			HighContrast: snap.HighContrast,
		},
	}
}
