// Package datasource discovers, loads, and watches the agentroom scenario file.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultScenario = ".agentroom/scenario.yaml"

	// EnvScenario overrides scenario discovery.
	EnvScenario = "AGENTROOM_SCENARIO"
)

// Discover finds the scenario file path.
// Priority: AGENTROOM_SCENARIO env var > .agentroom/scenario.yaml in CWD > walk up parents.
func Discover() (string, error) {
	if env := os.Getenv(EnvScenario); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
		return "", fmt.Errorf("%s=%q: %w", EnvScenario, env, os.ErrNotExist)
	}

	// Check CWD first.
	if _, err := os.Stat(defaultScenario); err == nil {
		abs, err := filepath.Abs(defaultScenario)
		if err != nil {
			return "", fmt.Errorf("resolve absolute path for %s: %w", defaultScenario, err)
		}
		return abs, nil
	}

	// Walk up parent directories.
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, defaultScenario)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no scenario found (looked for %s): %w", defaultScenario, os.ErrNotExist)
}

// Open discovers and loads the scenario. When no file exists anywhere it
// returns the built-in scenario and an empty path; any other failure is an error.
func Open() (*Scenario, string, error) {
	path, err := Discover()
	if err != nil {
		if os.Getenv(EnvScenario) == "" {
			return Default(), "", nil
		}
		return nil, "", err
	}
	s, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return s, path, nil
}
