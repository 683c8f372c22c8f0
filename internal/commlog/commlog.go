// Package commlog stores the append-only communication log shared by every
// agent banner.
//
// Entries are ordered by insertion (Seq) and joined to agents by stable agent
// ID. Two backends exist: a slice for tests and small sessions, and a SQLite
// table (in-memory by default) that can also be mirrored to a transcript file.
package commlog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daviddao/agentroom/internal/model"
)

// ErrClosed is returned by operations on a closed log.
var ErrClosed = errors.New("commlog: log is closed")

// Log is an append-only ordered sequence of communication entries.
type Log interface {
	// Append stores e and returns it with ID, Seq, and Timestamp filled.
	Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error)
	// All returns every entry in insertion order.
	All(ctx context.Context) ([]model.LogEntry, error)
	// ForAgent returns entries sent by or addressed to agentID, in insertion order.
	ForAgent(ctx context.Context, agentID string) ([]model.LogEntry, error)
	// Close releases the log. Later operations return ErrClosed.
	Close() error
}

// prepare fills the generated fields of an entry before it is stored.
func prepare(e model.LogEntry, seq int64, now func() time.Time) model.LogEntry {
	e.Seq = seq
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now()
	}
	if e.Type == "" {
		e.Type = model.EntrySpeech
	}
	return e
}

// Memory is a slice-backed Log.
type Memory struct {
	mu      sync.RWMutex
	entries []model.LogEntry
	closed  bool
	now     func() time.Time
}

// NewMemory returns an empty in-memory log.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// Append stores e at the end of the slice.
func (m *Memory) Append(_ context.Context, e model.LogEntry) (model.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return model.LogEntry{}, ErrClosed
	}
	e = prepare(e, int64(len(m.entries))+1, m.now)
	m.entries = append(m.entries, e)
	return e, nil
}

// All returns a copy of every entry.
func (m *Memory) All(_ context.Context) ([]model.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]model.LogEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// ForAgent filters the slice by sender or recipient ID.
func (m *Memory) ForAgent(_ context.Context, agentID string) ([]model.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []model.LogEntry
	for _, e := range m.entries {
		if e.Involves(agentID) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Close marks the log closed. It is safe to call more than once.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
