package commlog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/daviddao/agentroom/internal/model"
)

// backends returns a fresh instance of every Log implementation.
func backends(t *testing.T) map[string]Log {
	t.Helper()
	sq, err := OpenSQLite(MemoryDSN)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	mem := NewMemory()
	t.Cleanup(func() {
		sq.Close()
		mem.Close()
	})
	return map[string]Log{"memory": mem, "sqlite": sq}
}

func entry(fromID, toID, msg string) model.LogEntry {
	return model.LogEntry{
		FromID:   fromID,
		FromName: fromID,
		ToID:     toID,
		ToName:   toID,
		Message:  msg,
		Type:     model.EntrySpeech,
	}
}

func TestAppendFillsGeneratedFields(t *testing.T) {
	ctx := context.Background()
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := l.Append(ctx, model.LogEntry{FromID: "human", ToID: "atlas", Message: "hi"})
			if err != nil {
				t.Fatalf("Append: %v", err)
			}
			if got.ID == "" {
				t.Error("ID should be generated")
			}
			if got.Seq != 1 {
				t.Errorf("Seq = %d, want 1", got.Seq)
			}
			if got.Timestamp.IsZero() {
				t.Error("Timestamp should be filled")
			}
			if got.Type != model.EntrySpeech {
				t.Errorf("Type = %q, want speech default", got.Type)
			}
		})
	}
}

func TestAppendKeepsProvidedTimestamp(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			e := entry("atlas", "nova", "x")
			e.Timestamp = ts
			if _, err := l.Append(ctx, e); err != nil {
				t.Fatalf("Append: %v", err)
			}
			all, err := l.All(ctx)
			if err != nil {
				t.Fatalf("All: %v", err)
			}
			if !all[0].Timestamp.Equal(ts) {
				t.Errorf("Timestamp = %v, want %v", all[0].Timestamp, ts)
			}
		})
	}
}

func TestForAgentPreservesOrder(t *testing.T) {
	ctx := context.Background()
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed := []model.LogEntry{
				entry("human", "atlas", "m1"),
				entry("nova", "vex", "m2"),
				entry("atlas", "human", "m3"),
				entry("sage", "nova", "m4"),
				entry("vex", "atlas", "m5"),
			}
			for _, e := range seed {
				if _, err := l.Append(ctx, e); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			got, err := l.ForAgent(ctx, "atlas")
			if err != nil {
				t.Fatalf("ForAgent: %v", err)
			}
			want := []string{"m1", "m3", "m5"}
			if len(got) != len(want) {
				t.Fatalf("ForAgent returned %d entries, want %d", len(got), len(want))
			}
			for i, e := range got {
				if e.Message != want[i] {
					t.Errorf("entry %d = %q, want %q", i, e.Message, want[i])
				}
				if !e.Involves("atlas") {
					t.Errorf("entry %d does not involve atlas: %+v", i, e)
				}
				if i > 0 && e.Seq <= got[i-1].Seq {
					t.Errorf("entry %d out of order: seq %d after %d", i, e.Seq, got[i-1].Seq)
				}
			}
		})
	}
}

func TestForAgentUsesIDNotName(t *testing.T) {
	ctx := context.Background()
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// Same display name, different IDs.
			a := model.LogEntry{FromID: "atlas-1", FromName: "Atlas", ToID: "human", ToName: "Human", Message: "one"}
			b := model.LogEntry{FromID: "atlas-2", FromName: "Atlas", ToID: "human", ToName: "Human", Message: "two"}
			for _, e := range []model.LogEntry{a, b} {
				if _, err := l.Append(ctx, e); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}
			got, err := l.ForAgent(ctx, "atlas-2")
			if err != nil {
				t.Fatalf("ForAgent: %v", err)
			}
			if len(got) != 1 || got[0].Message != "two" {
				t.Errorf("ForAgent(atlas-2) = %+v, want only 'two'", got)
			}
		})
	}
}

func TestAllInOrder(t *testing.T) {
	ctx := context.Background()
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				if _, err := l.Append(ctx, entry("human", "atlas", fmt.Sprintf("m%d", i))); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}
			all, err := l.All(ctx)
			if err != nil {
				t.Fatalf("All: %v", err)
			}
			for i, e := range all {
				if e.Message != fmt.Sprintf("m%d", i) {
					t.Errorf("All[%d] = %q", i, e.Message)
				}
			}
		})
	}
}

func TestAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, err := m.Append(ctx, entry("human", "atlas", "orig")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	all, _ := m.All(ctx)
	all[0].Message = "mutated"
	again, _ := m.All(ctx)
	if again[0].Message != "orig" {
		t.Error("All should return a copy the caller cannot mutate")
	}
}

func TestClosedLogReturnsErrClosed(t *testing.T) {
	ctx := context.Background()
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := l.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if _, err := l.Append(ctx, entry("a", "b", "c")); !errors.Is(err, ErrClosed) {
				t.Errorf("Append after Close = %v, want ErrClosed", err)
			}
			if _, err := l.All(ctx); !errors.Is(err, ErrClosed) {
				t.Errorf("All after Close = %v, want ErrClosed", err)
			}
			if err := l.Close(); err != nil {
				t.Errorf("second Close = %v, want nil", err)
			}
		})
	}
}

func TestSQLiteTranscriptIsResetOnOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transcript.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := s.Append(ctx, entry("human", "atlas", "first session")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	s.Close()

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite reopen: %v", err)
	}
	defer s2.Close()
	all, err := s2.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("reopened transcript has %d entries, want 0", len(all))
	}
}
