package commlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/daviddao/agentroom/internal/model"
)

// MemoryDSN keeps the log in a private in-memory database.
const MemoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	from_id    TEXT NOT NULL,
	from_name  TEXT NOT NULL,
	to_id      TEXT NOT NULL,
	to_name    TEXT NOT NULL,
	message    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_from ON entries(from_id);
CREATE INDEX IF NOT EXISTS entries_to ON entries(to_id);
`

// SQLite is a Log backed by a modernc.org/sqlite database.
type SQLite struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
	now    func() time.Time
}

// OpenSQLite opens (or creates) the log at dsn. Existing rows are discarded:
// the log only ever holds the current session.
func OpenSQLite(dsn string) (*SQLite, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	// Every pooled connection to :memory: would get its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM entries; DELETE FROM sqlite_sequence WHERE name = 'entries'`); err != nil {
		db.Close()
		return nil, fmt.Errorf("reset entries: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// Append inserts e. Seq is the row's autoincrement key.
func (s *SQLite) Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.LogEntry{}, ErrClosed
	}

	e = prepare(e, 0, s.now)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, from_id, from_name, to_id, to_name, message, kind, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FromID, e.FromName, e.ToID, e.ToName, e.Message, string(e.Type), e.Timestamp.UnixNano())
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("entry seq: %w", err)
	}
	e.Seq = seq
	return e, nil
}

// All returns every row ordered by Seq.
func (s *SQLite) All(ctx context.Context) ([]model.LogEntry, error) {
	return s.query(ctx, `SELECT seq, id, from_id, from_name, to_id, to_name, message, kind, created_at
		FROM entries ORDER BY seq`)
}

// ForAgent selects rows by sender or recipient ID, ordered by Seq.
func (s *SQLite) ForAgent(ctx context.Context, agentID string) ([]model.LogEntry, error) {
	return s.query(ctx, `SELECT seq, id, from_id, from_name, to_id, to_name, message, kind, created_at
		FROM entries WHERE from_id = ? OR to_id = ? ORDER BY seq`, agentID, agentID)
}

// Close closes the database. It is safe to call more than once.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLite) query(ctx context.Context, q string, args ...any) ([]model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []model.LogEntry
	for rows.Next() {
		var (
			e    model.LogEntry
			kind string
			ts   int64
		)
		if err := rows.Scan(&e.Seq, &e.ID, &e.FromID, &e.FromName, &e.ToID, &e.ToName, &e.Message, &kind, &ts); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Type = model.EntryType(kind)
		e.Timestamp = time.Unix(0, ts)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}
