// Package synclog keeps a local history of crawl sessions. It is purely
// observational: the reconciliation pipeline works the same with the log
// disabled, the log just lets the operator see what past sessions did.
package synclog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Session is one recorded crawl session.
type Session struct {
	ID           string
	Kind         string // "reconcile" or "merge"
	Status       string // running | complete | failed
	StartedAt    time.Time
	CompletedAt  *time.Time
	PagesScanned int64
	IDsResolved  int64
	Error        string
}

// Log provides read/write access to the session table.
type Log struct {
	db *sql.DB
}

// Open opens (and migrates) the session log database at path.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "synclog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "synclog: exec %s", pragma)
		}
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'running',
	started_at    DATETIME NOT NULL,
	completed_at  DATETIME,
	pages_scanned INTEGER NOT NULL DEFAULT 0,
	ids_resolved  INTEGER NOT NULL DEFAULT 0,
	error         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
`

func (l *Log) migrate() error {
	_, err := l.db.Exec(migration)
	return eris.Wrap(err, "synclog: migrate")
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Start records the beginning of a session and returns its id.
func (l *Log) Start(ctx context.Context, kind string) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO sessions (id, kind, status, started_at) VALUES (?, ?, 'running', ?)`,
		id, kind, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "synclog: start %s session", kind)
	}
	return id, nil
}

// Complete marks a session as successfully finished.
func (l *Log) Complete(ctx context.Context, id string, pagesScanned, idsResolved int64) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE sessions
		 SET status = 'complete', completed_at = ?, pages_scanned = ?, ids_resolved = ?
		 WHERE id = ?`,
		time.Now().UTC(), pagesScanned, idsResolved, id,
	)
	if err != nil {
		return eris.Wrapf(err, "synclog: complete session %s", id)
	}
	return nil
}

// Fail marks a session as failed with an error message.
func (l *Log) Fail(ctx context.Context, id string, errMsg string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE sessions SET status = 'failed', completed_at = ?, error = ? WHERE id = ?`,
		time.Now().UTC(), errMsg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "synclog: fail session %s", id)
	}
	return nil
}

// List returns all sessions, most recent first.
func (l *Log) List(ctx context.Context) ([]Session, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, kind, status, started_at, completed_at, pages_scanned, ids_resolved, error
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "synclog: list")
	}
	defer rows.Close() //nolint:errcheck

	var sessions []Session
	for rows.Next() {
		var s Session
		var completedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.Kind, &s.Status, &s.StartedAt, &completedAt, &s.PagesScanned, &s.IDsResolved, &s.Error); err != nil {
			return nil, eris.Wrap(err, "synclog: scan session")
		}
		if completedAt.Valid {
			t := completedAt.Time
			s.CompletedAt = &t
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
