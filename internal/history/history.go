// Package history records update run attempts in a small SQLite store, so
// operators can see recent outcomes without digging through the log file.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run outcome values.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusAborted  = "aborted"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	pid         INTEGER NOT NULL,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME,
	status      TEXT NOT NULL DEFAULT '',
	mirror_exit INTEGER NOT NULL DEFAULT 0,
	update_exit INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Run is one recorded update attempt.
type Run struct {
	ID         int64
	PID        int
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	MirrorExit int
	UpdateExit int
}

// DB wraps a sql.DB with run-history operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Begin records the start of a run and returns its row id.
func (db *DB) Begin(pid int) (int64, error) {
	res, err := db.conn.Exec(
		`INSERT INTO runs (pid, started_at) VALUES (?, ?)`,
		pid, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("history: begin run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: run id: %w", err)
	}
	return id, nil
}

// Finish records the outcome of a previously started run.
func (db *DB) Finish(id int64, status string, mirrorExit, updateExit int) error {
	_, err := db.conn.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, mirror_exit = ?, update_exit = ? WHERE id = ?`,
		time.Now().UTC(), status, mirrorExit, updateExit, id,
	)
	if err != nil {
		return fmt.Errorf("history: finish run: %w", err)
	}
	return nil
}

// Recent returns up to n runs, newest first.
func (db *DB) Recent(n int) ([]Run, error) {
	rows, err := db.conn.Query(`
		SELECT id, pid, started_at, finished_at, status, mirror_exit, update_exit
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.PID, &r.StartedAt, &finished, &r.Status, &r.MirrorExit, &r.UpdateExit); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}
	return out, nil
}
