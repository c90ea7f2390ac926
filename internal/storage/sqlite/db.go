package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"unitconv/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

type HistoryEntry = domain.HistoryEntry

func InitDB(path string) (*sql.DB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		last_seen  DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen);

	CREATE TABLE IF NOT EXISTS history_entries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		category   TEXT NOT NULL,
		value      REAL NOT NULL,
		from_unit  TEXT NOT NULL,
		to_unit    TEXT NOT NULL,
		result     REAL NOT NULL,
		formatted  TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_session ON history_entries(session_id, id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func TouchSession(ctx context.Context, db *sql.DB, sessionID string, now time.Time) error {
	now = now.UTC()
	_, err := db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, last_seen) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen`,
		sessionID, now, now,
	)
	return err
}

// GetSession loads one session row. ok is false when the session does not
// exist.
func GetSession(ctx context.Context, db *sql.DB, sessionID string) (domain.Session, bool, error) {
	var sess domain.Session
	err := db.QueryRowContext(ctx,
		"SELECT id, created_at, last_seen FROM sessions WHERE id = ?", sessionID,
	).Scan(&sess.ID, &sess.CreatedAt, &sess.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return sess, true, nil
}

func InsertHistoryEntry(ctx context.Context, db *sql.DB, entry HistoryEntry) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	created := entry.CreatedAt.UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, last_seen) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen`,
		entry.SessionID, created, created,
	); err != nil {
		return 0, fmt.Errorf("touch session: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO history_entries (session_id, category, value, from_unit, to_unit, result, formatted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID, entry.Category, entry.Value, entry.FromUnit, entry.ToUnit,
		entry.Result, entry.Formatted, created,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

func GetHistory(ctx context.Context, db *sql.DB, sessionID string) ([]HistoryEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, session_id, category, value, from_unit, to_unit, result, formatted, created_at
		 FROM history_entries WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Category, &e.Value, &e.FromUnit, &e.ToUnit,
			&e.Result, &e.Formatted, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func ClearHistory(ctx context.Context, db *sql.DB, sessionID string) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM history_entries WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteSessionsIdleBefore removes sessions, and their history, whose last
// activity is older than cutoff.
func DeleteSessionsIdleBefore(ctx context.Context, db *sql.DB, cutoff time.Time) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	cutoff = cutoff.UTC()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history_entries WHERE session_id IN (SELECT id FROM sessions WHERE last_seen < ?)`,
		cutoff,
	); err != nil {
		return 0, fmt.Errorf("delete idle history: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE last_seen < ?", cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), tx.Commit()
}
