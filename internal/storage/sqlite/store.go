package sqlite

import (
	"context"
	"database/sql"
	"time"

	"unitconv/internal/domain"
)

// Store adapts the sqlite helpers to history.Store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Append(ctx context.Context, sessionID string, entry HistoryEntry) (HistoryEntry, error) {
	entry.SessionID = sessionID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	id, err := InsertHistoryEntry(ctx, s.db, entry)
	if err != nil {
		return HistoryEntry{}, err
	}
	entry.ID = id
	return entry, nil
}

func (s *Store) List(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	return GetHistory(ctx, s.db, sessionID)
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	_, err := ClearHistory(ctx, s.db, sessionID)
	return err
}

func (s *Store) Touch(ctx context.Context, sessionID string, now time.Time) error {
	return TouchSession(ctx, s.db, sessionID, now)
}

func (s *Store) Session(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	return GetSession(ctx, s.db, sessionID)
}

func (s *Store) ExpireIdle(ctx context.Context, cutoff time.Time) (int, error) {
	return DeleteSessionsIdleBefore(ctx, s.db, cutoff)
}
