package history

import (
	"context"
	"sync"
	"time"

	"unitconv/internal/domain"
)

type HistoryEntry = domain.HistoryEntry

// Log is an ordered, caller-owned list of conversions for one session.
// It is not safe for concurrent use; stores wrap it with their own locking.
type Log struct {
	entries []HistoryEntry
	nextID  int64
}

func NewLog() *Log {
	return &Log{}
}

// Append adds entry at the end of the log and returns it with its ID set.
func (l *Log) Append(entry HistoryEntry) HistoryEntry {
	l.nextID++
	entry.ID = l.nextID
	l.entries = append(l.entries, entry)
	return entry
}

// Entries returns a copy of the log in insertion order.
func (l *Log) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) Clear() {
	l.entries = nil
}

// Store keeps one Log per session.
type Store interface {
	Append(ctx context.Context, sessionID string, entry HistoryEntry) (HistoryEntry, error)
	List(ctx context.Context, sessionID string) ([]HistoryEntry, error)
	Clear(ctx context.Context, sessionID string) error
	Touch(ctx context.Context, sessionID string, now time.Time) error
	// Session reports when sessionID was created and last seen. ok is false
	// for unknown or expired sessions.
	Session(ctx context.Context, sessionID string) (sess domain.Session, ok bool, err error)
	// ExpireIdle drops every session last seen before cutoff and returns
	// how many were removed.
	ExpireIdle(ctx context.Context, cutoff time.Time) (int, error)
}

type memorySession struct {
	domain.Session
	log *Log
}

// MemoryStore is a Store held entirely in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

func (s *MemoryStore) session(id string) *memorySession {
	sess, ok := s.sessions[id]
	if !ok {
		now := s.now()
		sess = &memorySession{
			Session: domain.Session{ID: id, CreatedAt: now, LastSeen: now},
			log:     NewLog(),
		}
		s.sessions[id] = sess
	}
	return sess
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, entry HistoryEntry) (HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)
	entry.SessionID = sessionID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	sess.LastSeen = entry.CreatedAt
	return sess.log.Append(entry), nil
}

func (s *MemoryStore) List(_ context.Context, sessionID string) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return sess.log.Entries(), nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.log.Clear()
	}
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, sessionID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(sessionID).LastSeen = now
	return nil
}

func (s *MemoryStore) Session(_ context.Context, sessionID string) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, false, nil
	}
	return sess.Session, true, nil
}

func (s *MemoryStore) ExpireIdle(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
