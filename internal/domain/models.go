package domain

import "time"

// HistoryEntry records one successful conversion. Entries are never
// modified after they are appended.
type HistoryEntry struct {
	ID        int64
	SessionID string
	Category  string
	Value     float64
	FromUnit  string
	ToUnit    string
	Result    float64 // raw numeric result
	Formatted string  // Result as displayed
	CreatedAt time.Time
}

// Session is the owner of one history list. Browser sessions use a UUID,
// Slack sessions use "slack:<user id>".
type Session struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time
}

func SlackSessionID(userID string) string {
	return "slack:" + userID
}

// ConversionRequest is what a presentation surface asks the engine to do.
// Unit and category names may use any case; they are canonicalised before
// conversion.
type ConversionRequest struct {
	Value    float64 `json:"value"`
	FromUnit string  `json:"from"`
	ToUnit   string  `json:"to"`
	Category string  `json:"category"`
}
