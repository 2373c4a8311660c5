package store

import (
	"encoding/json"
	"time"
)

// createdAtLayout is RFC 3339 in UTC with millisecond precision.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Entry represents a single clipboard submission.
//
// - ID is unique among live entries and strictly increasing.
// - Text is trimmed and never empty.
// - ExpiresAt is CreatedAt plus the store retention; it is not serialized.
type Entry struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"-"`
}

// IsExpired checks whether the entry is expired at the given time.
func (e Entry) IsExpired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(e.ExpiresAt)
}

// MarshalJSON renders CreatedAt as an ISO-8601 string in UTC.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        int64  `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"createdAt"`
	}{
		ID:        e.ID,
		Text:      e.Text,
		CreatedAt: FormatTime(e.CreatedAt),
	})
}

// FormatTime renders t the way entries are serialized.
func FormatTime(t time.Time) string {
	return t.UTC().Format(createdAtLayout)
}
