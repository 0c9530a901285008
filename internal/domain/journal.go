package domain

import "time"

// JournalEntry is a rich-text journal entry.
// Content holds the editor's HTML; PlainText is the stripped text used for search.
// Draft entries are excluded from all counts, goal progress, and day-activity sets
// until published. A draft may be promoted, never demoted automatically.
type JournalEntry struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	PlainText    string    `json:"plain_text"`
	DateCreated  time.Time `json:"date_created"`
	DateModified time.Time `json:"date_modified"`
	MoodBefore   int       `json:"mood_before,omitempty"`
	MoodAfter    int       `json:"mood_after,omitempty"`
	Tags         []string  `json:"tags"`
	BookID       string    `json:"book_id,omitempty"`
	IsDraft      bool      `json:"is_draft"`
}
