// Package domain contains the core business entities and domain logic for the Mindleaf wellness tracker.
package domain

import "time"

// BookStatus is the reading lifecycle state of a book.
type BookStatus string

// Book statuses.
const (
	StatusReading    BookStatus = "reading"
	StatusCompleted  BookStatus = "completed"
	StatusWantToRead BookStatus = "want-to-read"
	StatusPaused     BookStatus = "paused"
)

// Valid reports whether the status is one of the known states.
func (s BookStatus) Valid() bool {
	switch s {
	case StatusReading, StatusCompleted, StatusWantToRead, StatusPaused:
		return true
	default:
		return false
	}
}

// Book represents a book the user is tracking.
type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	ISBN          string     `json:"isbn,omitempty"`
	CoverURL      string     `json:"cover_url,omitempty"`
	TotalPages    int        `json:"total_pages,omitempty"`
	CurrentPage   int        `json:"current_page"`
	Status        BookStatus `json:"status"`
	DateAdded     time.Time  `json:"date_added"`
	DateCompleted *time.Time `json:"date_completed,omitempty"`
	Tags          []string   `json:"tags"`
}

// IsCompleted reports whether the book has been finished.
func (b *Book) IsCompleted() bool {
	return b.Status == StatusCompleted
}

// Quote is a passage saved during a reading session.
// Quotes are embedded in their session and have no independent lifecycle.
type Quote struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	PageNumber int       `json:"page_number,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReadingSession records one sitting with a book.
// A session is owned by exactly one book; deleting the book deletes its sessions.
type ReadingSession struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Duration   int        `json:"duration"` // seconds
	PagesRead  int        `json:"pages_read"`
	Quotes     []Quote    `json:"quotes"`
	Thoughts   []string   `json:"thoughts"`
	MoodBefore int        `json:"mood_before,omitempty"` // 1-5, 0 = not recorded
	MoodAfter  int        `json:"mood_after,omitempty"`  // 1-5, 0 = not recorded
}
