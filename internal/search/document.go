// Package search provides supplementary full-text search over books and
// journal entries using Bleve. The exact substring searches on the domain
// services are unaffected; this index powers federated free-text search.
package search

import (
	"github.com/mindleafapp/mindleaf/internal/domain"
)

// DocType discriminates document kinds in the unified index.
type DocType string

// Document types.
const (
	DocTypeBook    DocType = "book"
	DocTypeJournal DocType = "journal"
)

// Document is the unified structure indexed for both books and journal
// entries. Tags are denormalized in so one query covers everything a user
// might remember about an item.
type Document struct {
	ID        string   `json:"id"`
	Type      DocType  `json:"type"`
	Title     string   `json:"title"`
	Author    string   `json:"author,omitempty"`
	Text      string   `json:"text,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names matching
// the index mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"title":      d.Title,
		"created_at": d.CreatedAt,
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Text != "" {
		m["text"] = d.Text
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// BookDocument builds the index document for a book.
func BookDocument(b *domain.Book) *Document {
	return &Document{
		ID:        b.ID,
		Type:      DocTypeBook,
		Title:     b.Title,
		Author:    b.Author,
		Tags:      b.Tags,
		CreatedAt: b.DateAdded.UnixMilli(),
	}
}

// JournalDocument builds the index document for a published journal entry.
func JournalDocument(e *domain.JournalEntry) *Document {
	title := e.PlainText
	if len(title) > 80 {
		title = title[:80]
	}
	return &Document{
		ID:        e.ID,
		Type:      DocTypeJournal,
		Title:     title,
		Text:      e.PlainText,
		Tags:      e.Tags,
		CreatedAt: e.DateCreated.UnixMilli(),
	}
}
