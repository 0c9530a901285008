package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
	"github.com/mindleafapp/mindleaf/internal/id"
	"github.com/mindleafapp/mindleaf/internal/search"
	"github.com/mindleafapp/mindleaf/internal/store"
	"github.com/mindleafapp/mindleaf/internal/util"
)

// JournalService manages journal entries and their draft lifecycle.
// Drafts never count toward goals, aggregates, or day-activity sets.
type JournalService struct {
	store   *store.Store
	indexer search.Indexer
	logger  *slog.Logger
}

// NewJournalService creates a new journal service.
func NewJournalService(s *store.Store, indexer search.Indexer, logger *slog.Logger) *JournalService {
	return &JournalService{
		store:   s,
		indexer: indexer,
		logger:  logger,
	}
}

// CreateEntryInput is the input for creating a journal entry.
// Content is the editor's rich text; PlainText is its stripped form used
// for searching. Stripping is the editor's job, not this core's.
type CreateEntryInput struct {
	Content    string   `json:"content"`
	PlainText  string   `json:"plain_text"`
	MoodBefore int      `json:"mood_before,omitempty"`
	MoodAfter  int      `json:"mood_after,omitempty"`
	Tags       []string `json:"tags"`
	BookID     string   `json:"book_id,omitempty"`
	IsDraft    bool     `json:"is_draft"`
}

// UpdateEntryInput is a partial update; nil fields are left unchanged.
// A published entry cannot be demoted back to draft.
type UpdateEntryInput struct {
	Content   *string   `json:"content,omitempty"`
	PlainText *string   `json:"plain_text,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	BookID    *string   `json:"book_id,omitempty"`
}

// Create inserts a new entry, draft or published.
func (s *JournalService) Create(ctx context.Context, input CreateEntryInput) (*domain.JournalEntry, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.Validation("content is required")
	}
	if input.MoodBefore != 0 && !domain.ValidMoodLevel(input.MoodBefore) {
		return nil, apperrors.Validation("mood before must be between 1 and 5")
	}
	if input.MoodAfter != 0 && !domain.ValidMoodLevel(input.MoodAfter) {
		return nil, apperrors.Validation("mood after must be between 1 and 5")
	}

	entryID, err := id.Generate("journal")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &domain.JournalEntry{
		ID:           entryID,
		Content:      input.Content,
		PlainText:    input.PlainText,
		DateCreated:  now,
		DateModified: now,
		MoodBefore:   input.MoodBefore,
		MoodAfter:    input.MoodAfter,
		Tags:         input.Tags,
		BookID:       input.BookID,
		IsDraft:      input.IsDraft,
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}

	if err := s.store.Journal.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.indexEntry(ctx, entry)
	s.logger.Info("journal entry created", "entry_id", entry.ID, "draft", entry.IsDraft)
	return entry, nil
}

// Update applies a partial update and stamps DateModified.
func (s *JournalService) Update(ctx context.Context, entryID string, input UpdateEntryInput) error {
	var updated *domain.JournalEntry
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		entry, err := s.store.Journal.GetTx(tx, entryID)
		if err != nil {
			return err
		}

		if input.Content != nil {
			if strings.TrimSpace(*input.Content) == "" {
				return apperrors.Validation("content must not be empty")
			}
			entry.Content = *input.Content
		}
		if input.PlainText != nil {
			entry.PlainText = *input.PlainText
		}
		if input.Tags != nil {
			entry.Tags = *input.Tags
		}
		if input.BookID != nil {
			entry.BookID = *input.BookID
		}
		entry.DateModified = time.Now()

		updated = entry
		return s.store.Journal.PutTx(tx, entry)
	})
	if err != nil {
		return err
	}

	s.indexEntry(ctx, updated)
	return nil
}

// Publish promotes a draft. DateModified is stamped, DateCreated never
// changes. Publishing a published entry is a no-op.
func (s *JournalService) Publish(ctx context.Context, entryID string) error {
	var published *domain.JournalEntry
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		entry, err := s.store.Journal.GetTx(tx, entryID)
		if err != nil {
			return err
		}
		if !entry.IsDraft {
			return nil
		}
		entry.IsDraft = false
		entry.DateModified = time.Now()
		published = entry
		return s.store.Journal.PutTx(tx, entry)
	})
	if err != nil {
		return err
	}

	if published != nil {
		s.indexEntry(ctx, published)
		s.logger.Info("journal entry published", "entry_id", entryID)
	}
	return nil
}

// Delete removes one entry.
func (s *JournalService) Delete(ctx context.Context, entryID string) error {
	if err := s.store.Journal.Delete(ctx, entryID); err != nil {
		return err
	}
	if err := s.indexer.Delete(ctx, entryID); err != nil {
		s.logger.Warn("journal index delete failed", "entry_id", entryID, "error", err)
	}
	return nil
}

// GetByID returns one entry, draft or published.
func (s *JournalService) GetByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return s.store.Journal.Get(ctx, entryID)
}

// GetPublished returns all published entries, newest first.
func (s *JournalService) GetPublished(ctx context.Context) ([]*domain.JournalEntry, error) {
	entries, err := s.store.Journal.ByIndex(ctx, "is_draft", store.BoolKey(false))
	if err != nil {
		return nil, err
	}
	sortByTimeDesc(entries, func(e *domain.JournalEntry) time.Time { return e.DateCreated })
	return entries, nil
}

// GetDrafts returns all drafts, newest first.
func (s *JournalService) GetDrafts(ctx context.Context) ([]*domain.JournalEntry, error) {
	entries, err := s.store.Journal.ByIndex(ctx, "is_draft", store.BoolKey(true))
	if err != nil {
		return nil, err
	}
	sortByTimeDesc(entries, func(e *domain.JournalEntry) time.Time { return e.DateCreated })
	return entries, nil
}

// GetByBook returns published entries attached to one book.
func (s *JournalService) GetByBook(ctx context.Context, bookID string) ([]*domain.JournalEntry, error) {
	entries, err := s.store.Journal.ByIndex(ctx, "book", bookID)
	if err != nil {
		return nil, err
	}
	return published(entries), nil
}

// GetByTag returns published entries carrying one tag.
func (s *JournalService) GetByTag(ctx context.Context, tag string) ([]*domain.JournalEntry, error) {
	entries, err := s.store.Journal.ByIndex(ctx, "tags", tag)
	if err != nil {
		return nil, err
	}
	return published(entries), nil
}

// GetByDateRange returns published entries with start <= DateCreated < end.
func (s *JournalService) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.JournalEntry, error) {
	entries, err := s.store.Journal.ByIndexRange(ctx, "date_created",
		store.TimeKey(start), store.TimeKey(end))
	if err != nil {
		return nil, err
	}
	return published(entries), nil
}

// Search matches published entries whose plain text or tags contain the
// query, case-insensitive.
func (s *JournalService) Search(ctx context.Context, query string) ([]*domain.JournalEntry, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	entries, err := s.store.Journal.All(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.JournalEntry
	for _, e := range entries {
		if e.IsDraft {
			continue
		}
		if strings.Contains(strings.ToLower(e.PlainText), needle) ||
			containsSubstring(e.Tags, needle) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// JournalingDays counts distinct local calendar days with at least one
// published entry in the lookback window ending today.
func (s *JournalService) JournalingDays(ctx context.Context, lookbackDays int) (int, error) {
	now := time.Now()
	start := util.StartOfDay(util.DaysAgo(now, lookbackDays))

	entries, err := s.GetByDateRange(ctx, start, util.EndOfDay(now).Add(time.Nanosecond))
	if err != nil {
		return 0, err
	}

	days := map[string]struct{}{}
	for _, e := range entries {
		days[util.DayKey(e.DateCreated)] = struct{}{}
	}
	return len(days), nil
}

// published filters out drafts.
func published(entries []*domain.JournalEntry) []*domain.JournalEntry {
	var out []*domain.JournalEntry
	for _, e := range entries {
		if !e.IsDraft {
			out = append(out, e)
		}
	}
	return out
}

func (s *JournalService) indexEntry(ctx context.Context, entry *domain.JournalEntry) {
	if entry == nil || entry.IsDraft {
		return
	}
	if err := s.indexer.IndexJournalEntry(ctx, entry); err != nil {
		s.logger.Warn("journal index update failed", "entry_id", entry.ID, "error", err)
	}
}
