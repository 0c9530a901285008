package service

import (
	"context"
	"log/slog"

	"github.com/mindleafapp/mindleaf/internal/domain"
	"github.com/mindleafapp/mindleaf/internal/store"
)

// DashboardStats is the aggregate snapshot shown on the home screen.
// Everything here is recomputed from raw records on every call.
type DashboardStats struct {
	TotalBooks          int `json:"total_books"`
	BooksReading        int `json:"books_reading"`
	BooksCompleted      int `json:"books_completed"`
	TotalSessions       int `json:"total_sessions"`
	TotalReadingMinutes int `json:"total_reading_minutes"`
	TotalQuotes         int `json:"total_quotes"`
	JournalEntries      int `json:"journal_entries"`
	MoodEntries         int `json:"mood_entries"`
	ActiveGoals         int `json:"active_goals"`
	Achievements        int `json:"achievements"`
	ReadingDays30       int `json:"reading_days_30"`
	JournalingDays30    int `json:"journaling_days_30"`
	MoodLoggingDays30   int `json:"mood_logging_days_30"`
}

// BookStats is the per-book reading summary.
type BookStats struct {
	Sessions        int     `json:"sessions"`
	TotalMinutes    int     `json:"total_minutes"`
	TotalPagesRead  int     `json:"total_pages_read"`
	Quotes          int     `json:"quotes"`
	ProgressPercent int     `json:"progress_percent"`
	AvgMoodAfter    float64 `json:"avg_mood_after,omitempty"`
}

// StatsService assembles dashboard and per-book aggregates from the other
// services.
type StatsService struct {
	store    *store.Store
	sessions *SessionService
	journal  *JournalService
	moods    *MoodService
	logger   *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(s *store.Store, sessions *SessionService, journal *JournalService, moods *MoodService, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:    s,
		sessions: sessions,
		journal:  journal,
		moods:    moods,
		logger:   logger,
	}
}

// Dashboard computes the home-screen aggregates.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalBooks, err = s.store.Books.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.BooksReading, err = s.store.Books.Count(ctx, func(b *domain.Book) bool {
		return b.Status == domain.StatusReading
	}); err != nil {
		return nil, err
	}
	if stats.BooksCompleted, err = s.store.Books.Count(ctx, func(b *domain.Book) bool {
		return b.IsCompleted()
	}); err != nil {
		return nil, err
	}
	if stats.TotalSessions, err = s.store.Sessions.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.TotalReadingMinutes, err = s.sessions.TotalReadingTime(ctx); err != nil {
		return nil, err
	}
	quotes, err := s.sessions.AllQuotes(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalQuotes = len(quotes)
	if stats.JournalEntries, err = s.store.Journal.Count(ctx, func(e *domain.JournalEntry) bool {
		return !e.IsDraft
	}); err != nil {
		return nil, err
	}
	if stats.MoodEntries, err = s.store.Moods.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.ActiveGoals, err = s.store.Goals.Count(ctx, func(g *domain.Goal) bool {
		return g.IsActive
	}); err != nil {
		return nil, err
	}
	if stats.Achievements, err = s.store.Achievements.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.ReadingDays30, err = s.sessions.ReadingDays(ctx, 30); err != nil {
		return nil, err
	}
	if stats.JournalingDays30, err = s.journal.JournalingDays(ctx, 30); err != nil {
		return nil, err
	}
	if stats.MoodLoggingDays30, err = s.moods.LoggingDays(ctx, 30); err != nil {
		return nil, err
	}

	return stats, nil
}

// ForBook computes the per-book reading summary.
func (s *StatsService) ForBook(ctx context.Context, bookID string) (*BookStats, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.Sessions.ByIndex(ctx, "book", bookID)
	if err != nil {
		return nil, err
	}

	stats := &BookStats{Sessions: len(sessions)}
	seconds := 0
	moodSum, moodN := 0, 0
	for _, sess := range sessions {
		seconds += sess.Duration
		stats.TotalPagesRead += sess.PagesRead
		stats.Quotes += len(sess.Quotes)
		if sess.MoodAfter != 0 {
			moodSum += sess.MoodAfter
			moodN++
		}
	}
	stats.TotalMinutes = seconds / 60
	if book.TotalPages > 0 {
		stats.ProgressPercent = roundPercent(book.CurrentPage, book.TotalPages)
	}
	if moodN > 0 {
		stats.AvgMoodAfter = round1(float64(moodSum) / float64(moodN))
	}
	return stats, nil
}
