package service

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
	"github.com/mindleafapp/mindleaf/internal/id"
	"github.com/mindleafapp/mindleaf/internal/store"
	"github.com/mindleafapp/mindleaf/internal/util"
)

// SessionService manages reading sessions, including the quotes and
// thoughts embedded in them.
type SessionService struct {
	store  *store.Store
	books  *BookService
	logger *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(s *store.Store, books *BookService, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:  s,
		books:  books,
		logger: logger,
	}
}

// CreateSessionInput is the input for recording a reading session.
type CreateSessionInput struct {
	BookID     string     `json:"book_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Duration   int        `json:"duration"` // seconds
	PagesRead  int        `json:"pages_read"`
	Thoughts   []string   `json:"thoughts"`
	MoodBefore int        `json:"mood_before,omitempty"`
	MoodAfter  int        `json:"mood_after,omitempty"`
}

// Create records a session and advances the owning book's bookmark by
// PagesRead in the same transaction, which may auto-complete the book.
func (s *SessionService) Create(ctx context.Context, input CreateSessionInput) (*domain.ReadingSession, error) {
	if input.BookID == "" {
		return nil, apperrors.Validation("book id is required")
	}
	if input.Duration < 0 || input.PagesRead < 0 {
		return nil, apperrors.Validation("duration and pages read must not be negative")
	}
	if input.MoodBefore != 0 && !domain.ValidMoodLevel(input.MoodBefore) {
		return nil, apperrors.Validation("mood before must be between 1 and 5")
	}
	if input.MoodAfter != 0 && !domain.ValidMoodLevel(input.MoodAfter) {
		return nil, apperrors.Validation("mood after must be between 1 and 5")
	}

	sessionID, err := id.Generate("session")
	if err != nil {
		return nil, err
	}

	start := input.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	session := &domain.ReadingSession{
		ID:         sessionID,
		BookID:     input.BookID,
		StartTime:  start,
		EndTime:    input.EndTime,
		Duration:   input.Duration,
		PagesRead:  input.PagesRead,
		Quotes:     []domain.Quote{},
		Thoughts:   input.Thoughts,
		MoodBefore: input.MoodBefore,
		MoodAfter:  input.MoodAfter,
	}
	if session.Thoughts == nil {
		session.Thoughts = []string{}
	}

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		book, err := s.store.Books.GetTx(tx, input.BookID)
		if err != nil {
			return err
		}
		if err := s.store.Sessions.CreateTx(tx, session); err != nil {
			return err
		}
		if input.PagesRead > 0 {
			return s.books.updateProgressTx(tx, input.BookID, book.CurrentPage+input.PagesRead)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reading session recorded",
		"session_id", session.ID,
		"book_id", session.BookID,
		"pages_read", session.PagesRead,
		"duration_s", session.Duration)
	return session, nil
}

// CreateManual records a session the user entered after the fact: a
// calendar date plus duration in minutes instead of live start/end times.
func (s *SessionService) CreateManual(ctx context.Context, bookID string, date time.Time, minutes, pagesRead int) (*domain.ReadingSession, error) {
	if minutes < 0 {
		return nil, apperrors.Validation("minutes must not be negative")
	}
	end := date.Add(time.Duration(minutes) * time.Minute)
	return s.Create(ctx, CreateSessionInput{
		BookID:    bookID,
		StartTime: date,
		EndTime:   &end,
		Duration:  minutes * 60,
		PagesRead: pagesRead,
	})
}

// GetByID returns one session.
func (s *SessionService) GetByID(ctx context.Context, sessionID string) (*domain.ReadingSession, error) {
	return s.store.Sessions.Get(ctx, sessionID)
}

// GetByBook returns all sessions for one book.
func (s *SessionService) GetByBook(ctx context.Context, bookID string) ([]*domain.ReadingSession, error) {
	return s.store.Sessions.ByIndex(ctx, "book", bookID)
}

// GetByDateRange returns sessions with start <= StartTime < end, ascending.
func (s *SessionService) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.ReadingSession, error) {
	return s.store.Sessions.ByIndexRange(ctx, "start_time", store.TimeKey(start), store.TimeKey(end))
}

// GetRecent returns the most recent sessions, newest first.
func (s *SessionService) GetRecent(ctx context.Context, limit int) ([]*domain.ReadingSession, error) {
	sessions, err := s.store.Sessions.All(ctx)
	if err != nil {
		return nil, err
	}
	sortByTimeDesc(sessions, func(r *domain.ReadingSession) time.Time { return r.StartTime })
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Delete removes one session. The book's bookmark is left where it is.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	return s.store.Sessions.Delete(ctx, sessionID)
}

// AddQuote appends a quote to a session.
func (s *SessionService) AddQuote(ctx context.Context, sessionID, text string, pageNumber int) (*domain.Quote, error) {
	if text == "" {
		return nil, apperrors.Validation("quote text is required")
	}

	quoteID, err := id.Generate("quote")
	if err != nil {
		return nil, err
	}
	quote := domain.Quote{
		ID:         quoteID,
		Text:       text,
		PageNumber: pageNumber,
		CreatedAt:  time.Now(),
	}

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		session, err := s.store.Sessions.GetTx(tx, sessionID)
		if err != nil {
			return err
		}
		session.Quotes = append(session.Quotes, quote)
		return s.store.Sessions.PutTx(tx, session)
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// AddThought appends a free-form thought to a session.
func (s *SessionService) AddThought(ctx context.Context, sessionID, thought string) error {
	if thought == "" {
		return apperrors.Validation("thought text is required")
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		session, err := s.store.Sessions.GetTx(tx, sessionID)
		if err != nil {
			return err
		}
		session.Thoughts = append(session.Thoughts, thought)
		return s.store.Sessions.PutTx(tx, session)
	})
}

// AllQuotes returns every quote across all sessions, newest first.
func (s *SessionService) AllQuotes(ctx context.Context) ([]domain.Quote, error) {
	sessions, err := s.store.Sessions.All(ctx)
	if err != nil {
		return nil, err
	}
	var quotes []domain.Quote
	for _, sess := range sessions {
		quotes = append(quotes, sess.Quotes...)
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})
	return quotes, nil
}

// ReadingDays counts distinct local calendar days with at least one session
// in the lookback window ending today.
func (s *SessionService) ReadingDays(ctx context.Context, lookbackDays int) (int, error) {
	now := time.Now()
	start := util.StartOfDay(util.DaysAgo(now, lookbackDays))

	sessions, err := s.store.Sessions.ByIndexRange(ctx, "start_time",
		store.TimeKey(start), store.TimeKey(util.EndOfDay(now).Add(time.Nanosecond)))
	if err != nil {
		return 0, err
	}

	days := map[string]struct{}{}
	for _, sess := range sessions {
		days[util.DayKey(sess.StartTime)] = struct{}{}
	}
	return len(days), nil
}

// TotalReadingTime returns the total minutes read across all sessions,
// rounded from the stored seconds.
func (s *SessionService) TotalReadingTime(ctx context.Context) (int, error) {
	sessions, err := s.store.Sessions.All(ctx)
	if err != nil {
		return 0, err
	}
	seconds := 0
	for _, sess := range sessions {
		seconds += sess.Duration
	}
	return int(math.Round(float64(seconds) / 60)), nil
}
