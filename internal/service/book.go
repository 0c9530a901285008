// Package service contains the domain services: validated writes, pre-built
// query shapes, and the aggregation, insight, and achievement logic built on
// the store.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
	"github.com/mindleafapp/mindleaf/internal/id"
	"github.com/mindleafapp/mindleaf/internal/metadata"
	"github.com/mindleafapp/mindleaf/internal/search"
	"github.com/mindleafapp/mindleaf/internal/store"
	"github.com/mindleafapp/mindleaf/internal/validation"
)

// BookService manages the book collection and its progress lifecycle.
type BookService struct {
	store     *store.Store
	indexer   search.Indexer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(s *store.Store, indexer search.Indexer, logger *slog.Logger) *BookService {
	return &BookService{
		store:     s,
		indexer:   indexer,
		validator: validation.New(),
		logger:    logger,
	}
}

// CreateBookInput is the input for creating a book.
type CreateBookInput struct {
	Title      string   `json:"title" validate:"required"`
	Author     string   `json:"author" validate:"required"`
	ISBN       string   `json:"isbn"`
	CoverURL   string   `json:"cover_url"`
	TotalPages int      `json:"total_pages" validate:"gte=0"`
	Status     string   `json:"status"`
	Tags       []string `json:"tags"`
}

// UpdateBookInput is a partial update; nil fields are left unchanged.
type UpdateBookInput struct {
	Title      *string   `json:"title,omitempty"`
	Author     *string   `json:"author,omitempty"`
	ISBN       *string   `json:"isbn,omitempty"`
	CoverURL   *string   `json:"cover_url,omitempty"`
	TotalPages *int      `json:"total_pages,omitempty"`
	Status     *string   `json:"status,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
}

// Create validates the input and inserts a new book.
func (s *BookService) Create(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	status := domain.BookStatus(input.Status)
	if input.Status == "" {
		status = domain.StatusWantToRead
	}
	if !status.Valid() {
		return nil, apperrors.Validationf("unknown book status %q", input.Status)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, err
	}

	book := &domain.Book{
		ID:         bookID,
		Title:      strings.TrimSpace(input.Title),
		Author:     strings.TrimSpace(input.Author),
		ISBN:       input.ISBN,
		CoverURL:   input.CoverURL,
		TotalPages: input.TotalPages,
		Status:     status,
		DateAdded:  time.Now(),
		Tags:       input.Tags,
	}
	if book.Title == "" || book.Author == "" {
		return nil, apperrors.Validation("title and author are required")
	}
	if book.Status == domain.StatusCompleted {
		now := time.Now()
		book.DateCompleted = &now
	}
	if book.Tags == nil {
		book.Tags = []string{}
	}

	if err := s.store.Books.Create(ctx, book); err != nil {
		return nil, err
	}

	s.indexBook(ctx, book)
	s.logger.Info("book created", "book_id", book.ID, "title", book.Title)
	return book, nil
}

// CreateFromCandidate turns an external metadata lookup result into a book.
func (s *BookService) CreateFromCandidate(ctx context.Context, c metadata.BookCandidate) (*domain.Book, error) {
	return s.Create(ctx, CreateBookInput{
		Title:      c.Title,
		Author:     c.Author,
		ISBN:       c.ISBN,
		CoverURL:   c.CoverURL,
		TotalPages: c.PageCount,
		Status:     string(domain.StatusWantToRead),
	})
}

// GetByID returns one book.
func (s *BookService) GetByID(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.Books.Get(ctx, bookID)
}

// GetAll returns every book.
func (s *BookService) GetAll(ctx context.Context) ([]*domain.Book, error) {
	return s.store.Books.All(ctx)
}

// GetByStatus returns all books in one lifecycle state.
func (s *BookService) GetByStatus(ctx context.Context, status domain.BookStatus) ([]*domain.Book, error) {
	if !status.Valid() {
		return nil, apperrors.Validationf("unknown book status %q", status)
	}
	return s.store.Books.ByIndex(ctx, "status", string(status))
}

// GetByTag returns all books carrying the given tag.
func (s *BookService) GetByTag(ctx context.Context, tag string) ([]*domain.Book, error) {
	return s.store.Books.ByIndex(ctx, "tags", tag)
}

// GetRecent returns the most recently added books, newest first.
func (s *BookService) GetRecent(ctx context.Context, limit int) ([]*domain.Book, error) {
	books, err := s.store.Books.All(ctx)
	if err != nil {
		return nil, err
	}
	sortByTimeDesc(books, func(b *domain.Book) time.Time { return b.DateAdded })
	if limit > 0 && len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

// Search matches books whose title, author, or tags contain the query,
// case-insensitive. No fuzzy matching.
func (s *BookService) Search(ctx context.Context, query string) ([]*domain.Book, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	books, err := s.store.Books.All(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.Book
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle) ||
			containsSubstring(b.Tags, needle) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// Update applies a partial update. Status changes to completed stamp
// DateCompleted only on the first transition.
func (s *BookService) Update(ctx context.Context, bookID string, input UpdateBookInput) error {
	var updated *domain.Book
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		book, err := s.store.Books.GetTx(tx, bookID)
		if err != nil {
			return err
		}

		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return apperrors.Validation("title must not be empty")
			}
			book.Title = strings.TrimSpace(*input.Title)
		}
		if input.Author != nil {
			if strings.TrimSpace(*input.Author) == "" {
				return apperrors.Validation("author must not be empty")
			}
			book.Author = strings.TrimSpace(*input.Author)
		}
		if input.ISBN != nil {
			book.ISBN = *input.ISBN
		}
		if input.CoverURL != nil {
			book.CoverURL = *input.CoverURL
		}
		if input.TotalPages != nil {
			if *input.TotalPages < 0 {
				return apperrors.Validation("total pages must not be negative")
			}
			book.TotalPages = *input.TotalPages
		}
		if input.Tags != nil {
			book.Tags = *input.Tags
		}
		if input.Status != nil {
			status := domain.BookStatus(*input.Status)
			if !status.Valid() {
				return apperrors.Validationf("unknown book status %q", *input.Status)
			}
			markCompleted(book, status, time.Now())
		}

		updated = book
		return s.store.Books.PutTx(tx, book)
	})
	if err != nil {
		return err
	}

	s.indexBook(ctx, updated)
	return nil
}

// UpdateProgress moves the bookmark. The page is clamped to TotalPages, and
// reaching the last known page auto-completes the book.
func (s *BookService) UpdateProgress(ctx context.Context, bookID string, newPage int) error {
	if newPage < 0 {
		return apperrors.Validation("page must not be negative")
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		return s.updateProgressTx(tx, bookID, newPage)
	})
}

// updateProgressTx is the transactional core of UpdateProgress, shared with
// session creation so a finished session can complete a book atomically.
func (s *BookService) updateProgressTx(tx *store.Tx, bookID string, newPage int) error {
	book, err := s.store.Books.GetTx(tx, bookID)
	if err != nil {
		return err
	}

	if book.TotalPages > 0 && newPage > book.TotalPages {
		newPage = book.TotalPages
	}
	book.CurrentPage = newPage

	if book.TotalPages > 0 && book.CurrentPage >= book.TotalPages {
		markCompleted(book, domain.StatusCompleted, time.Now())
	}

	return s.store.Books.PutTx(tx, book)
}

// Delete removes a book and all its reading sessions in one transaction.
func (s *BookService) Delete(ctx context.Context, bookID string) error {
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := s.store.Books.GetTx(tx, bookID); err != nil {
			return err
		}

		sessions, err := s.store.Sessions.ByIndexTx(tx, "book", bookID)
		if err != nil {
			return err
		}
		for _, sess := range sessions {
			if err := s.store.Sessions.DeleteTx(tx, sess.ID); err != nil {
				return err
			}
		}

		return s.store.Books.DeleteTx(tx, bookID)
	})
	if err != nil {
		return err
	}

	s.deindex(ctx, bookID)
	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

// markCompleted applies a status change, stamping DateCompleted only on the
// first transition into completed. Leaving and re-entering completed does
// not re-stamp.
func markCompleted(book *domain.Book, status domain.BookStatus, now time.Time) {
	if status == domain.StatusCompleted && book.DateCompleted == nil {
		book.DateCompleted = &now
	}
	book.Status = status
}

func (s *BookService) indexBook(ctx context.Context, book *domain.Book) {
	if book == nil {
		return
	}
	if err := s.indexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("book index update failed", "book_id", book.ID, "error", err)
	}
}

func (s *BookService) deindex(ctx context.Context, bookID string) {
	if err := s.indexer.Delete(ctx, bookID); err != nil {
		s.logger.Warn("book index delete failed", "book_id", bookID, "error", err)
	}
}

func containsSubstring(values []string, needle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
