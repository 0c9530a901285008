package service

import (
	"context"
	"log/slog"

	"github.com/mindleafapp/mindleaf/internal/search"
	"github.com/mindleafapp/mindleaf/internal/store"
)

// SearchService runs federated free-text search over the Bleve index and
// rebuilds it from the store when needed. Per-collection substring search
// stays on the domain services; this service answers "search everything"
// queries.
type SearchService struct {
	index  *search.Index
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, s *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  s,
		logger: logger,
	}
}

// Search executes a federated query across indexed books and journal
// entries.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocCount()
}

// ReindexAll rebuilds the search index from the current store contents.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.index.Rebuild(ctx, snap); err != nil {
		return err
	}

	total, _ := s.index.DocCount()
	s.logger.Info("search reindex complete", "documents", total)
	return nil
}
