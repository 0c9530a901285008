package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/mindleafapp/mindleaf/internal/domain"
)

// Indexer receives documents to keep the search index current. Services
// call it best-effort: an indexing failure never fails the write that
// triggered it.
type Indexer interface {
	IndexBook(ctx context.Context, b *domain.Book) error
	IndexJournalEntry(ctx context.Context, e *domain.JournalEntry) error
	Delete(ctx context.Context, id string) error
}

// NoopIndexer discards all indexing calls. Used in tests and when search
// is disabled.
type NoopIndexer struct{}

// IndexBook implements Indexer as a no-op.
func (NoopIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// IndexJournalEntry implements Indexer as a no-op.
func (NoopIndexer) IndexJournalEntry(context.Context, *domain.JournalEntry) error { return nil }

// Delete implements Indexer as a no-op.
func (NoopIndexer) Delete(context.Context, string) error { return nil }

// NewNoopIndexer creates a new no-op indexer.
func NewNoopIndexer() Indexer {
	return NoopIndexer{}
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch on startup triggers an automatic rebuild.
const mappingVersion = "1"

// Index wraps a Bleve index with domain-specific operations.
//
// Thread safety: all public methods are safe for concurrent use. The mutex
// protects against index corruption during rebuild operations.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// NewIndex creates or opens a search index. A corrupted index or an
// outdated mapping version is removed and recreated.
func NewIndex(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(existingVersion) != mappingVersion {
			logger.Info("search index mapping outdated, will rebuild",
				"new_version", mappingVersion)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing search index, will recreate",
				"path", indexPath, "error", err)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &Index{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook implements Indexer.
func (s *Index) IndexBook(_ context.Context, b *domain.Book) error {
	return s.indexDocument(BookDocument(b))
}

// IndexJournalEntry implements Indexer. Drafts are never indexed.
func (s *Index) IndexJournalEntry(_ context.Context, e *domain.JournalEntry) error {
	if e.IsDraft {
		return nil
	}
	return s.indexDocument(JournalDocument(e))
}

// Delete implements Indexer. Deleting an unindexed ID is a no-op.
func (s *Index) Delete(_ context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// Rebuild replaces the index contents from a full snapshot of the data.
// Documents absent from the snapshot are dropped.
func (s *Index) Rebuild(ctx context.Context, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.index.NewBatch()

	existing, err := s.allDocIDs()
	if err != nil {
		return fmt.Errorf("list indexed documents: %w", err)
	}
	for _, id := range existing {
		batch.Delete(id)
	}

	for i := range snap.Books {
		doc := BookDocument(&snap.Books[i])
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return err
		}
	}
	for i := range snap.JournalEntries {
		if snap.JournalEntries[i].IsDraft {
			continue
		}
		doc := JournalDocument(&snap.JournalEntries[i])
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("rebuild index batch: %w", err)
	}
	s.logger.Info("search index rebuilt",
		"books", len(snap.Books), "journal_entries", len(snap.JournalEntries))
	return nil
}

// DocCount returns the number of indexed documents.
func (s *Index) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

func (s *Index) indexDocument(doc *Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// allDocIDs returns the IDs of every indexed document. Callers must hold
// the mutex.
func (s *Index) allDocIDs() ([]string, error) {
	count, err := s.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	request := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := s.index.Search(request)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
