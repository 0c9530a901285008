package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindleafapp/mindleaf/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := NewIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func testBook(id, title, author string, tags ...string) *domain.Book {
	return &domain.Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Tags:      tags,
		DateAdded: time.Now(),
	}
}

func TestNewIndex_Empty(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexBook(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "J.R.R. Tolkien")))

	count, err := index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_DraftsNeverIndexed(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexJournalEntry(ctx, &domain.JournalEntry{
		ID: "entry-1", PlainText: "secret draft thoughts", IsDraft: true,
		DateCreated: time.Now(),
	}))
	require.NoError(t, index.IndexJournalEntry(ctx, &domain.JournalEntry{
		ID: "entry-2", PlainText: "published thoughts on reading",
		DateCreated: time.Now(),
	}))

	count, err := index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_Delete(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "J.R.R. Tolkien")))
	require.NoError(t, index.Delete(ctx, "book-1"))

	count, err := index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// Deleting an unindexed ID is a no-op.
	require.NoError(t, index.Delete(ctx, "book-missing"))
}

func TestIndex_Search_Federated(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "J.R.R. Tolkien", "fantasy")))
	require.NoError(t, index.IndexBook(ctx, testBook("book-2", "Dune", "Frank Herbert")))
	require.NoError(t, index.IndexJournalEntry(ctx, &domain.JournalEntry{
		ID: "entry-1", PlainText: "Finished rereading Tolkien tonight, wonderful as ever.",
		DateCreated: time.Now(),
	}))

	result, err := index.Search(ctx, DefaultParams("Tolkien"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)

	types := make(map[string]DocType, len(result.Hits))
	for _, hit := range result.Hits {
		types[hit.ID] = hit.Type
	}
	assert.Equal(t, DocTypeBook, types["book-1"])
	assert.Equal(t, DocTypeJournal, types["entry-1"])
}

func TestIndex_Search_TypeFilter(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "J.R.R. Tolkien")))
	require.NoError(t, index.IndexJournalEntry(ctx, &domain.JournalEntry{
		ID: "entry-1", PlainText: "Notes on Tolkien and world-building.",
		DateCreated: time.Now(),
	}))

	result, err := index.Search(ctx, Params{
		Query: "Tolkien",
		Types: []DocType{DocTypeJournal},
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "entry-1", result.Hits[0].ID)
	assert.Equal(t, DocTypeJournal, result.Hits[0].Type)
}

func TestIndex_Search_HitFields(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "J.R.R. Tolkien")))

	result, err := index.Search(ctx, DefaultParams("Hobbit"))
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "The Hobbit", result.Hits[0].Title)
	assert.Equal(t, "J.R.R. Tolkien", result.Hits[0].Author)
}

func TestIndex_Search_EmptyQueryMatchesAll(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "J.R.R. Tolkien")))
	require.NoError(t, index.IndexBook(ctx, testBook("book-2", "Dune", "Frank Herbert")))

	result, err := index.Search(ctx, DefaultParams(""))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	// A stale document that no longer exists in the snapshot.
	require.NoError(t, index.IndexBook(ctx, testBook("book-old", "Forgotten", "Nobody")))

	snap := &domain.Snapshot{
		Books: []domain.Book{
			*testBook("book-1", "The Hobbit", "J.R.R. Tolkien"),
		},
		JournalEntries: []domain.JournalEntry{
			{ID: "entry-1", PlainText: "published entry", DateCreated: time.Now()},
			{ID: "entry-2", PlainText: "draft entry", IsDraft: true, DateCreated: time.Now()},
		},
	}
	require.NoError(t, index.Rebuild(ctx, snap))

	result, err := index.Search(ctx, DefaultParams("Hobbit"))
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "book-1", result.Hits[0].ID)

	// Drafts stay out of the rebuilt index.
	drafts, err := index.Search(ctx, DefaultParams("draft"))
	require.NoError(t, err)
	assert.Empty(t, drafts.Hits)
}
