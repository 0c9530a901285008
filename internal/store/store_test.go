package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
	"github.com/mindleafapp/mindleaf/internal/store"
)

// captureEmitter records every emitted change-set.
type captureEmitter struct {
	mu      sync.Mutex
	changes []store.ChangeSet
}

func (c *captureEmitter) Emit(cs store.ChangeSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, cs)
}

func (c *captureEmitter) all() []store.ChangeSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]store.ChangeSet(nil), c.changes...)
}

func setupTestStore(t *testing.T) (*store.Store, *captureEmitter) {
	t.Helper()

	emitter := &captureEmitter{}
	s, err := store.New(t.TempDir(), nil, emitter)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s, emitter
}

func testBook(id, title string) *domain.Book {
	return &domain.Book{
		ID:        id,
		Title:     title,
		Author:    "Test Author",
		Status:    domain.StatusReading,
		DateAdded: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "Dune")
	require.NoError(t, s.Books.Create(ctx, book))

	got, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	require.Equal(t, "Dune", got.Title)
	require.Equal(t, domain.StatusReading, got.Status)
}

func TestStore_Get_NotFound(t *testing.T) {
	s, _ := setupTestStore(t)

	got, err := s.Books.Get(context.Background(), "missing")
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Nil(t, got)
}

func TestStore_Create_AlreadyExists(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "Dune")))

	err := s.Books.Create(ctx, testBook("book-1", "Dune Messiah"))
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestStore_Put_ReplacesAndReindexes(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "Dune")
	require.NoError(t, s.Books.Create(ctx, book))

	book.Status = domain.StatusCompleted
	require.NoError(t, s.Books.Put(ctx, book))

	reading, err := s.Books.ByIndex(ctx, "status", string(domain.StatusReading))
	require.NoError(t, err)
	require.Empty(t, reading)

	completed, err := s.Books.ByIndex(ctx, "status", string(domain.StatusCompleted))
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, "book-1", completed[0].ID)
}

func TestStore_Delete_RemovesRecordAndIndexes(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "Dune")))
	require.NoError(t, s.Books.Delete(ctx, "book-1"))

	_, err := s.Books.Get(ctx, "book-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	byStatus, err := s.Books.ByIndex(ctx, "status", string(domain.StatusReading))
	require.NoError(t, err)
	require.Empty(t, byStatus)

	// Deleting again is a no-op, not an error.
	require.NoError(t, s.Books.Delete(ctx, "book-1"))
}

func TestStore_ByIndex_MultiValued(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	a := testBook("book-1", "Dune")
	a.Tags = []string{"sci-fi", "favorites"}
	b := testBook("book-2", "Hyperion")
	b.Tags = []string{"sci-fi"}
	require.NoError(t, s.Books.Create(ctx, a))
	require.NoError(t, s.Books.Create(ctx, b))

	sciFi, err := s.Books.ByIndex(ctx, "tags", "sci-fi")
	require.NoError(t, err)
	require.Len(t, sciFi, 2)

	favorites, err := s.Books.ByIndex(ctx, "tags", "favorites")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	require.Equal(t, "book-1", favorites[0].ID)
}

func TestStore_ByIndex_ValueIsNotPrefixMatched(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	happy := &domain.MoodEntry{ID: "mood-1", MoodLevel: 4,
		Timestamp: time.Now(), SpecificEmotions: []string{"happy"}}
	happyish := &domain.MoodEntry{ID: "mood-2", MoodLevel: 4,
		Timestamp: time.Now(), SpecificEmotions: []string{"happy hour"}}
	require.NoError(t, s.Moods.Create(ctx, happy))
	require.NoError(t, s.Moods.Create(ctx, happyish))

	got, err := s.Moods.ByIndex(ctx, "emotions", "happy")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "mood-1", got[0].ID)
}

func TestStore_ByIndexRange_HalfOpen(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC),
	}
	for i, ts := range times {
		m := &domain.MoodEntry{ID: "mood-" + string(rune('a'+i)), MoodLevel: 3, Timestamp: ts}
		require.NoError(t, s.Moods.Create(ctx, m))
	}

	// Lower bound inclusive, upper bound exclusive.
	got, err := s.Moods.ByIndexRange(ctx, "timestamp",
		store.TimeKey(times[0]), store.TimeKey(times[2]))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "mood-a", got[0].ID)
	require.Equal(t, "mood-b", got[1].ID)
}

func TestStore_ByIndexAbove_StrictlyGreater(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Moods.Create(ctx, &domain.MoodEntry{ID: "mood-1", MoodLevel: 3, Timestamp: t1}))
	require.NoError(t, s.Moods.Create(ctx, &domain.MoodEntry{ID: "mood-2", MoodLevel: 3, Timestamp: t2}))

	got, err := s.Moods.ByIndexAbove(ctx, "timestamp", store.TimeKey(t1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "mood-2", got[0].ID)
}

func TestStore_ByIndexBelow_StrictlyLess(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Moods.Create(ctx, &domain.MoodEntry{ID: "mood-1", MoodLevel: 3, Timestamp: t1}))
	require.NoError(t, s.Moods.Create(ctx, &domain.MoodEntry{ID: "mood-2", MoodLevel: 3, Timestamp: t2}))

	got, err := s.Moods.ByIndexBelow(ctx, "timestamp", store.TimeKey(t2))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "mood-1", got[0].ID)
}

func TestStore_TimeIndex_ChronologicalOrder(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	// Insert out of order; range scans must come back chronological.
	stamps := []time.Time{
		time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	ids := []string{"session-c", "session-a", "session-b"}
	for i, ts := range stamps {
		sess := &domain.ReadingSession{ID: ids[i], BookID: "book-1", StartTime: ts}
		require.NoError(t, s.Sessions.Create(ctx, sess))
	}

	got, err := s.Sessions.ByIndexRange(ctx, "start_time",
		store.TimeKey(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		store.TimeKey(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "session-a", got[0].ID)
	require.Equal(t, "session-b", got[1].ID)
	require.Equal(t, "session-c", got[2].ID)
}

func TestStore_UniqueIndex_RejectsDuplicates(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	first := &domain.Achievement{ID: "achievement-1", Type: domain.AchFirstSession, EarnedAt: time.Now()}
	require.NoError(t, s.Achievements.Create(ctx, first))

	dup := &domain.Achievement{ID: "achievement-2", Type: domain.AchFirstSession, EarnedAt: time.Now()}
	err := s.Achievements.Create(ctx, dup)
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestStore_CreateIfAbsent_IdempotentOnUniqueIndex(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	first := &domain.Achievement{ID: "achievement-1", Type: domain.AchFirstSession, EarnedAt: time.Now()}
	created, err := s.Achievements.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	dup := &domain.Achievement{ID: "achievement-2", Type: domain.AchFirstSession, EarnedAt: time.Now()}
	created, err = s.Achievements.CreateIfAbsent(ctx, dup)
	require.NoError(t, err)
	require.False(t, created)

	count, err := s.Achievements.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestStore_Update_EmitsOneCoalescedChangeSet(t *testing.T) {
	s, emitter := setupTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *store.Tx) error {
		if err := s.Books.PutTx(tx, testBook("book-1", "Dune")); err != nil {
			return err
		}
		sess := &domain.ReadingSession{ID: "session-1", BookID: "book-1", StartTime: time.Now()}
		return s.Sessions.PutTx(tx, sess)
	})
	require.NoError(t, err)

	changes := emitter.all()
	require.Len(t, changes, 1)
	require.True(t, changes[0].Touches(store.CollectionBooks))
	require.True(t, changes[0].Touches(store.CollectionSessions))
	require.False(t, changes[0].Touches(store.CollectionMoods))
}

func TestStore_Update_RollbackEmitsNothing(t *testing.T) {
	s, emitter := setupTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *store.Tx) error {
		if err := s.Books.PutTx(tx, testBook("book-1", "Dune")); err != nil {
			return err
		}
		return apperrors.Validation("abort")
	})
	require.Error(t, err)

	// Nothing persisted and nothing announced.
	_, err = s.Books.Get(ctx, "book-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Empty(t, emitter.all())
}

func TestStore_ReadTracking_RecordsCollections(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "Dune")))

	tracked, rs := store.WithReadTracking(ctx)
	_, err := s.Books.All(tracked)
	require.NoError(t, err)
	_, err = s.Moods.Count(tracked, nil)
	require.NoError(t, err)

	require.True(t, rs.Contains(store.CollectionBooks))
	require.True(t, rs.Contains(store.CollectionMoods))
	require.False(t, rs.Contains(store.CollectionGoals))
	require.True(t, rs.ContainsAny([]store.Collection{store.CollectionGoals, store.CollectionBooks}))
}

func TestStore_SeedDefaultTags(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedDefaultTags(ctx))

	tags, err := s.Tags.All(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 42)

	emotions, err := s.Tags.ByIndex(ctx, "category", string(domain.TagEmotion))
	require.NoError(t, err)
	require.Len(t, emotions, 30)

	activities, err := s.Tags.ByIndex(ctx, "category", string(domain.TagActivity))
	require.NoError(t, err)
	require.Len(t, activities, 12)

	// Re-seeding on a populated catalog is a no-op.
	custom := &domain.Tag{ID: "tag-custom", Name: "memoir", Category: domain.TagTopic, IsCustom: true}
	require.NoError(t, s.Tags.Create(ctx, custom))
	require.NoError(t, s.SeedDefaultTags(ctx))

	count, err := s.Tags.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 43, count)
}

func TestStore_ClearAll_WipesAndReseeds(t *testing.T) {
	s, emitter := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedDefaultTags(ctx))
	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "Dune")))
	require.NoError(t, s.Moods.Create(ctx, &domain.MoodEntry{ID: "mood-1", MoodLevel: 4, Timestamp: time.Now()}))

	before := len(emitter.all())
	require.NoError(t, s.ClearAll(ctx))

	books, err := s.Books.All(ctx)
	require.NoError(t, err)
	require.Empty(t, books)

	moods, err := s.Moods.All(ctx)
	require.NoError(t, err)
	require.Empty(t, moods)

	tags, err := s.Tags.All(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 42)

	changes := emitter.all()
	require.Len(t, changes, before+1)
	last := changes[len(changes)-1]
	for _, col := range store.AllCollections {
		require.True(t, last.Touches(col), "expected change-set to touch %s", col)
	}
}

func TestStore_Snapshot_RoundTrip(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedDefaultTags(ctx))
	book := testBook("book-1", "Dune")
	book.Tags = []string{"sci-fi"}
	require.NoError(t, s.Books.Create(ctx, book))
	require.NoError(t, s.Sessions.Create(ctx, &domain.ReadingSession{
		ID: "session-1", BookID: "book-1", StartTime: time.Now(), PagesRead: 20,
	}))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.SnapshotVersion, snap.Version)
	require.Len(t, snap.Books, 1)
	require.Len(t, snap.ReadingSessions, 1)
	require.Len(t, snap.Tags, 42)

	// Import into a fresh store restores records and their indexes.
	s2, _ := setupTestStore(t)
	require.NoError(t, s2.Import(ctx, snap))

	got, err := s2.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	require.Equal(t, "Dune", got.Title)

	byTag, err := s2.Books.ByIndex(ctx, "tags", "sci-fi")
	require.NoError(t, err)
	require.Len(t, byTag, 1)

	sessions, err := s2.Sessions.ByIndex(ctx, "book", "book-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}

func TestStore_Import_RejectsUnknownVersion(t *testing.T) {
	s, _ := setupTestStore(t)

	snap := &domain.Snapshot{Version: "9.9.9"}
	err := s.Import(context.Background(), snap)
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestStore_Import_ReplacesExistingData(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-old", "Old Book")))

	snap := &domain.Snapshot{
		Version: domain.SnapshotVersion,
		Books:   []domain.Book{*testBook("book-new", "New Book")},
	}
	require.NoError(t, s.Import(ctx, snap))

	_, err := s.Books.Get(ctx, "book-old")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := s.Books.Get(ctx, "book-new")
	require.NoError(t, err)
	require.Equal(t, "New Book", got.Title)
}

func TestStore_SchemaVersion_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := store.New(dir, nil, store.NewNoopEmitter())
	require.NoError(t, err)
	require.NoError(t, s.Books.Create(context.Background(), testBook("book-1", "Dune")))
	require.NoError(t, s.Close())

	s, err = store.New(dir, nil, store.NewNoopEmitter())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Books.Get(context.Background(), "book-1")
	require.NoError(t, err)
	require.Equal(t, "Dune", got.Title)
}
