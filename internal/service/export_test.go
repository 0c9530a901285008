package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindleafapp/mindleaf/internal/domain"
)

func TestExportImport_RoundTrip(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	require.NoError(t, env.admin.SeedTags(ctx))

	bookID := createReadingBook(t, env, "Dune", 412)
	_, err := env.sessions.Create(ctx, CreateSessionInput{
		BookID: bookID, Duration: 1800, PagesRead: 40,
	})
	require.NoError(t, err)
	_, err = env.journal.Create(ctx, CreateEntryInput{Content: "<p>day one</p>", PlainText: "day one"})
	require.NoError(t, err)
	logMood(t, env, 4, time.Now(), []string{"content"}, []string{"reading"})

	snap, err := env.export.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SnapshotVersion, snap.Version)
	assert.Len(t, snap.Books, 1)
	assert.Len(t, snap.ReadingSessions, 1)
	assert.Len(t, snap.JournalEntries, 1)
	assert.Len(t, snap.MoodEntries, 1)
	assert.Len(t, snap.Tags, 42)

	// Wipe, then restore.
	require.NoError(t, env.admin.ClearAllData(ctx))
	books, err := env.books.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	require.NoError(t, env.export.Import(ctx, snap))

	restored, err := env.books.GetByID(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", restored.Title)
	assert.Equal(t, 40, restored.CurrentPage)

	sessions, err := env.sessions.GetByBook(ctx, bookID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	roundTripped, err := env.export.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(snap.Books), len(roundTripped.Books))
	assert.Equal(t, len(snap.ReadingSessions), len(roundTripped.ReadingSessions))
	assert.Equal(t, len(snap.Tags), len(roundTripped.Tags))
}

func TestImport_RejectsWrongVersion(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	err := env.export.Import(ctx, &domain.Snapshot{Version: "9.9.9"})
	require.Error(t, err)
}

func TestAdminClearAll_ReseedsTags(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	require.NoError(t, env.admin.SeedTags(ctx))

	createReadingBook(t, env, "Dune", 412)
	require.NoError(t, env.admin.ClearAllData(ctx))

	books, err := env.books.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	tags, err := env.tags.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 42)
}
