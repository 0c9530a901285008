package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
)

func createReadingBook(t *testing.T, env *testEnv, title string, pages int) string {
	t.Helper()
	book, err := env.books.Create(context.Background(), CreateBookInput{
		Title:      title,
		Author:     "Test Author",
		TotalPages: pages,
		Status:     "reading",
	})
	require.NoError(t, err)
	return book.ID
}

func TestSessionCreate_RequiresExistingBook(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.sessions.Create(ctx, CreateSessionInput{BookID: "book-missing", Duration: 600})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = env.sessions.Create(ctx, CreateSessionInput{Duration: 600})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestSessionCreate_AdvancesBookmark(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	bookID := createReadingBook(t, env, "Dune", 412)

	_, err := env.sessions.Create(ctx, CreateSessionInput{
		BookID: bookID, Duration: 1800, PagesRead: 40,
	})
	require.NoError(t, err)
	_, err = env.sessions.Create(ctx, CreateSessionInput{
		BookID: bookID, Duration: 1800, PagesRead: 25,
	})
	require.NoError(t, err)

	book, err := env.books.GetByID(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 65, book.CurrentPage)
}

func TestSessionCreate_RejectsInvalidMood(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	bookID := createReadingBook(t, env, "Dune", 412)

	_, err := env.sessions.Create(ctx, CreateSessionInput{
		BookID: bookID, Duration: 600, MoodAfter: 6,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	// Zero means not recorded and is always fine.
	_, err = env.sessions.Create(ctx, CreateSessionInput{BookID: bookID, Duration: 600})
	require.NoError(t, err)
}

func TestSessionQuotes_NewestFirst(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	bookID := createReadingBook(t, env, "Dune", 412)

	sess, err := env.sessions.Create(ctx, CreateSessionInput{BookID: bookID, Duration: 600})
	require.NoError(t, err)

	first, err := env.sessions.AddQuote(ctx, sess.ID, "Fear is the mind-killer.", 8)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := env.sessions.AddQuote(ctx, sess.ID, "The sleeper must awaken.", 112)
	require.NoError(t, err)

	quotes, err := env.sessions.AllQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, second.ID, quotes[0].ID)
	assert.Equal(t, first.ID, quotes[1].ID)
}

func TestSessionReadingDays_DistinctDays(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	bookID := createReadingBook(t, env, "Dune", 412)

	now := time.Now()
	// Two sessions today, one three days ago: two distinct days.
	for _, start := range []time.Time{now, now.Add(-2 * time.Hour), now.AddDate(0, 0, -3)} {
		_, err := env.sessions.Create(ctx, CreateSessionInput{
			BookID: bookID, StartTime: start, Duration: 600,
		})
		require.NoError(t, err)
	}

	days, err := env.sessions.ReadingDays(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, days)
}

func TestSessionTotalReadingTime_RoundsToMinutes(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	bookID := createReadingBook(t, env, "Dune", 412)

	for _, seconds := range []int{90, 30} {
		_, err := env.sessions.Create(ctx, CreateSessionInput{BookID: bookID, Duration: seconds})
		require.NoError(t, err)
	}

	minutes, err := env.sessions.TotalReadingTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, minutes)
}

func TestSessionDelete_LeavesBookmark(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	bookID := createReadingBook(t, env, "Dune", 412)

	sess, err := env.sessions.Create(ctx, CreateSessionInput{
		BookID: bookID, Duration: 600, PagesRead: 40,
	})
	require.NoError(t, err)

	require.NoError(t, env.sessions.Delete(ctx, sess.ID))

	book, err := env.books.GetByID(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 40, book.CurrentPage)
}
