package live_test

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
	"github.com/mindleafapp/mindleaf/internal/live"
	"github.com/mindleafapp/mindleaf/internal/store"
	"github.com/mindleafapp/mindleaf/internal/util"
)

func setupLive(t *testing.T) (*store.Store, *live.Manager, context.Context) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	mgr := live.NewManager(logger)

	s, err := store.New(t.TempDir(), logger, mgr)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go mgr.Start(ctx)

	t.Cleanup(func() {
		cancel()
		_ = s.Close()
	})

	return s, mgr, ctx
}

func waitForValue[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for query result")
		panic("unreachable")
	}
}

func TestObserve_InitialRun(t *testing.T) {
	s, mgr, ctx := setupLive(t)

	require.NoError(t, s.Moods.Create(ctx, &domain.MoodEntry{
		ID: "mood-1", MoodLevel: 4, Timestamp: time.Now(),
	}))

	q := live.Observe(ctx, mgr, func(ctx context.Context) (int, error) {
		return s.Moods.Count(ctx, nil)
	})
	defer q.Close()

	count, ok := q.Get()
	require.True(t, ok)
	require.Equal(t, 1, count)
	require.Contains(t, q.Deps(), store.CollectionMoods)
}

func TestObserve_RerunsOnRelevantWrite(t *testing.T) {
	s, mgr, ctx := setupLive(t)

	todayStart := util.StartOfDay(time.Now())
	todayEnd := util.EndOfDay(time.Now())

	q := live.Observe(ctx, mgr, func(ctx context.Context) ([]*domain.MoodEntry, error) {
		return s.Moods.ByIndexRange(ctx, "timestamp",
			store.TimeKey(todayStart), store.TimeKey(todayEnd))
	})
	defer q.Close()

	results := make(chan []*domain.MoodEntry, 16)
	unsub := q.Subscribe(func(moods []*domain.MoodEntry) {
		results <- moods
	})
	defer unsub()

	// Subscribing delivers the current (empty) result immediately.
	require.Empty(t, waitForValue(t, results))

	require.NoError(t, s.Moods.Create(ctx, &domain.MoodEntry{
		ID: "mood-1", MoodLevel: 5, Timestamp: time.Now(),
	}))

	got := waitForValue(t, results)
	require.Len(t, got, 1)
	require.Equal(t, "mood-1", got[0].ID)
}

func TestObserve_IgnoresUnrelatedWrites(t *testing.T) {
	s, mgr, ctx := setupLive(t)

	var runs atomic.Int32
	q := live.Observe(ctx, mgr, func(ctx context.Context) (int, error) {
		runs.Add(1)
		return s.Moods.Count(ctx, nil)
	})
	defer q.Close()

	require.Equal(t, int32(1), runs.Load())

	// Writes to collections the query never read must not re-run it.
	require.NoError(t, s.Books.Create(ctx, &domain.Book{
		ID: "book-1", Title: "Dune", Author: "Frank Herbert",
		Status: domain.StatusReading, DateAdded: time.Now(),
	}))

	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), runs.Load())
}

func TestObserve_MultiCollectionTransactionNotifiesOnce(t *testing.T) {
	s, mgr, ctx := setupLive(t)

	var runs atomic.Int32
	q := live.Observe(ctx, mgr, func(ctx context.Context) (int, error) {
		runs.Add(1)
		books, err := s.Books.Count(ctx, nil)
		if err != nil {
			return 0, err
		}
		sessions, err := s.Sessions.Count(ctx, nil)
		if err != nil {
			return 0, err
		}
		return books + sessions, nil
	})
	defer q.Close()

	results := make(chan int, 16)
	unsub := q.Subscribe(func(total int) { results <- total })
	defer unsub()
	require.Equal(t, 0, waitForValue(t, results))

	// One transaction touching both collections produces one change-set,
	// so the query re-runs once, not once per collection.
	err := s.Update(ctx, func(tx *store.Tx) error {
		book := &domain.Book{ID: "book-1", Title: "Dune", Author: "Frank Herbert",
			Status: domain.StatusReading, DateAdded: time.Now()}
		if err := s.Books.PutTx(tx, book); err != nil {
			return err
		}
		return s.Sessions.PutTx(tx, &domain.ReadingSession{
			ID: "session-1", BookID: "book-1", StartTime: time.Now(),
		})
	})
	require.NoError(t, err)

	require.Equal(t, 2, waitForValue(t, results))
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(2), runs.Load())
}

func TestObserve_ErrorKeepsSubscriptionAlive(t *testing.T) {
	s, mgr, ctx := setupLive(t)

	var fail atomic.Bool
	fail.Store(true)

	q := live.Observe(ctx, mgr, func(ctx context.Context) (int, error) {
		count, err := s.Moods.Count(ctx, nil)
		if err != nil {
			return 0, err
		}
		if fail.Load() {
			return 0, apperrors.Internal("transient failure")
		}
		return count, nil
	})
	defer q.Close()

	_, ok := q.Get()
	require.False(t, ok)
	require.Error(t, q.Err())

	fail.Store(false)
	require.NoError(t, s.Moods.Create(ctx, &domain.MoodEntry{
		ID: "mood-1", MoodLevel: 3, Timestamp: time.Now(),
	}))

	require.Eventually(t, func() bool {
		count, ok := q.Get()
		return ok && count == 1
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, q.Err())
}

func TestObserve_Refresh(t *testing.T) {
	s, mgr, ctx := setupLive(t)

	var runs atomic.Int32
	q := live.Observe(ctx, mgr, func(ctx context.Context) (int, error) {
		runs.Add(1)
		return s.Moods.Count(ctx, nil)
	})
	defer q.Close()

	q.Refresh()

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestObserve_WriteDuringInitialRunIsNotLost(t *testing.T) {
	s, mgr, ctx := setupLive(t)

	firstRead := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	// Commit a mood while the initial run is paused between its read and
	// its return. The query must still converge on the committed state.
	go func() {
		<-firstRead
		_ = s.Moods.Create(ctx, &domain.MoodEntry{
			ID: "mood-1", MoodLevel: 4, Timestamp: time.Now(),
		})
		close(release)
	}()

	q := live.Observe(ctx, mgr, func(ctx context.Context) (int, error) {
		count, err := s.Moods.Count(ctx, nil)
		once.Do(func() {
			close(firstRead)
			<-release
		})
		return count, err
	})
	defer q.Close()

	require.Eventually(t, func() bool {
		count, ok := q.Get()
		return ok && count == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestObserve_CloseStopsRerunLoop(t *testing.T) {
	s, mgr, ctx := setupLive(t)

	var runs atomic.Int32
	q := live.Observe(ctx, mgr, func(ctx context.Context) (int, error) {
		runs.Add(1)
		return s.Moods.Count(ctx, nil)
	})

	q.Close()
	q.Close() // idempotent
	q.Refresh()

	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), runs.Load())
}

func TestObserve_CloseStopsNotifications(t *testing.T) {
	s, mgr, ctx := setupLive(t)

	var runs atomic.Int32
	q := live.Observe(ctx, mgr, func(ctx context.Context) (int, error) {
		runs.Add(1)
		return s.Moods.Count(ctx, nil)
	})

	require.Equal(t, 1, mgr.SubscriberCount())
	q.Close()
	require.Equal(t, 0, mgr.SubscriberCount())

	require.NoError(t, s.Moods.Create(ctx, &domain.MoodEntry{
		ID: "mood-1", MoodLevel: 3, Timestamp: time.Now(),
	}))

	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), runs.Load())
}
