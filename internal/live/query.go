package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/mindleafapp/mindleaf/internal/store"
)

// rerunRate bounds how often a single query re-executes during write
// bursts. Re-runs are coalesced, so a burst costs one delayed run, never a
// backlog.
var rerunRate = rate.Limit(20)

const rerunBurst = 5

// QueryFn computes a query result. It must perform all reads through the
// store so dependency tracking sees them.
type QueryFn[T any] func(ctx context.Context) (T, error)

// Query is a live query: its result is re-computed whenever a collection
// it read changes. Dependencies are discovered by running the query under
// read tracking, never declared by the caller, so a query cannot miss an
// update for data it actually used.
type Query[T any] struct {
	mgr     *Manager
	logger  *slog.Logger
	fn      QueryFn[T]
	limiter *rate.Limiter

	// gen increments on every relevant change. A run that finished under
	// an older generation is stale and its result is discarded.
	gen atomic.Uint64

	mu        sync.Mutex
	deps      []store.Collection
	depsKnown bool
	value     T
	hasValue  bool
	lastErr   error
	watchers  map[uint64]func(T)
	nextID    uint64

	unsubscribe func()
	rerun       chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
}

// Observe starts a live query. The query function runs once immediately
// and again after every committed transaction that touched a collection it
// read. The query stops when ctx is cancelled or Close is called.
func Observe[T any](ctx context.Context, mgr *Manager, fn QueryFn[T]) *Query[T] {
	q := &Query[T]{
		mgr:      mgr,
		logger:   mgr.logger,
		fn:       fn,
		limiter:  rate.NewLimiter(rerunRate, rerunBurst),
		watchers: make(map[uint64]func(T)),
		rerun:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	// Subscribe before the first run so a transaction committed while that
	// run is in flight still triggers a re-run. Until the first run records
	// its dependencies, every change-set counts as relevant.
	q.unsubscribe = mgr.subscribe(func(cs store.ChangeSet) {
		q.mu.Lock()
		relevant := !q.depsKnown || intersects(cs, q.deps)
		q.mu.Unlock()
		if relevant {
			q.gen.Add(1)
			q.schedule()
		}
	})

	q.run(ctx)

	go q.loop(ctx)
	return q
}

// Get returns the current result. ok is false while the query has no
// value: before the first successful run, or after a failed one.
func (q *Query[T]) Get() (value T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.value, q.hasValue
}

// Err returns the error of the most recent run, if it failed.
func (q *Query[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

// Deps returns the collections the most recent run read.
func (q *Query[T]) Deps() []store.Collection {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]store.Collection(nil), q.deps...)
}

// Subscribe registers fn to receive every new result, starting with the
// current one when present. Returns an unsubscribe function.
func (q *Query[T]) Subscribe(fn func(T)) func() {
	q.mu.Lock()
	q.nextID++
	wid := q.nextID
	q.watchers[wid] = fn
	var current T
	deliver := q.hasValue
	if deliver {
		current = q.value
	}
	q.mu.Unlock()

	if deliver {
		fn(current)
	}

	return func() {
		q.mu.Lock()
		delete(q.watchers, wid)
		q.mu.Unlock()
	}
}

// Refresh forces a re-run regardless of tracked dependencies.
func (q *Query[T]) Refresh() {
	q.gen.Add(1)
	q.schedule()
}

// Close detaches the query from the manager and stops the re-run loop.
// Safe to call more than once.
func (q *Query[T]) Close() {
	q.closeOnce.Do(func() {
		q.unsubscribe()
		close(q.done)
	})
}

func (q *Query[T]) schedule() {
	select {
	case q.rerun <- struct{}{}:
	default:
		// A re-run is already pending; it will observe the newer generation.
	}
}

func (q *Query[T]) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			q.Close()
			return
		case <-q.done:
			return
		case <-q.rerun:
			select {
			case <-q.done:
				return
			default:
			}
			if err := q.limiter.Wait(ctx); err != nil {
				q.Close()
				return
			}
			q.run(ctx)
		}
	}
}

// run executes the query under read tracking and publishes the result
// unless a relevant change arrived mid-run, in which case the pending
// re-run recomputes against the newer state.
func (q *Query[T]) run(ctx context.Context) {
	startGen := q.gen.Load()

	tracked, rs := store.WithReadTracking(ctx)
	value, err := q.fn(tracked)
	deps := rs.Collections()

	q.mu.Lock()
	q.deps = deps
	q.depsKnown = true

	if q.gen.Load() != startGen {
		// Stale: a relevant write landed while the query ran.
		q.mu.Unlock()
		q.schedule()
		return
	}

	if err != nil {
		// The subscription survives a failed run; the value is simply
		// unavailable until the next successful one.
		var zero T
		q.value = zero
		q.hasValue = false
		q.lastErr = err
		q.mu.Unlock()
		q.logger.Warn("live query failed", slog.Any("error", err))
		return
	}

	q.value = value
	q.hasValue = true
	q.lastErr = nil
	watchers := make([]func(T), 0, len(q.watchers))
	for _, fn := range q.watchers {
		watchers = append(watchers, fn)
	}
	q.mu.Unlock()

	for _, fn := range watchers {
		fn(value)
	}
}

func intersects(cs store.ChangeSet, deps []store.Collection) bool {
	for _, d := range deps {
		if cs.Touches(d) {
			return true
		}
	}
	return false
}
