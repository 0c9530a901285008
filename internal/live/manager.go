// Package live turns committed store transactions into reactive queries:
// callers observe a query function and get re-computed results whenever a
// collection the query actually read changes.
package live

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mindleafapp/mindleaf/internal/store"
)

// Manager fans committed change-sets out to reactive queries.
// It implements store.ChangeEmitter, so the store stays unaware of how
// changes are consumed.
type Manager struct {
	logger  *slog.Logger
	changes chan store.ChangeSet

	mu     sync.RWMutex
	subs   map[uint64]func(store.ChangeSet)
	nextID uint64

	wg sync.WaitGroup

	// Shutdown state - protected by shutdownMu
	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates a new live query manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:  logger,
		changes: make(chan store.ChangeSet, 1000), // Buffer 1000 change-sets
		subs:    make(map[uint64]func(store.ChangeSet)),
	}
}

// Start runs the dispatch loop until ctx is cancelled.
// This should be called once at startup in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.logger.Info("live query manager starting")

	for {
		select {
		case cs, ok := <-m.changes:
			if !ok {
				return
			}
			m.dispatch(m.coalesce(cs))

		case <-ctx.Done():
			m.logger.Info("live query manager stopping")
			return
		}
	}
}

// Shutdown stops accepting changes, drains what is queued, and waits for
// the dispatch loop to exit.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("live query manager shutdown initiated")

	// Mark as shutdown AND close channel atomically while holding lock.
	// This prevents race with Emit() which holds read lock during send.
	m.shutdownMu.Lock()
	m.shutdown = true
	close(m.changes)
	m.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		for cs := range m.changes {
			m.dispatch(cs)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("live query drain timeout, some notifications may be lost")
	}

	m.wg.Wait()

	m.logger.Info("live query manager shutdown complete")
	return nil
}

// Emit queues a committed change-set for dispatch.
// This implements the store.ChangeEmitter interface.
func (m *Manager) Emit(cs store.ChangeSet) {
	// Hold read lock through the entire send operation.
	// This prevents race with Shutdown() which holds write lock when closing channel.
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()

	if m.shutdown {
		// Silently drop changes after shutdown - this is expected during shutdown
		return
	}

	select {
	case m.changes <- cs:
		// Queued for dispatch.
	default:
		// Channel full. The change is not lost silently: every subscriber
		// is told to re-run regardless of what it reads.
		m.logger.Error("live query channel full, broadening notification")
		m.dispatch(store.ChangeSet{Collections: store.AllCollections})
	}
}

// coalesce merges whatever change-sets are already queued behind cs into
// one, so a burst of commits costs subscribers a single notification round.
func (m *Manager) coalesce(cs store.ChangeSet) store.ChangeSet {
	merged := map[store.Collection]struct{}{}
	for _, c := range cs.Collections {
		merged[c] = struct{}{}
	}
	for {
		select {
		case more, ok := <-m.changes:
			if !ok {
				return setToChangeSet(merged)
			}
			for _, c := range more.Collections {
				merged[c] = struct{}{}
			}
		default:
			return setToChangeSet(merged)
		}
	}
}

func setToChangeSet(set map[store.Collection]struct{}) store.ChangeSet {
	cols := make([]store.Collection, 0, len(set))
	for _, c := range store.AllCollections {
		if _, ok := set[c]; ok {
			cols = append(cols, c)
		}
	}
	return store.ChangeSet{Collections: cols}
}

// dispatch notifies every subscriber of one change-set.
func (m *Manager) dispatch(cs store.ChangeSet) {
	if len(cs.Collections) == 0 {
		return
	}

	m.mu.RLock()
	subs := make([]func(store.ChangeSet), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.RUnlock()

	for _, fn := range subs {
		fn(cs)
	}

	m.logger.Debug("change-set dispatched",
		slog.Int("collections", len(cs.Collections)),
		slog.Int("subscribers", len(subs)))
}

// subscribe registers fn for every dispatched change-set and returns an
// unsubscribe function. fn must not block: it runs on the dispatch loop.
func (m *Manager) subscribe(fn func(store.ChangeSet)) func() {
	m.mu.Lock()
	m.nextID++
	sid := m.nextID
	m.subs[sid] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, sid)
		m.mu.Unlock()
	}
}

// SubscriberCount returns the number of registered subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}
