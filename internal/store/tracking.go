package store

import (
	"context"
	"sync"
)

// ReadSet records which collections a query touched while it ran.
// The reactive query layer executes query functions under a tracking
// context and uses the resulting set for precise invalidation, so callers
// never declare their dependencies explicitly and missed updates (false
// negatives) cannot happen as long as all reads go through the store.
type ReadSet struct {
	mu   sync.Mutex
	cols map[Collection]struct{}
}

// Collections returns the recorded collections.
func (r *ReadSet) Collections() []Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Collection, 0, len(r.cols))
	for c := range r.cols {
		out = append(out, c)
	}
	return out
}

// Contains reports whether col was read.
func (r *ReadSet) Contains(col Collection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cols[col]
	return ok
}

// ContainsAny reports whether any of cols was read.
func (r *ReadSet) ContainsAny(cols []Collection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cols {
		if _, ok := r.cols[c]; ok {
			return true
		}
	}
	return false
}

func (r *ReadSet) add(col Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cols[col] = struct{}{}
}

type readTrackerKey struct{}

// WithReadTracking returns a context under which every store read records
// its collection into the returned ReadSet.
func WithReadTracking(ctx context.Context) (context.Context, *ReadSet) {
	rs := &ReadSet{cols: make(map[Collection]struct{})}
	return context.WithValue(ctx, readTrackerKey{}, rs), rs
}

// trackRead records a collection read if the context carries a tracker.
func trackRead(ctx context.Context, col Collection) {
	if rs, ok := ctx.Value(readTrackerKey{}).(*ReadSet); ok {
		rs.add(col)
	}
}
