package store

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

// Tx is one store transaction. Writes go through entity *Tx methods which
// record the touched collections; the store emits a single change-set for
// all of them when the transaction commits.
type Tx struct {
	store    *Store
	txn      *badger.Txn
	ctx      context.Context
	touched  map[Collection]struct{}
	readOnly bool
}

// Context returns the context the transaction was started with.
func (t *Tx) Context() context.Context {
	return t.ctx
}

func (t *Tx) mark(col Collection) {
	if !t.readOnly {
		t.touched[col] = struct{}{}
	}
}

// collections returns the touched collections in stable order.
func (t *Tx) collections() []Collection {
	cols := make([]Collection, 0, len(t.touched))
	for c := range t.touched {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	return cols
}
