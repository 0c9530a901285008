package store

import (
	"context"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
)

// ByIndex returns all records whose index holds exactly value, in index
// key order.
func (e *Entity[T]) ByIndex(ctx context.Context, index, value string) ([]*T, error) {
	var out []*T
	err := e.store.View(ctx, func(tx *Tx) error {
		var err error
		out, err = e.ByIndexTx(tx, index, value)
		return err
	})
	return out, err
}

// ByIndexTx is ByIndex inside an existing transaction.
func (e *Entity[T]) ByIndexTx(tx *Tx, index, value string) ([]*T, error) {
	trackRead(tx.ctx, e.collection)

	if e.isUnique(index) {
		item, err := tx.txn.Get(uniqueIndexKey(e.prefix, index, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return nil, err
		}
		v, found, err := e.getRaw(tx.txn, id)
		if err != nil || !found {
			return nil, err
		}
		return []*T{v}, nil
	}

	// The value terminator keeps "happy" from matching "happy hour".
	prefix := append(indexPrefix(e.prefix, index), []byte(value+indexSep)...)
	ids, err := e.scanIDs(tx, prefix, nil)
	if err != nil {
		return nil, err
	}
	return e.fetch(tx, ids)
}

// ByIndexRange returns records with low <= value < high, ascending.
func (e *Entity[T]) ByIndexRange(ctx context.Context, index, low, high string) ([]*T, error) {
	var out []*T
	err := e.store.View(ctx, func(tx *Tx) error {
		var err error
		out, err = e.ByIndexRangeTx(tx, index, low, high)
		return err
	})
	return out, err
}

// ByIndexRangeTx is ByIndexRange inside an existing transaction.
func (e *Entity[T]) ByIndexRangeTx(tx *Tx, index, low, high string) ([]*T, error) {
	trackRead(tx.ctx, e.collection)

	ids, err := e.scanRange(tx, index, low, func(value string) bool {
		return value < high
	})
	if err != nil {
		return nil, err
	}
	return e.fetch(tx, ids)
}

// ByIndexAbove returns records with value strictly greater than low,
// ascending.
func (e *Entity[T]) ByIndexAbove(ctx context.Context, index, low string) ([]*T, error) {
	var out []*T
	err := e.store.View(ctx, func(tx *Tx) error {
		var err error
		out, err = e.ByIndexAboveTx(tx, index, low)
		return err
	})
	return out, err
}

// ByIndexAboveTx is ByIndexAbove inside an existing transaction.
func (e *Entity[T]) ByIndexAboveTx(tx *Tx, index, low string) ([]*T, error) {
	trackRead(tx.ctx, e.collection)

	var ids []string
	// Seek past every key whose value equals low exactly.
	_, err := e.scanRangeInto(tx, index, low, func(value string) bool { return true },
		func(value, id string) {
			if value > low {
				ids = append(ids, id)
			}
		})
	if err != nil {
		return nil, err
	}
	return e.fetch(tx, ids)
}

// ByIndexBelow returns records with value strictly less than high,
// ascending.
func (e *Entity[T]) ByIndexBelow(ctx context.Context, index, high string) ([]*T, error) {
	var out []*T
	err := e.store.View(ctx, func(tx *Tx) error {
		var err error
		out, err = e.ByIndexBelowTx(tx, index, high)
		return err
	})
	return out, err
}

// ByIndexBelowTx is ByIndexBelow inside an existing transaction.
func (e *Entity[T]) ByIndexBelowTx(tx *Tx, index, high string) ([]*T, error) {
	trackRead(tx.ctx, e.collection)

	ids, err := e.scanRange(tx, index, "", func(value string) bool {
		return value < high
	})
	if err != nil {
		return nil, err
	}
	return e.fetch(tx, ids)
}

func (e *Entity[T]) isUnique(index string) bool {
	for _, idx := range e.indexes {
		if idx.name == index {
			return idx.unique
		}
	}
	return false
}

// scanRange iterates the index starting at low, collecting record IDs while
// keep returns true for the entry's value. Index keys sort by value, so the
// scan stops at the first rejected value.
func (e *Entity[T]) scanRange(tx *Tx, index, low string, keep func(value string) bool) ([]string, error) {
	var ids []string
	_, err := e.scanRangeInto(tx, index, low, keep, func(_, id string) {
		ids = append(ids, id)
	})
	return ids, err
}

func (e *Entity[T]) scanRangeInto(tx *Tx, index, low string, keep func(value string) bool, visit func(value, id string)) (int, error) {
	idxPrefix := indexPrefix(e.prefix, index)
	seek := append(append([]byte{}, idxPrefix...), []byte(low)...)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = idxPrefix
	opts.PrefetchValues = false

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Seek(seek); it.ValidForPrefix(idxPrefix); it.Next() {
		if err := tx.ctx.Err(); err != nil {
			return 0, err
		}
		remainder := string(it.Item().Key()[len(idxPrefix):])
		value, id, found := strings.Cut(remainder, indexSep)
		if !found {
			// Unique index entry: the record ID lives in the value.
			var err error
			id, err = readString(it.Item())
			if err != nil {
				return 0, err
			}
		}
		if !keep(value) {
			break
		}
		visit(value, id)
		n++
	}
	return n, nil
}

// scanIDs collects record IDs of all index entries under prefix.
func (e *Entity[T]) scanIDs(tx *Tx, prefix []byte, keep func(id string) bool) ([]string, error) {
	var ids []string

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := tx.ctx.Err(); err != nil {
			return nil, err
		}
		key := string(it.Item().Key())
		id := key[strings.LastIndex(key, indexSep)+1:]
		if keep == nil || keep(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fetch loads the records for ids in order. Index entries are deleted in
// the same transaction as their record, so a missing record means a corrupt
// index rather than a benign race.
func (e *Entity[T]) fetch(tx *Tx, ids []string) ([]*T, error) {
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		v, found, err := e.getRaw(tx.txn, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, apperrors.Internal(
				"index entry for " + string(e.collection) + " points at missing record " + id)
		}
		out = append(out, v)
	}
	return out, nil
}

func readString(item *badger.Item) (string, error) {
	var s string
	err := item.Value(func(val []byte) error {
		s = string(val)
		return nil
	})
	return s, err
}
