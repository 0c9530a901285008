package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
)

// Entity provides typed CRUD and indexed queries for one collection.
type Entity[T any] struct {
	store      *Store
	collection Collection
	prefix     string
	id         func(*T) string
	indexes    []index[T]
}

// index defines a secondary index on an entity. Non-unique indexes embed
// the record ID in the key so many records can share one value; unique
// indexes reject a second record with the same value.
type index[T any] struct {
	name   string
	unique bool
	keyGen func(*T) []string
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, collection Collection, prefix string, id func(*T) string) *Entity[T] {
	return &Entity[T]{
		store:      s,
		collection: collection,
		prefix:     prefix,
		id:         id,
	}
}

// WithIndex adds a non-unique secondary index. keyGen may return multiple
// values (multi-valued indexes such as tags); empty values are not indexed.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keyGen: keyGen})
	return e
}

// WithUniqueIndex adds a unique secondary index: at most one record may
// hold any given value.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, unique: true, keyGen: keyGen})
	return e
}

// Collection returns the collection this entity persists to.
func (e *Entity[T]) Collection() Collection {
	return e.collection
}

// Get retrieves a record by ID. Returns ErrNotFound if absent.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	var out *T
	err := e.store.View(ctx, func(tx *Tx) error {
		v, err := e.GetTx(tx, id)
		out = v
		return err
	})
	return out, err
}

// GetTx is Get inside an existing transaction.
func (e *Entity[T]) GetTx(tx *Tx, id string) (*T, error) {
	trackRead(tx.ctx, e.collection)

	v, found, err := e.getRaw(tx.txn, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFoundf("%s %s not found", e.collection, id)
	}
	return v, nil
}

// Put inserts or replaces a record.
func (e *Entity[T]) Put(ctx context.Context, v *T) error {
	return e.store.Update(ctx, func(tx *Tx) error {
		return e.PutTx(tx, v)
	})
}

// PutTx is Put inside an existing transaction.
func (e *Entity[T]) PutTx(tx *Tx, v *T) error {
	id := e.id(v)
	if id == "" {
		return apperrors.Validation("record is missing an id")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", e.collection, err)
	}

	// Remove index keys of the previous version, if any.
	old, found, err := e.getRaw(tx.txn, id)
	if err != nil {
		return err
	}
	if found {
		if err := e.deleteIndexKeys(tx.txn, old, id); err != nil {
			return err
		}
	}

	// Reject unique index collisions held by other records.
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}
		for _, value := range idx.keyGen(v) {
			if value == "" {
				continue
			}
			item, err := tx.txn.Get(uniqueIndexKey(e.prefix, idx.name, value))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var ownerID string
			if err := item.Value(func(val []byte) error {
				ownerID = string(val)
				return nil
			}); err != nil {
				return err
			}
			if ownerID != id {
				return apperrors.AlreadyExists(
					fmt.Sprintf("%s with %s %q already exists", e.collection, idx.name, value))
			}
		}
	}

	if err := tx.txn.Set(recordKey(e.prefix, id), data); err != nil {
		return err
	}
	if err := e.writeIndexKeys(tx.txn, v, id); err != nil {
		return err
	}

	tx.mark(e.collection)
	return nil
}

// Create inserts a record, failing with ErrAlreadyExists if the ID or any
// unique index value is taken.
func (e *Entity[T]) Create(ctx context.Context, v *T) error {
	return e.store.Update(ctx, func(tx *Tx) error {
		return e.CreateTx(tx, v)
	})
}

// CreateTx is Create inside an existing transaction.
func (e *Entity[T]) CreateTx(tx *Tx, v *T) error {
	id := e.id(v)
	if id == "" {
		return apperrors.Validation("record is missing an id")
	}

	_, err := tx.txn.Get(recordKey(e.prefix, id))
	if err == nil {
		return apperrors.AlreadyExists(fmt.Sprintf("%s %s already exists", e.collection, id))
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	return e.PutTx(tx, v)
}

// CreateIfAbsent atomically inserts a record unless its ID or a unique
// index value already exists, in which case it is a no-op. Returns whether
// the record was inserted. This is the insert-if-absent primitive used by
// idempotent operations such as achievement grants.
func (e *Entity[T]) CreateIfAbsent(ctx context.Context, v *T) (bool, error) {
	created := false
	err := e.store.Update(ctx, func(tx *Tx) error {
		var err error
		created, err = e.CreateIfAbsentTx(tx, v)
		return err
	})
	return created, err
}

// CreateIfAbsentTx is CreateIfAbsent inside an existing transaction.
func (e *Entity[T]) CreateIfAbsentTx(tx *Tx, v *T) (bool, error) {
	id := e.id(v)
	if id == "" {
		return false, apperrors.Validation("record is missing an id")
	}

	_, err := tx.txn.Get(recordKey(e.prefix, id))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return false, err
	}

	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}
		for _, value := range idx.keyGen(v) {
			if value == "" {
				continue
			}
			_, err := tx.txn.Get(uniqueIndexKey(e.prefix, idx.name, value))
			if err == nil {
				return false, nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return false, err
			}
		}
	}

	return true, e.PutTx(tx, v)
}

// Delete removes a record by ID. Idempotent: deleting a missing record is
// not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	return e.store.Update(ctx, func(tx *Tx) error {
		return e.DeleteTx(tx, id)
	})
}

// DeleteTx is Delete inside an existing transaction.
func (e *Entity[T]) DeleteTx(tx *Tx, id string) error {
	old, found, err := e.getRaw(tx.txn, id)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if err := e.deleteIndexKeys(tx.txn, old, id); err != nil {
		return err
	}
	if err := tx.txn.Delete(recordKey(e.prefix, id)); err != nil {
		return err
	}

	tx.mark(e.collection)
	return nil
}

// All returns every record in the collection.
func (e *Entity[T]) All(ctx context.Context) ([]*T, error) {
	var out []*T
	err := e.store.View(ctx, func(tx *Tx) error {
		var err error
		out, err = e.AllTx(tx)
		return err
	})
	return out, err
}

// AllTx is All inside an existing transaction.
func (e *Entity[T]) AllTx(tx *Tx) ([]*T, error) {
	trackRead(tx.ctx, e.collection)

	var out []*T
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(e.prefix)

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
		if err := tx.ctx.Err(); err != nil {
			return nil, err
		}
		key := string(it.Item().Key())
		if strings.HasPrefix(key[len(e.prefix):], "idx:") {
			continue
		}

		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return nil, fmt.Errorf("unmarshal %s record: %w", e.collection, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// Count returns the number of records matching pred (all records when pred
// is nil).
func (e *Entity[T]) Count(ctx context.Context, pred func(*T) bool) (int, error) {
	count := 0
	err := e.store.View(ctx, func(tx *Tx) error {
		var err error
		count, err = e.CountTx(tx, pred)
		return err
	})
	return count, err
}

// CountTx is Count inside an existing transaction.
func (e *Entity[T]) CountTx(tx *Tx, pred func(*T) bool) (int, error) {
	trackRead(tx.ctx, e.collection)

	count := 0
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(e.prefix)
	opts.PrefetchValues = pred != nil

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
		if err := tx.ctx.Err(); err != nil {
			return 0, err
		}
		key := string(it.Item().Key())
		if strings.HasPrefix(key[len(e.prefix):], "idx:") {
			continue
		}
		if pred == nil {
			count++
			continue
		}

		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return 0, fmt.Errorf("unmarshal %s record: %w", e.collection, err)
		}
		if pred(&v) {
			count++
		}
	}
	return count, nil
}

// BulkInsert writes all records in one transaction with insert-or-replace
// semantics.
func (e *Entity[T]) BulkInsert(ctx context.Context, items []*T) error {
	return e.store.Update(ctx, func(tx *Tx) error {
		for _, v := range items {
			if err := e.PutTx(tx, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// getRaw reads a record without tracking or not-found errors.
func (e *Entity[T]) getRaw(txn *badger.Txn, id string) (*T, bool, error) {
	item, err := txn.Get(recordKey(e.prefix, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var v T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	})
	if err != nil {
		return nil, false, fmt.Errorf("unmarshal %s record: %w", e.collection, err)
	}
	return &v, true, nil
}

func (e *Entity[T]) writeIndexKeys(txn *badger.Txn, v *T, id string) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(v) {
			if value == "" {
				continue
			}
			var key []byte
			if idx.unique {
				key = uniqueIndexKey(e.prefix, idx.name, value)
			} else {
				key = indexKey(e.prefix, idx.name, value, id)
			}
			if err := txn.Set(key, []byte(id)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexKeys(txn *badger.Txn, v *T, id string) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(v) {
			if value == "" {
				continue
			}
			var key []byte
			if idx.unique {
				key = uniqueIndexKey(e.prefix, idx.name, value)
			} else {
				key = indexKey(e.prefix, idx.name, value, id)
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
	}
	return nil
}
