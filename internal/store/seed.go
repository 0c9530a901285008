package store

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/mindleafapp/mindleaf/internal/domain"
)

// collectionPrefixes maps each collection to its key prefix, used by
// whole-collection operations (clear, import).
var collectionPrefixes = map[Collection]string{
	CollectionBooks:        "book:",
	CollectionSessions:     "session:",
	CollectionJournal:      "journal:",
	CollectionMoods:        "mood:",
	CollectionGoals:        "goal:",
	CollectionAchievements: "achievement:",
	CollectionTags:         "tag:",
}

// SeedDefaultTags inserts the built-in tag catalog when the tags collection
// is empty. Existing data, including custom tags, makes this a no-op so the
// catalog is never re-seeded on top of user edits.
func (s *Store) SeedDefaultTags(ctx context.Context) error {
	return s.Update(ctx, func(tx *Tx) error {
		count, err := s.Tags.CountTx(tx, nil)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for _, t := range domain.DefaultTags() {
			tag := t
			if err := s.Tags.PutTx(tx, &tag); err != nil {
				return err
			}
		}

		if s.logger != nil {
			s.logger.Info("seeded default tags", "count", len(domain.DefaultTags()))
		}
		return nil
	})
}

// ClearAll deletes every record in every collection and re-seeds the
// default tag catalog, all in a single transaction. Subscribers receive
// one change-set covering all collections.
func (s *Store) ClearAll(ctx context.Context) error {
	err := s.Update(ctx, func(tx *Tx) error {
		for col, prefix := range collectionPrefixes {
			if err := clearPrefix(tx, prefix); err != nil {
				return err
			}
			tx.mark(col)
		}

		for _, t := range domain.DefaultTags() {
			tag := t
			if err := s.Tags.PutTx(tx, &tag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("cleared all data and re-seeded default tags")
	}
	return nil
}

// clearPrefix deletes every key under prefix, records and index entries
// alike. Keys are collected before deleting so the iterator never walks
// its own writes.
func clearPrefix(tx *Tx, prefix string) error {
	var keys [][]byte

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false

	it := tx.txn.NewIterator(opts)
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range keys {
		if err := tx.txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
