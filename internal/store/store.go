package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
)

// currentSchemaVersion is bumped whenever the key layout gains additions.
// Upgrades are additive only: opening an older database writes the new
// version, opening a newer one fails with a schema version conflict.
const currentSchemaVersion = 1

// schemaVersionKey holds the on-disk schema version.
const schemaVersionKey = "meta:schema_version"

// ChangeEmitter receives one coalesced change-set per committed write
// transaction. The reactive query layer plugs in here; the store never
// depends on how changes are consumed.
type ChangeEmitter interface {
	Emit(ChangeSet)
}

// NoopEmitter is a no-op implementation of ChangeEmitter for testing.
type NoopEmitter struct{}

// Emit implements ChangeEmitter.Emit as a no-op.
func (NoopEmitter) Emit(ChangeSet) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() ChangeEmitter {
	return NoopEmitter{}
}

// Store wraps a Badger database instance with one typed entity per collection.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	emitter ChangeEmitter

	Books        *Entity[domain.Book]
	Sessions     *Entity[domain.ReadingSession]
	Journal      *Entity[domain.JournalEntry]
	Moods        *Entity[domain.MoodEntry]
	Goals        *Entity[domain.Goal]
	Achievements *Entity[domain.Achievement]
	Tags         *Entity[domain.Tag]
}

// New opens (or creates) the database at path and initializes all entities.
// The emitter is required and receives a change-set per committed write.
func New(path string, logger *slog.Logger, emitter ChangeEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, classify(fmt.Errorf("open badger db: %w", err))
	}

	s := &Store{
		db:      db,
		logger:  logger,
		emitter: emitter,
	}

	if err := s.checkSchemaVersion(); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.initEntities()

	if logger != nil {
		logger.Info("database opened", "path", path, "schema_version", currentSchemaVersion)
	}

	return s, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database")
	}
	return s.db.Close()
}

// checkSchemaVersion verifies the on-disk schema version is compatible,
// stamping the current version on first use or after an additive upgrade.
func (s *Store) checkSchemaVersion() error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(schemaVersionKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return txn.Set([]byte(schemaVersionKey), []byte(strconv.Itoa(currentSchemaVersion)))
		}
		if err != nil {
			return classify(err)
		}

		var stored int
		err = item.Value(func(val []byte) error {
			stored, err = strconv.Atoi(string(val))
			return err
		})
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeSchemaVersion, "unreadable schema version")
		}

		if stored > currentSchemaVersion {
			return apperrors.SchemaVersion(
				fmt.Sprintf("database schema version %d is newer than supported version %d", stored, currentSchemaVersion))
		}
		if stored < currentSchemaVersion {
			// Additive upgrade: existing records stay untouched.
			return txn.Set([]byte(schemaVersionKey), []byte(strconv.Itoa(currentSchemaVersion)))
		}
		return nil
	})
}

// initEntities declares every collection and its secondary indexes.
func (s *Store) initEntities() {
	s.Books = NewEntity(s, CollectionBooks, "book:", func(b *domain.Book) string { return b.ID }).
		WithIndex("status", func(b *domain.Book) []string {
			return []string{string(b.Status)}
		}).
		WithIndex("date_added", func(b *domain.Book) []string {
			return []string{TimeKey(b.DateAdded)}
		}).
		WithIndex("tags", func(b *domain.Book) []string {
			return b.Tags
		})

	s.Sessions = NewEntity(s, CollectionSessions, "session:", func(r *domain.ReadingSession) string { return r.ID }).
		WithIndex("book", func(r *domain.ReadingSession) []string {
			return []string{r.BookID}
		}).
		WithIndex("start_time", func(r *domain.ReadingSession) []string {
			return []string{TimeKey(r.StartTime)}
		})

	s.Journal = NewEntity(s, CollectionJournal, "journal:", func(j *domain.JournalEntry) string { return j.ID }).
		WithIndex("date_created", func(j *domain.JournalEntry) []string {
			return []string{TimeKey(j.DateCreated)}
		}).
		WithIndex("is_draft", func(j *domain.JournalEntry) []string {
			return []string{BoolKey(j.IsDraft)}
		}).
		WithIndex("book", func(j *domain.JournalEntry) []string {
			return []string{j.BookID}
		}).
		WithIndex("tags", func(j *domain.JournalEntry) []string {
			return j.Tags
		})

	s.Moods = NewEntity(s, CollectionMoods, "mood:", func(m *domain.MoodEntry) string { return m.ID }).
		WithIndex("timestamp", func(m *domain.MoodEntry) []string {
			return []string{TimeKey(m.Timestamp)}
		}).
		WithIndex("emotions", func(m *domain.MoodEntry) []string {
			return m.SpecificEmotions
		}).
		WithIndex("activities", func(m *domain.MoodEntry) []string {
			return m.ActivityTags
		})

	s.Goals = NewEntity(s, CollectionGoals, "goal:", func(g *domain.Goal) string { return g.ID }).
		WithIndex("type", func(g *domain.Goal) []string {
			return []string{string(g.Type)}
		}).
		WithIndex("frequency", func(g *domain.Goal) []string {
			return []string{string(g.Frequency)}
		}).
		WithIndex("is_active", func(g *domain.Goal) []string {
			return []string{BoolKey(g.IsActive)}
		})

	s.Achievements = NewEntity(s, CollectionAchievements, "achievement:", func(a *domain.Achievement) string { return a.ID }).
		WithUniqueIndex("type", func(a *domain.Achievement) []string {
			return []string{string(a.Type)}
		}).
		WithIndex("earned_at", func(a *domain.Achievement) []string {
			return []string{TimeKey(a.EarnedAt)}
		})

	s.Tags = NewEntity(s, CollectionTags, "tag:", func(t *domain.Tag) string { return t.ID }).
		WithIndex("name", func(t *domain.Tag) []string {
			return []string{t.Name}
		}).
		WithIndex("category", func(t *domain.Tag) []string {
			return []string{string(t.Category)}
		}).
		WithIndex("is_custom", func(t *domain.Tag) []string {
			return []string{BoolKey(t.IsCustom)}
		})
}

// Update runs fn inside a single write transaction. All writes commit
// atomically or not at all; one coalesced change-set covering every touched
// collection is emitted after a successful commit, never mid-transaction.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &Tx{store: s, ctx: ctx, touched: make(map[Collection]struct{})}
	err := s.db.Update(func(txn *badger.Txn) error {
		tx.txn = txn
		return fn(tx)
	})
	if err != nil {
		return classify(err)
	}

	if cols := tx.collections(); len(cols) > 0 {
		s.emitter.Emit(ChangeSet{Collections: cols})
	}
	return nil
}

// View runs fn inside a read-only transaction, giving callers a consistent
// snapshot across collections.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &Tx{store: s, ctx: ctx, readOnly: true}
	err := s.db.View(func(txn *badger.Txn) error {
		tx.txn = txn
		return fn(tx)
	})
	return classify(err)
}

// classify maps storage-layer failures onto the domain error taxonomy.
// Domain errors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return apperrors.ErrNotFound.WithCause(err)
	case errors.Is(err, syscall.ENOSPC):
		return apperrors.ErrQuotaExceeded.WithCause(err)
	case errors.Is(err, badger.ErrConflict), errors.Is(err, badger.ErrTxnTooBig):
		return apperrors.ErrTransactionFailed.WithCause(err)
	default:
		return apperrors.Wrap(err, apperrors.CodeTransactionFailed, "storage error")
	}
}
