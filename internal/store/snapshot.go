package store

import (
	"context"
	"time"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
)

// Snapshot reads all seven collections inside one read transaction, so the
// export is internally consistent even while writes are happening.
func (s *Store) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		ExportedAt: time.Now(),
		Version:    domain.SnapshotVersion,
	}

	err := s.View(ctx, func(tx *Tx) error {
		books, err := s.Books.AllTx(tx)
		if err != nil {
			return err
		}
		sessions, err := s.Sessions.AllTx(tx)
		if err != nil {
			return err
		}
		journal, err := s.Journal.AllTx(tx)
		if err != nil {
			return err
		}
		moods, err := s.Moods.AllTx(tx)
		if err != nil {
			return err
		}
		goals, err := s.Goals.AllTx(tx)
		if err != nil {
			return err
		}
		achievements, err := s.Achievements.AllTx(tx)
		if err != nil {
			return err
		}
		tags, err := s.Tags.AllTx(tx)
		if err != nil {
			return err
		}

		snap.Books = deref(books)
		snap.ReadingSessions = deref(sessions)
		snap.JournalEntries = deref(journal)
		snap.MoodEntries = deref(moods)
		snap.Goals = deref(goals)
		snap.Achievements = deref(achievements)
		snap.Tags = deref(tags)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Import replaces the entire database contents with the snapshot in a
// single transaction: either the full snapshot lands or nothing changes.
func (s *Store) Import(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return apperrors.Validation("snapshot is required")
	}
	if snap.Version != domain.SnapshotVersion {
		return apperrors.Validationf("unsupported snapshot version %q, expected %q",
			snap.Version, domain.SnapshotVersion)
	}

	err := s.Update(ctx, func(tx *Tx) error {
		for col, prefix := range collectionPrefixes {
			if err := clearPrefix(tx, prefix); err != nil {
				return err
			}
			tx.mark(col)
		}

		for i := range snap.Books {
			if err := s.Books.PutTx(tx, &snap.Books[i]); err != nil {
				return err
			}
		}
		for i := range snap.ReadingSessions {
			if err := s.Sessions.PutTx(tx, &snap.ReadingSessions[i]); err != nil {
				return err
			}
		}
		for i := range snap.JournalEntries {
			if err := s.Journal.PutTx(tx, &snap.JournalEntries[i]); err != nil {
				return err
			}
		}
		for i := range snap.MoodEntries {
			if err := s.Moods.PutTx(tx, &snap.MoodEntries[i]); err != nil {
				return err
			}
		}
		for i := range snap.Goals {
			if err := s.Goals.PutTx(tx, &snap.Goals[i]); err != nil {
				return err
			}
		}
		for i := range snap.Achievements {
			if err := s.Achievements.PutTx(tx, &snap.Achievements[i]); err != nil {
				return err
			}
		}
		for i := range snap.Tags {
			if err := s.Tags.PutTx(tx, &snap.Tags[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("imported snapshot",
			"books", len(snap.Books),
			"sessions", len(snap.ReadingSessions),
			"journal_entries", len(snap.JournalEntries),
			"mood_entries", len(snap.MoodEntries),
			"goals", len(snap.Goals),
			"achievements", len(snap.Achievements),
			"tags", len(snap.Tags))
	}
	return nil
}

func deref[T any](in []*T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, *v)
	}
	return out
}
