package service

import (
	"context"
	"log/slog"

	"github.com/mindleafapp/mindleaf/internal/domain"
	"github.com/mindleafapp/mindleaf/internal/store"
)

// ExportService exposes consistent full-dataset snapshots for external
// serialization (JSON, CSV) and restores them. File formats are the
// caller's concern; this service only guarantees a complete,
// same-transaction read.
type ExportService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewExportService creates a new export service.
func NewExportService(s *store.Store, logger *slog.Logger) *ExportService {
	return &ExportService{
		store:  s,
		logger: logger,
	}
}

// Snapshot reads all seven collections in one transaction.
func (s *ExportService) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("snapshot exported",
		"books", len(snap.Books),
		"sessions", len(snap.ReadingSessions),
		"journal_entries", len(snap.JournalEntries),
		"mood_entries", len(snap.MoodEntries))
	return snap, nil
}

// Import replaces the database contents with a previously exported
// snapshot, atomically.
func (s *ExportService) Import(ctx context.Context, snap *domain.Snapshot) error {
	return s.store.Import(ctx, snap)
}
