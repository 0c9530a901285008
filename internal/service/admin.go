package service

import (
	"context"
	"log/slog"

	"github.com/mindleafapp/mindleaf/internal/store"
)

// AdminService holds the settings/danger-zone operations.
type AdminService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(s *store.Store, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:  s,
		logger: logger,
	}
}

// ClearAllData empties every collection in one transaction and re-seeds
// the built-in tag catalog.
func (s *AdminService) ClearAllData(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	s.logger.Warn("all user data cleared")
	return nil
}

// SeedTags seeds the built-in tag catalog if the tag collection is empty.
func (s *AdminService) SeedTags(ctx context.Context) error {
	return s.store.SeedDefaultTags(ctx)
}
