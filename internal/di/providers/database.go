package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mindleafapp/mindleaf/internal/config"
	"github.com/mindleafapp/mindleaf/internal/live"
	"github.com/mindleafapp/mindleaf/internal/logger"
	"github.com/mindleafapp/mindleaf/internal/store"
)

// LiveManagerHandle wraps the live query manager with its context for
// lifecycle management.
type LiveManagerHandle struct {
	*live.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *LiveManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideLiveManager provides the reactive query manager.
func ProvideLiveManager(i do.Injector) (*LiveManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := live.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("live query manager started")

	return &LiveManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store, wired to the live manager for
// change notification, with the default tag catalog seeded.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	liveHandle := do.MustInvoke[*LiveManagerHandle](i)

	db, err := store.New(cfg.DatabasePath(), log.Logger, liveHandle.Manager)
	if err != nil {
		return nil, err
	}

	if err := db.SeedDefaultTags(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("database initialized", "path", cfg.DatabasePath())

	return &StoreHandle{Store: db}, nil
}
