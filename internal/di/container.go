// Package di provides dependency injection configuration for the Mindleaf
// engine.
package di

import (
	"github.com/samber/do/v2"

	"github.com/mindleafapp/mindleaf/internal/config"
	"github.com/mindleafapp/mindleaf/internal/di/providers"
	"github.com/mindleafapp/mindleaf/internal/logger"
	"github.com/mindleafapp/mindleaf/internal/metadata"
	"github.com/mindleafapp/mindleaf/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideLiveManager)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Metadata layer
	do.Provide(injector, providers.ProvideMetadataClient)

	// Business services
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideJournalService)
	do.Provide(injector, providers.ProvideMoodService)
	do.Provide(injector, providers.ProvideGoalService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideAchievementService)
	do.Provide(injector, providers.ProvideInsightService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideExportService)
	do.Provide(injector, providers.ProvideAdminService)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization of
// all core services so startup failures surface immediately.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.LiveManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*metadata.Client](injector)

	// Business services
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.JournalService](injector)
	_ = do.MustInvoke[*service.MoodService](injector)
	_ = do.MustInvoke[*service.GoalService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.AchievementService](injector)
	_ = do.MustInvoke[*service.InsightService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.ExportService](injector)
	_ = do.MustInvoke[*service.AdminService](injector)

	return nil
}
