package providers

import (
	"github.com/samber/do/v2"

	"github.com/mindleafapp/mindleaf/internal/logger"
	"github.com/mindleafapp/mindleaf/internal/service"
)

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	idx := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(db.Store, idx.Index, log.Logger), nil
}

// ProvideSessionService provides the reading session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	books := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(db.Store, books, log.Logger), nil
}

// ProvideJournalService provides the journal service.
func ProvideJournalService(i do.Injector) (*service.JournalService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	idx := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewJournalService(db.Store, idx.Index, log.Logger), nil
}

// ProvideMoodService provides the mood tracking service.
func ProvideMoodService(i do.Injector) (*service.MoodService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMoodService(db.Store, log.Logger), nil
}

// ProvideGoalService provides the goal service.
func ProvideGoalService(i do.Injector) (*service.GoalService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGoalService(db.Store, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(db.Store, log.Logger), nil
}

// ProvideAchievementService provides the achievement service.
func ProvideAchievementService(i do.Injector) (*service.AchievementService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	sessions := do.MustInvoke[*service.SessionService](i)
	journal := do.MustInvoke[*service.JournalService](i)
	moods := do.MustInvoke[*service.MoodService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAchievementService(db.Store, sessions, journal, moods, log.Logger), nil
}

// ProvideInsightService provides the insight service.
func ProvideInsightService(i do.Injector) (*service.InsightService, error) {
	moods := do.MustInvoke[*service.MoodService](i)
	sessions := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInsightService(moods, sessions, log.Logger), nil
}

// ProvideStatsService provides the statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	sessions := do.MustInvoke[*service.SessionService](i)
	journal := do.MustInvoke[*service.JournalService](i)
	moods := do.MustInvoke[*service.MoodService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(db.Store, sessions, journal, moods, log.Logger), nil
}

// ProvideSearchService provides the federated search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	idx := do.MustInvoke[*SearchIndexHandle](i)
	db := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(idx.Index, db.Store, log.Logger), nil
}

// ProvideExportService provides the export/import service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(db.Store, log.Logger), nil
}

// ProvideAdminService provides the administrative service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	db := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(db.Store, log.Logger), nil
}
