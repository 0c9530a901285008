package service

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mindleafapp/mindleaf/internal/search"
	"github.com/mindleafapp/mindleaf/internal/store"
)

// testEnv bundles the full service graph on a throwaway store.
type testEnv struct {
	store        *store.Store
	books        *BookService
	sessions     *SessionService
	journal      *JournalService
	moods        *MoodService
	goals        *GoalService
	tags         *TagService
	achievements *AchievementService
	insights     *InsightService
	stats        *StatsService
	export       *ExportService
	admin        *AdminService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.New(t.TempDir(), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.DiscardHandler)
	indexer := search.NewNoopIndexer()

	env := &testEnv{store: s}
	env.books = NewBookService(s, indexer, logger)
	env.sessions = NewSessionService(s, env.books, logger)
	env.journal = NewJournalService(s, indexer, logger)
	env.moods = NewMoodService(s, logger)
	env.goals = NewGoalService(s, logger)
	env.tags = NewTagService(s, logger)
	env.achievements = NewAchievementService(s, env.sessions, env.journal, env.moods, logger)
	env.insights = NewInsightService(env.moods, env.sessions, logger)
	env.stats = NewStatsService(s, env.sessions, env.journal, env.moods, logger)
	env.export = NewExportService(s, logger)
	env.admin = NewAdminService(s, logger)
	return env
}
