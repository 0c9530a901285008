package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mindleafapp/mindleaf/internal/domain"
	"github.com/mindleafapp/mindleaf/internal/id"
	"github.com/mindleafapp/mindleaf/internal/store"
)

// AchievementService evaluates badge rules and grants one-time
// achievements. Grants are idempotent: the insert is an atomic
// insert-if-absent on the type's unique index, so a second evaluation of
// the same rule is a no-op rather than an error or a duplicate.
type AchievementService struct {
	store    *store.Store
	sessions *SessionService
	journal  *JournalService
	moods    *MoodService
	logger   *slog.Logger
}

// NewAchievementService creates a new achievement service.
func NewAchievementService(s *store.Store, sessions *SessionService, journal *JournalService, moods *MoodService, logger *slog.Logger) *AchievementService {
	return &AchievementService{
		store:    s,
		sessions: sessions,
		journal:  journal,
		moods:    moods,
		logger:   logger,
	}
}

// GetAll returns every earned achievement.
func (s *AchievementService) GetAll(ctx context.Context) ([]*domain.Achievement, error) {
	return s.store.Achievements.All(ctx)
}

// CheckAll evaluates every badge rule and grants whatever is newly earned.
// Returns the achievements granted by this run.
func (s *AchievementService) CheckAll(ctx context.Context) ([]*domain.Achievement, error) {
	var granted []*domain.Achievement

	for _, achType := range []domain.AchievementType{
		domain.AchFirstSession,
		domain.AchFirstEntry,
		domain.AchFirstBook,
		domain.AchWeekMood,
		domain.AchWordsmith,
		domain.AchBookworm,
		domain.AchConsistentReader,
		domain.AchReflective,
		domain.AchQuoteCollector,
	} {
		earned, err := s.evaluate(ctx, achType)
		if err != nil {
			return granted, err
		}
		if !earned {
			continue
		}

		ach, created, err := s.Grant(ctx, achType)
		if err != nil {
			return granted, err
		}
		if created {
			granted = append(granted, ach)
		}
	}

	return granted, nil
}

// Grant awards one achievement. Granting an already-earned type succeeds
// without creating a duplicate; created reports whether this call awarded it.
func (s *AchievementService) Grant(ctx context.Context, achType domain.AchievementType) (*domain.Achievement, bool, error) {
	def, ok := domain.AchievementDefinitions[achType]
	if !ok {
		return nil, false, nil
	}

	achID, err := id.Generate("achievement")
	if err != nil {
		return nil, false, err
	}

	ach := &domain.Achievement{
		ID:          achID,
		Type:        achType,
		Name:        def.Name,
		Description: def.Description,
		EarnedAt:    time.Now(),
		Icon:        def.Icon,
	}

	created, err := s.store.Achievements.CreateIfAbsent(ctx, ach)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info("achievement earned", "type", achType, "name", def.Name)
		return ach, true, nil
	}

	// Already earned: hand back the stored record, not the unsaved one.
	existing, err := s.store.Achievements.ByIndex(ctx, "type", string(achType))
	if err != nil {
		return nil, false, err
	}
	if len(existing) == 0 {
		return nil, false, nil
	}
	return existing[0], false, nil
}

// evaluate reports whether the rule for one achievement type currently holds.
func (s *AchievementService) evaluate(ctx context.Context, achType domain.AchievementType) (bool, error) {
	switch achType {
	case domain.AchFirstSession:
		count, err := s.store.Sessions.Count(ctx, nil)
		return count >= 1, err

	case domain.AchFirstEntry:
		count, err := s.publishedEntryCount(ctx)
		return count >= 1, err

	case domain.AchWordsmith:
		count, err := s.publishedEntryCount(ctx)
		return count >= 5, err

	case domain.AchFirstBook:
		count, err := s.completedBookCount(ctx)
		return count >= 1, err

	case domain.AchBookworm:
		count, err := s.completedBookCount(ctx)
		return count >= 3, err

	case domain.AchWeekMood:
		days, err := s.moods.LoggingDays(ctx, 30)
		return days >= 7, err

	case domain.AchConsistentReader:
		days, err := s.sessions.ReadingDays(ctx, 30)
		return days >= 5, err

	case domain.AchReflective:
		days, err := s.journal.JournalingDays(ctx, 30)
		return days >= 7, err

	case domain.AchQuoteCollector:
		quotes, err := s.sessions.AllQuotes(ctx)
		return len(quotes) >= 10, err

	default:
		return false, nil
	}
}

func (s *AchievementService) publishedEntryCount(ctx context.Context) (int, error) {
	return s.store.Journal.Count(ctx, func(e *domain.JournalEntry) bool {
		return !e.IsDraft
	})
}

func (s *AchievementService) completedBookCount(ctx context.Context) (int, error) {
	return s.store.Books.Count(ctx, func(b *domain.Book) bool {
		return b.IsCompleted()
	})
}
