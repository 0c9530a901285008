package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
	"github.com/mindleafapp/mindleaf/internal/id"
	"github.com/mindleafapp/mindleaf/internal/store"
	"github.com/mindleafapp/mindleaf/internal/util"
)

// GoalService manages goals and computes their progress and consistency.
// Progress is never stored; it is derived from raw entries on demand.
// Consistency is deliberately not a streak: missed days carry no penalty
// and nothing ever resets to zero.
type GoalService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewGoalService creates a new goal service.
func NewGoalService(s *store.Store, logger *slog.Logger) *GoalService {
	return &GoalService{
		store:  s,
		logger: logger,
	}
}

// CreateGoalInput is the input for creating a goal.
type CreateGoalInput struct {
	Type      string `json:"type"`
	Frequency string `json:"frequency"`
	Target    int    `json:"target"`
	Unit      string `json:"unit,omitempty"`
}

// Create validates and inserts a new goal.
func (s *GoalService) Create(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	goalType := domain.GoalType(input.Type)
	if !goalType.Valid() {
		return nil, apperrors.Validationf("unknown goal type %q", input.Type)
	}
	frequency := domain.GoalFrequency(input.Frequency)
	if !frequency.Valid() {
		return nil, apperrors.Validationf("unknown goal frequency %q", input.Frequency)
	}
	if input.Target <= 0 {
		return nil, apperrors.Validation("target must be positive")
	}

	goalID, err := id.Generate("goal")
	if err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = goalType.DefaultUnit()
	}

	goal := &domain.Goal{
		ID:        goalID,
		Type:      goalType,
		Frequency: frequency,
		Target:    input.Target,
		Unit:      unit,
		CreatedAt: time.Now(),
		IsActive:  true,
	}

	if err := s.store.Goals.Create(ctx, goal); err != nil {
		return nil, err
	}

	s.logger.Info("goal created", "goal_id", goal.ID, "type", goal.Type, "frequency", goal.Frequency)
	return goal, nil
}

// GetByID returns one goal.
func (s *GoalService) GetByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	return s.store.Goals.Get(ctx, goalID)
}

// GetAll returns every goal.
func (s *GoalService) GetAll(ctx context.Context) ([]*domain.Goal, error) {
	return s.store.Goals.All(ctx)
}

// GetActive returns all active goals.
func (s *GoalService) GetActive(ctx context.Context) ([]*domain.Goal, error) {
	return s.store.Goals.ByIndex(ctx, "is_active", store.BoolKey(true))
}

// UpdateTarget changes a goal's target.
func (s *GoalService) UpdateTarget(ctx context.Context, goalID string, target int) error {
	if target <= 0 {
		return apperrors.Validation("target must be positive")
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		goal, err := s.store.Goals.GetTx(tx, goalID)
		if err != nil {
			return err
		}
		goal.Target = target
		return s.store.Goals.PutTx(tx, goal)
	})
}

// Pause suspends a goal until the given time. Paused goals still report
// progress; presentation decides what to show.
func (s *GoalService) Pause(ctx context.Context, goalID string, until time.Time) error {
	if !until.After(time.Now()) {
		return apperrors.Validation("pause end must be in the future")
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		goal, err := s.store.Goals.GetTx(tx, goalID)
		if err != nil {
			return err
		}
		goal.PausedUntil = &until
		return s.store.Goals.PutTx(tx, goal)
	})
}

// Unpause clears a goal's pause.
func (s *GoalService) Unpause(ctx context.Context, goalID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		goal, err := s.store.Goals.GetTx(tx, goalID)
		if err != nil {
			return err
		}
		goal.PausedUntil = nil
		return s.store.Goals.PutTx(tx, goal)
	})
}

// Deactivate retires a goal without deleting its history.
func (s *GoalService) Deactivate(ctx context.Context, goalID string) error {
	return s.setActive(ctx, goalID, false)
}

// Reactivate brings a retired goal back.
func (s *GoalService) Reactivate(ctx context.Context, goalID string) error {
	return s.setActive(ctx, goalID, true)
}

func (s *GoalService) setActive(ctx context.Context, goalID string, active bool) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		goal, err := s.store.Goals.GetTx(tx, goalID)
		if err != nil {
			return err
		}
		goal.IsActive = active
		return s.store.Goals.PutTx(tx, goal)
	})
}

// Delete removes one goal.
func (s *GoalService) Delete(ctx context.Context, goalID string) error {
	return s.store.Goals.Delete(ctx, goalID)
}

// Progress computes the goal's progress within its current period window
// (day, week, or month containing now).
func (s *GoalService) Progress(ctx context.Context, goal *domain.Goal) (domain.GoalProgress, error) {
	now := time.Now()
	start, end := periodWindow(goal.Frequency, now)

	current, err := s.measure(ctx, goal.Type, start, end)
	if err != nil {
		return domain.GoalProgress{}, err
	}

	return domain.GoalProgress{
		Current:    current,
		Target:     goal.Target,
		Percentage: roundPercent(current, goal.Target),
	}, nil
}

// Consistency reports how many of the lookback days met the goal's per-day
// threshold. For daily goals the full target is the threshold; for weekly
// and monthly goals any nonzero activity completes the day. Binary per day:
// a day with 1 entry and a day with 5 entries count the same.
func (s *GoalService) Consistency(ctx context.Context, goal *domain.Goal, lookbackDays int) (domain.GoalConsistency, error) {
	if lookbackDays <= 0 {
		return domain.GoalConsistency{}, apperrors.Validation("lookback days must be positive")
	}

	now := time.Now()
	days := util.EachDay(util.DaysAgo(now, lookbackDays), now)

	completed := 0
	for _, day := range days {
		amount, err := s.measure(ctx, goal.Type, util.StartOfDay(day), util.StartOfDay(day).AddDate(0, 0, 1))
		if err != nil {
			return domain.GoalConsistency{}, err
		}

		threshold := 1
		if goal.Frequency == domain.FrequencyDaily {
			threshold = goal.Target
		}
		if amount >= threshold {
			completed++
		}
	}

	total := len(days)
	return domain.GoalConsistency{
		CompletedDays: completed,
		TotalDays:     total,
		Percentage:    int(math.Round(100 * float64(completed) / float64(total))),
	}, nil
}

// EncouragementMessage maps progress to a compassionate message. Goals are
// never "failed"; the lowest tier is still an invitation.
func (s *GoalService) EncouragementMessage(progress domain.GoalProgress) string {
	switch {
	case progress.Percentage >= 100:
		return "Goal reached! Wonderful work."
	case progress.Percentage >= 75:
		return "Almost there, keep going at your own pace."
	case progress.Percentage >= 50:
		return "Halfway there. Every bit counts."
	case progress.Percentage > 0:
		return "A good start. Small steps add up."
	default:
		return "Whenever you're ready. No pressure."
	}
}

// measure aggregates the goal's metric within [start, end).
func (s *GoalService) measure(ctx context.Context, goalType domain.GoalType, start, end time.Time) (int, error) {
	switch goalType {
	case domain.GoalReadingTime:
		sessions, err := s.store.Sessions.ByIndexRange(ctx, "start_time",
			store.TimeKey(start), store.TimeKey(end))
		if err != nil {
			return 0, err
		}
		seconds := 0
		for _, sess := range sessions {
			seconds += sess.Duration
		}
		return int(math.Round(float64(seconds) / 60)), nil

	case domain.GoalReadingPages:
		sessions, err := s.store.Sessions.ByIndexRange(ctx, "start_time",
			store.TimeKey(start), store.TimeKey(end))
		if err != nil {
			return 0, err
		}
		pages := 0
		for _, sess := range sessions {
			pages += sess.PagesRead
		}
		return pages, nil

	case domain.GoalJournalEntries:
		entries, err := s.store.Journal.ByIndexRange(ctx, "date_created",
			store.TimeKey(start), store.TimeKey(end))
		if err != nil {
			return 0, err
		}
		count := 0
		for _, e := range entries {
			if !e.IsDraft {
				count++
			}
		}
		return count, nil

	case domain.GoalMoodLogs:
		entries, err := s.store.Moods.ByIndexRange(ctx, "timestamp",
			store.TimeKey(start), store.TimeKey(end))
		if err != nil {
			return 0, err
		}
		return len(entries), nil

	default:
		return 0, apperrors.Validationf("unknown goal type %q", goalType)
	}
}

// periodWindow returns the half-open [start, end) window of the period
// containing now. Weeks start Sunday.
func periodWindow(frequency domain.GoalFrequency, now time.Time) (time.Time, time.Time) {
	switch frequency {
	case domain.FrequencyWeekly:
		start := util.StartOfWeek(now)
		return start, start.AddDate(0, 0, 7)
	case domain.FrequencyMonthly:
		start := util.StartOfMonth(now)
		return start, start.AddDate(0, 1, 0)
	default:
		start := util.StartOfDay(now)
		return start, start.AddDate(0, 0, 1)
	}
}
