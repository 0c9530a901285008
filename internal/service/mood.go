package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
	"github.com/mindleafapp/mindleaf/internal/id"
	"github.com/mindleafapp/mindleaf/internal/store"
	"github.com/mindleafapp/mindleaf/internal/util"
)

// MoodService manages mood entries and the rolling aggregates computed from
// them. Aggregates are never persisted; they are recomputed from raw
// entries on every call.
type MoodService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewMoodService creates a new mood service.
func NewMoodService(s *store.Store, logger *slog.Logger) *MoodService {
	return &MoodService{
		store:  s,
		logger: logger,
	}
}

// CreateMoodInput is the input for logging a mood.
type CreateMoodInput struct {
	MoodLevel        int       `json:"mood_level"`
	Timestamp        time.Time `json:"timestamp"`
	SpecificEmotions []string  `json:"specific_emotions"`
	ActivityTags     []string  `json:"activity_tags"`
	Note             string    `json:"note,omitempty"`
}

// Create validates and logs a mood entry.
func (s *MoodService) Create(ctx context.Context, input CreateMoodInput) (*domain.MoodEntry, error) {
	if !domain.ValidMoodLevel(input.MoodLevel) {
		return nil, apperrors.Validationf("mood level must be between %d and %d", domain.MoodMin, domain.MoodMax)
	}

	entryID, err := id.Generate("mood")
	if err != nil {
		return nil, err
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	entry := &domain.MoodEntry{
		ID:               entryID,
		Timestamp:        ts,
		MoodLevel:        input.MoodLevel,
		SpecificEmotions: input.SpecificEmotions,
		ActivityTags:     input.ActivityTags,
		Note:             input.Note,
	}
	if entry.SpecificEmotions == nil {
		entry.SpecificEmotions = []string{}
	}
	if entry.ActivityTags == nil {
		entry.ActivityTags = []string{}
	}

	if err := s.store.Moods.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("mood logged", "entry_id", entry.ID, "level", entry.MoodLevel)
	return entry, nil
}

// Update replaces the mutable fields of an existing entry.
func (s *MoodService) Update(ctx context.Context, entryID string, input CreateMoodInput) error {
	if !domain.ValidMoodLevel(input.MoodLevel) {
		return apperrors.Validationf("mood level must be between %d and %d", domain.MoodMin, domain.MoodMax)
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		entry, err := s.store.Moods.GetTx(tx, entryID)
		if err != nil {
			return err
		}
		entry.MoodLevel = input.MoodLevel
		if !input.Timestamp.IsZero() {
			entry.Timestamp = input.Timestamp
		}
		if input.SpecificEmotions != nil {
			entry.SpecificEmotions = input.SpecificEmotions
		}
		if input.ActivityTags != nil {
			entry.ActivityTags = input.ActivityTags
		}
		entry.Note = input.Note
		return s.store.Moods.PutTx(tx, entry)
	})
}

// Delete removes one entry.
func (s *MoodService) Delete(ctx context.Context, entryID string) error {
	return s.store.Moods.Delete(ctx, entryID)
}

// GetByID returns one entry.
func (s *MoodService) GetByID(ctx context.Context, entryID string) (*domain.MoodEntry, error) {
	return s.store.Moods.Get(ctx, entryID)
}

// GetByDateRange returns entries with start <= Timestamp < end, ascending.
func (s *MoodService) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.MoodEntry, error) {
	return s.store.Moods.ByIndexRange(ctx, "timestamp", store.TimeKey(start), store.TimeKey(end))
}

// GetRecent returns the most recent entries, newest first.
func (s *MoodService) GetRecent(ctx context.Context, limit int) ([]*domain.MoodEntry, error) {
	entries, err := s.store.Moods.All(ctx)
	if err != nil {
		return nil, err
	}
	sortByTimeDesc(entries, func(m *domain.MoodEntry) time.Time { return m.Timestamp })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// lookbackEntries returns entries from the window of `days` calendar days
// ending today: today-(days-1) .. today inclusive.
func (s *MoodService) lookbackEntries(ctx context.Context, days int) ([]*domain.MoodEntry, error) {
	now := time.Now()
	start := util.StartOfDay(util.DaysAgo(now, days-1))
	return s.GetByDateRange(ctx, start, util.EndOfDay(now).Add(time.Nanosecond))
}

// DailyAverages buckets the last `days` calendar days (today inclusive) by
// local day, averaging mood per day. Days without entries appear with
// Count 0 so charts can show gaps.
func (s *MoodService) DailyAverages(ctx context.Context, days int) ([]domain.DailyMood, error) {
	if days <= 0 {
		return nil, apperrors.Validation("days must be positive")
	}

	entries, err := s.lookbackEntries(ctx, days)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sum   int
		count int
	}
	buckets := map[string]*bucket{}
	for _, e := range entries {
		key := util.DayKey(e.Timestamp)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += e.MoodLevel
		b.count++
	}

	now := time.Now()
	out := make([]domain.DailyMood, 0, days)
	for _, day := range util.EachDay(util.DaysAgo(now, days-1), now) {
		key := util.DayKey(day)
		dm := domain.DailyMood{Date: key}
		if b := buckets[key]; b != nil {
			dm.Average = float64(b.sum) / float64(b.count)
			dm.Count = b.count
		}
		out = append(out, dm)
	}
	return out, nil
}

// AverageForPeriod returns the mean mood for [start, end), or nil when the
// period has no entries. Never fabricates a zero.
func (s *MoodService) AverageForPeriod(ctx context.Context, start, end time.Time) (*float64, error) {
	entries, err := s.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	sum := 0
	for _, e := range entries {
		sum += e.MoodLevel
	}
	avg := float64(sum) / float64(len(entries))
	return &avg, nil
}

// EmotionFrequency counts occurrences of each specific emotion over the
// last `days` calendar days.
func (s *MoodService) EmotionFrequency(ctx context.Context, days int) (map[string]int, error) {
	entries, err := s.lookbackEntries(ctx, days)
	if err != nil {
		return nil, err
	}

	freq := map[string]int{}
	for _, e := range entries {
		for _, emotion := range e.SpecificEmotions {
			freq[emotion]++
		}
	}
	return freq, nil
}

// ActivityCorrelations returns, per activity tag, the mean mood across all
// entries carrying that tag in the last `days` calendar days, with the
// sample count.
func (s *MoodService) ActivityCorrelations(ctx context.Context, days int) (map[string]domain.ActivityCorrelation, error) {
	entries, err := s.lookbackEntries(ctx, days)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum   int
		count int
	}
	byActivity := map[string]*acc{}
	for _, e := range entries {
		for _, activity := range e.ActivityTags {
			a := byActivity[activity]
			if a == nil {
				a = &acc{}
				byActivity[activity] = a
			}
			a.sum += e.MoodLevel
			a.count++
		}
	}

	out := make(map[string]domain.ActivityCorrelation, len(byActivity))
	for activity, a := range byActivity {
		out[activity] = domain.ActivityCorrelation{
			Count:   a.count,
			AvgMood: float64(a.sum) / float64(a.count),
		}
	}
	return out, nil
}

// LoggingDays counts distinct local calendar days with at least one mood
// entry in the lookback window ending today.
func (s *MoodService) LoggingDays(ctx context.Context, lookbackDays int) (int, error) {
	now := time.Now()
	start := util.StartOfDay(util.DaysAgo(now, lookbackDays))

	entries, err := s.GetByDateRange(ctx, start, util.EndOfDay(now).Add(time.Nanosecond))
	if err != nil {
		return 0, err
	}

	days := map[string]struct{}{}
	for _, e := range entries {
		days[util.DayKey(e.Timestamp)] = struct{}{}
	}
	return len(days), nil
}
