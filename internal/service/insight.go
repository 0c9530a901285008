package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/mindleafapp/mindleaf/internal/domain"
	"github.com/mindleafapp/mindleaf/internal/id"
	"github.com/mindleafapp/mindleaf/internal/util"
)

// maxInsights caps how many insights one generation run returns.
const maxInsights = 3

// insightWindowDays is the lookback for the reading, activity, and emotion
// rules. The trend and consistency rules use week-sized windows.
const insightWindowDays = 30

// InsightService synthesizes qualitative insights from mood and reading
// data using a fixed, ordered rule pipeline. Each rule yields at most one
// insight; the pipeline stops after three. Rules only ever produce
// positive, neutral, or encouraging tones.
type InsightService struct {
	moods    *MoodService
	sessions *SessionService
	logger   *slog.Logger
}

// NewInsightService creates a new insight service.
func NewInsightService(moods *MoodService, sessions *SessionService, logger *slog.Logger) *InsightService {
	return &InsightService{
		moods:    moods,
		sessions: sessions,
		logger:   logger,
	}
}

// Generate runs the rule pipeline in its fixed precedence order:
// reading-mood, activity correlation, week-over-week trend, emotion
// pattern, logging consistency. At most three insights are returned.
func (s *InsightService) Generate(ctx context.Context) ([]domain.Insight, error) {
	rules := []func(context.Context) (*domain.Insight, error){
		s.readingMoodInsight,
		s.activityInsight,
		s.trendInsight,
		s.emotionInsight,
		s.consistencyInsight,
	}

	var insights []domain.Insight
	for _, rule := range rules {
		if len(insights) >= maxInsights {
			break
		}
		insight, err := rule(ctx)
		if err != nil {
			return nil, err
		}
		if insight != nil {
			insights = append(insights, *insight)
		}
	}
	return insights, nil
}

// readingMoodInsight compares mood on days with reading sessions against
// days without. Emitted only when reading days are better, never when
// worse: the pipeline does not guilt-trip.
func (s *InsightService) readingMoodInsight(ctx context.Context) (*domain.Insight, error) {
	now := time.Now()
	start := util.StartOfDay(util.DaysAgo(now, insightWindowDays-1))
	end := util.EndOfDay(now).Add(time.Nanosecond)

	moods, err := s.moods.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(moods) < 7 {
		return nil, nil
	}

	sessions, err := s.sessions.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(sessions) < 3 {
		return nil, nil
	}

	readingDays := map[string]struct{}{}
	for _, sess := range sessions {
		readingDays[util.DayKey(sess.StartTime)] = struct{}{}
	}

	var readingSum, readingN, otherSum, otherN int
	for _, m := range moods {
		if _, ok := readingDays[util.DayKey(m.Timestamp)]; ok {
			readingSum += m.MoodLevel
			readingN++
		} else {
			otherSum += m.MoodLevel
			otherN++
		}
	}
	if readingN < 3 || otherN < 3 {
		return nil, nil
	}

	readingAvg := float64(readingSum) / float64(readingN)
	otherAvg := float64(otherSum) / float64(otherN)
	delta := readingAvg - otherAvg
	if delta < 0.3 {
		return nil, nil
	}

	return s.newInsight(domain.InsightReadingMood, "Reading lifts your mood",
		fmt.Sprintf("Your mood averages %d%% higher on days you read.", percentDelta(delta)),
		"📖", domain.SentimentPositive), nil
}

// activityInsight surfaces the activity with the best mood correlation.
// An activity needs at least 3 samples to be considered, and comparison
// only makes sense with at least 2 distinct activities tracked.
func (s *InsightService) activityInsight(ctx context.Context) (*domain.Insight, error) {
	correlations, err := s.moods.ActivityCorrelations(ctx, insightWindowDays)
	if err != nil {
		return nil, err
	}
	if len(correlations) < 2 {
		return nil, nil
	}

	best := ""
	var bestCorr domain.ActivityCorrelation
	for _, activity := range sortedKeys(correlations) {
		corr := correlations[activity]
		if corr.Count < 3 {
			continue
		}
		if best == "" || corr.AvgMood > bestCorr.AvgMood {
			best = activity
			bestCorr = corr
		}
	}
	if best == "" || bestCorr.AvgMood < 3.5 {
		return nil, nil
	}

	return s.newInsight(domain.InsightActivityCorrelation, "A pattern worth noticing",
		fmt.Sprintf("Your mood averages %.1f out of 5 when %s is part of your day.",
			round1(bestCorr.AvgMood), best),
		"✨", domain.SentimentPositive), nil
}

// trendInsight compares this week's mood average against last week's.
func (s *InsightService) trendInsight(ctx context.Context) (*domain.Insight, error) {
	now := time.Now()
	weekStart := util.StartOfDay(util.DaysAgo(now, 6))
	weekEnd := util.EndOfDay(now).Add(time.Nanosecond)
	priorStart := util.StartOfDay(util.DaysAgo(now, 13))

	current, err := s.moods.AverageForPeriod(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	priorEntries, err := s.moods.GetByDateRange(ctx, priorStart, weekStart)
	if err != nil {
		return nil, err
	}
	if len(priorEntries) < 3 {
		return nil, nil
	}
	priorSum := 0
	for _, e := range priorEntries {
		priorSum += e.MoodLevel
	}
	prior := float64(priorSum) / float64(len(priorEntries))

	change := *current - prior
	if math.Abs(change) < 0.3 {
		return nil, nil
	}

	if change > 0 {
		return s.newInsight(domain.InsightMoodTrend, "Your mood is trending up",
			fmt.Sprintf("This week's average is %d%% above last week's.", percentDelta(change)),
			"📈", domain.SentimentPositive), nil
	}
	return s.newInsight(domain.InsightMoodTrend, "A gentler week",
		"Your mood has dipped a little compared to last week. Be kind to yourself.",
		"💙", domain.SentimentEncouraging), nil
}

// emotionInsight surfaces the most frequent specific emotion. Ties break
// deterministically: highest count, then lexicographic.
func (s *InsightService) emotionInsight(ctx context.Context) (*domain.Insight, error) {
	freq, err := s.moods.EmotionFrequency(ctx, insightWindowDays)
	if err != nil {
		return nil, err
	}
	if len(freq) < 3 {
		return nil, nil
	}

	top := ""
	topCount := 0
	for _, emotion := range sortedKeys(freq) {
		if freq[emotion] > topCount {
			top = emotion
			topCount = freq[emotion]
		}
	}
	if topCount < 3 {
		return nil, nil
	}

	if slices.Contains(domain.PositiveEmotions, top) {
		return s.newInsight(domain.InsightEmotionPattern, "A recurring bright spot",
			fmt.Sprintf("You've felt %s %d times recently. Lovely to see.", top, topCount),
			"🌼", domain.SentimentPositive), nil
	}
	return s.newInsight(domain.InsightEmotionPattern, "Something keeps coming up",
		fmt.Sprintf("You've noted feeling %s %d times recently. Naming it is a good first step.", top, topCount),
		"🫂", domain.SentimentEncouraging), nil
}

// consistencyInsight reflects how many of the last 7 days had a mood log.
// Fewer than 3 days produces no insight at all rather than a nag.
func (s *InsightService) consistencyInsight(ctx context.Context) (*domain.Insight, error) {
	days, err := s.moods.LoggingDays(ctx, 6)
	if err != nil {
		return nil, err
	}

	switch {
	case days >= 5:
		return s.newInsight(domain.InsightConsistency, "Showing up for yourself",
			fmt.Sprintf("You've checked in %d of the last 7 days.", days),
			"🌱", domain.SentimentPositive), nil
	case days >= 3:
		return s.newInsight(domain.InsightConsistency, "Building a rhythm",
			fmt.Sprintf("You've checked in %d of the last 7 days. Every check-in counts.", days),
			"🌿", domain.SentimentEncouraging), nil
	default:
		return nil, nil
	}
}

func (s *InsightService) newInsight(t domain.InsightType, title, description, icon string, sentiment domain.Sentiment) *domain.Insight {
	return &domain.Insight{
		ID:          id.MustGenerate("insight"),
		Type:        t,
		Title:       title,
		Description: description,
		Icon:        icon,
		Sentiment:   sentiment,
	}
}

// percentDelta maps a 1-5 mood scale difference to a percentage: one scale
// unit is a 20% step, rounded to the nearest integer.
func percentDelta(delta float64) int {
	return int(math.Round(math.Abs(delta) * 20))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
