package domain

// InsightType identifies which rule produced an insight.
type InsightType string

// Insight types.
const (
	InsightMoodTrend           InsightType = "mood-trend"
	InsightActivityCorrelation InsightType = "activity-correlation"
	InsightReadingMood         InsightType = "reading-mood"
	InsightConsistency         InsightType = "consistency"
	InsightEmotionPattern      InsightType = "emotion-pattern"
)

// Sentiment is the tone of an insight. Never blaming.
type Sentiment string

// Sentiments.
const (
	SentimentPositive    Sentiment = "positive"
	SentimentNeutral     Sentiment = "neutral"
	SentimentEncouraging Sentiment = "encouraging"
)

// Insight is a short, rule-derived qualitative statement about
// mood/reading patterns.
type Insight struct {
	ID          string      `json:"id"`
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Sentiment   Sentiment   `json:"sentiment"`
}

// DailyMood is one calendar-day bucket of mood data. Days with no entries
// are still present with Count 0 so charts can show gaps.
type DailyMood struct {
	Date    string  `json:"date"` // local calendar day, YYYY-MM-DD
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ActivityCorrelation is the mean mood across all entries tagged with an activity.
type ActivityCorrelation struct {
	Count   int     `json:"count"`
	AvgMood float64 `json:"avg_mood"`
}
