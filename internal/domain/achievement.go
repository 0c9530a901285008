package domain

import "time"

// AchievementType identifies a one-time badge. At most one achievement
// per type is ever granted.
type AchievementType string

// Achievement types.
const (
	AchFirstSession     AchievementType = "first-session"
	AchFirstEntry       AchievementType = "first-entry"
	AchFirstBook        AchievementType = "first-book"
	AchWeekMood         AchievementType = "week-mood"
	AchWordsmith        AchievementType = "wordsmith"
	AchBookworm         AchievementType = "bookworm"
	AchConsistentReader AchievementType = "consistent-reader"
	AchReflective       AchievementType = "reflective"
	AchQuoteCollector   AchievementType = "quote-collector"
)

// Achievement is an earned badge.
type Achievement struct {
	ID          string          `json:"id"`
	Type        AchievementType `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	EarnedAt    time.Time       `json:"earned_at"`
	Icon        string          `json:"icon"`
}

// AchievementDefinition is the static catalog entry for an achievement type.
type AchievementDefinition struct {
	Name        string
	Description string
	Icon        string
}

// AchievementDefinitions is the full badge catalog.
var AchievementDefinitions = map[AchievementType]AchievementDefinition{
	AchFirstSession: {
		Name:        "First Chapter",
		Description: "Complete your first reading session",
		Icon:        "📖",
	},
	AchFirstEntry: {
		Name:        "Dear Diary",
		Description: "Write your first journal entry",
		Icon:        "✍️",
	},
	AchFirstBook: {
		Name:        "Bookworm",
		Description: "Finish your first book",
		Icon:        "📚",
	},
	AchWeekMood: {
		Name:        "Week of Wellness",
		Description: "Log your mood for 7 days",
		Icon:        "🌟",
	},
	AchWordsmith: {
		Name:        "Wordsmith",
		Description: "Write 5 journal entries",
		Icon:        "🖊️",
	},
	AchBookworm: {
		Name:        "Avid Reader",
		Description: "Complete 3 books",
		Icon:        "🏆",
	},
	AchConsistentReader: {
		Name:        "Consistent Reader",
		Description: "Read on 5 different days",
		Icon:        "📅",
	},
	AchReflective: {
		Name:        "Reflective Soul",
		Description: "Journal for 7 days",
		Icon:        "💭",
	},
	AchQuoteCollector: {
		Name:        "Quote Collector",
		Description: "Save 10 quotes",
		Icon:        "💬",
	},
}
