package domain

// TagCategory classifies a tag.
type TagCategory string

// Tag categories.
const (
	TagEmotion  TagCategory = "emotion"
	TagTopic    TagCategory = "topic"
	TagActivity TagCategory = "activity"
)

// Valid reports whether the category is known.
func (c TagCategory) Valid() bool {
	switch c {
	case TagEmotion, TagTopic, TagActivity:
		return true
	default:
		return false
	}
}

// Tag is a label usable on books, journal entries, and mood logs.
type Tag struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Category TagCategory `json:"category"`
	Color    string      `json:"color,omitempty"`
	IsCustom bool        `json:"is_custom"`
}

// emotionColors maps each emotion family to its tag color.
var emotionColors = map[string]string{
	"happy":   "#22c55e",
	"calm":    "#3b82f6",
	"sad":     "#6366f1",
	"anxious": "#f97316",
	"angry":   "#ef4444",
}

// activityColors maps each built-in activity to its tag color.
var activityColors = map[string]string{
	"reading":     "#3b82f6",
	"exercise":    "#22c55e",
	"meditation":  "#8b5cf6",
	"work":        "#6366f1",
	"socializing": "#ec4899",
	"nature":      "#10b981",
	"creative":    "#f59e0b",
	"rest":        "#06b6d4",
	"learning":    "#3b82f6",
	"cooking":     "#f97316",
	"music":       "#a855f7",
	"journaling":  "#14b8a6",
}

// emotionFamilyOrder keeps the seeded catalog in a stable order.
var emotionFamilyOrder = []string{"happy", "calm", "sad", "anxious", "angry"}

// DefaultTags returns the built-in tag catalog seeded on first run:
// 30 emotion tags and 12 activity tags. IDs are deterministic so seeding
// is reproducible across installs.
func DefaultTags() []Tag {
	tags := make([]Tag, 0, 42)
	for _, family := range emotionFamilyOrder {
		for _, name := range EmotionCategories[family] {
			tags = append(tags, Tag{
				ID:       "emotion-" + name,
				Name:     name,
				Category: TagEmotion,
				Color:    emotionColors[family],
				IsCustom: false,
			})
		}
	}
	for _, name := range DefaultActivities {
		tags = append(tags, Tag{
			ID:       "activity-" + name,
			Name:     name,
			Category: TagActivity,
			Color:    activityColors[name],
			IsCustom: false,
		})
	}
	return tags
}
