package domain

import "time"

// MoodLevel bounds. Mood is always on a 1-5 scale.
const (
	MoodMin = 1
	MoodMax = 5
)

// MoodEntry is a single mood log.
type MoodEntry struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	MoodLevel        int       `json:"mood_level"` // 1-5
	SpecificEmotions []string  `json:"specific_emotions"`
	ActivityTags     []string  `json:"activity_tags"`
	Note             string    `json:"note,omitempty"`
}

// ValidMoodLevel reports whether level is in the closed set {1..5}.
func ValidMoodLevel(level int) bool {
	return level >= MoodMin && level <= MoodMax
}

// MoodLabels maps mood levels to their compassionate display labels.
var MoodLabels = map[int]string{
	1: "Struggling",
	2: "Low",
	3: "Okay",
	4: "Good",
	5: "Great",
}

// EmotionCategories groups the built-in specific emotions by family.
var EmotionCategories = map[string][]string{
	"happy":   {"joyful", "content", "grateful", "excited", "hopeful", "proud"},
	"calm":    {"peaceful", "relaxed", "focused", "balanced", "mindful", "serene"},
	"sad":     {"melancholic", "lonely", "disappointed", "grieving", "nostalgic", "empty"},
	"anxious": {"worried", "nervous", "overwhelmed", "restless", "uncertain", "tense"},
	"angry":   {"frustrated", "irritated", "resentful", "impatient", "annoyed", "bitter"},
}

// PositiveEmotions is the fixed allow-list used by the emotion-pattern insight
// to decide between a positive and an encouraging tone.
var PositiveEmotions = []string{
	"joyful", "content", "grateful", "excited", "hopeful", "proud",
	"peaceful", "relaxed", "focused",
}

// DefaultActivities are the built-in activity tags offered on first run.
var DefaultActivities = []string{
	"reading", "exercise", "meditation", "work", "socializing", "nature",
	"creative", "rest", "learning", "cooking", "music", "journaling",
}
