package domain

import "time"

// GoalType identifies what a goal measures.
type GoalType string

// Goal types.
const (
	GoalReadingTime    GoalType = "reading-time"
	GoalReadingPages   GoalType = "reading-pages"
	GoalJournalEntries GoalType = "journal-entries"
	GoalMoodLogs       GoalType = "mood-logs"
)

// Valid reports whether the goal type is known.
func (t GoalType) Valid() bool {
	switch t {
	case GoalReadingTime, GoalReadingPages, GoalJournalEntries, GoalMoodLogs:
		return true
	default:
		return false
	}
}

// DefaultUnit returns the display unit for the goal type.
func (t GoalType) DefaultUnit() string {
	switch t {
	case GoalReadingTime:
		return "minutes"
	case GoalReadingPages:
		return "pages"
	case GoalJournalEntries:
		return "entries"
	case GoalMoodLogs:
		return "logs"
	default:
		return ""
	}
}

// GoalFrequency is the period a goal's target applies to.
type GoalFrequency string

// Goal frequencies.
const (
	FrequencyDaily   GoalFrequency = "daily"
	FrequencyWeekly  GoalFrequency = "weekly"
	FrequencyMonthly GoalFrequency = "monthly"
)

// Valid reports whether the frequency is known.
func (f GoalFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// Goal is a self-set target. Progress is always computed on demand, never stored.
type Goal struct {
	ID          string        `json:"id"`
	Type        GoalType      `json:"type"`
	Frequency   GoalFrequency `json:"frequency"`
	Target      int           `json:"target"`
	Unit        string        `json:"unit"`
	CreatedAt   time.Time     `json:"created_at"`
	PausedUntil *time.Time    `json:"paused_until,omitempty"`
	IsActive    bool          `json:"is_active"`
}

// Paused reports whether the goal is paused as of now.
func (g *Goal) Paused(now time.Time) bool {
	return g.PausedUntil != nil && g.PausedUntil.After(now)
}

// GoalProgress is the computed progress of a goal within its current period.
type GoalProgress struct {
	Current    int `json:"current"`
	Target     int `json:"target"`
	Percentage int `json:"percentage"` // min(100, round(100*current/target))
}

// GoalConsistency reports how many days in a lookback window met the goal's
// per-day threshold. Deliberately not a streak: gaps carry no penalty.
type GoalConsistency struct {
	CompletedDays int `json:"completed_days"`
	TotalDays     int `json:"total_days"`
	Percentage    int `json:"percentage"`
}
