package domain

import "time"

// SnapshotVersion is the export format version.
const SnapshotVersion = "1.0.0"

// Snapshot is a complete, same-transaction read of all seven collections,
// sufficient for serialization to JSON/CSV by an external collaborator.
type Snapshot struct {
	ExportedAt      time.Time        `json:"exported_at"`
	Version         string           `json:"version"`
	Books           []Book           `json:"books"`
	ReadingSessions []ReadingSession `json:"reading_sessions"`
	JournalEntries  []JournalEntry   `json:"journal_entries"`
	MoodEntries     []MoodEntry      `json:"mood_entries"`
	Goals           []Goal           `json:"goals"`
	Achievements    []Achievement    `json:"achievements"`
	Tags            []Tag            `json:"tags"`
}
