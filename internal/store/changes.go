package store

import (
	"slices"
)

// Collection names the seven record collections.
type Collection string

// Collections.
const (
	CollectionBooks        Collection = "books"
	CollectionSessions     Collection = "reading_sessions"
	CollectionJournal      Collection = "journal_entries"
	CollectionMoods        Collection = "mood_entries"
	CollectionGoals        Collection = "goals"
	CollectionAchievements Collection = "achievements"
	CollectionTags         Collection = "tags"
)

// AllCollections lists every collection in a stable order.
var AllCollections = []Collection{
	CollectionBooks,
	CollectionSessions,
	CollectionJournal,
	CollectionMoods,
	CollectionGoals,
	CollectionAchievements,
	CollectionTags,
}

// ChangeSet describes one committed write transaction: the set of
// collections it touched. A transaction touching N collections produces
// exactly one ChangeSet, so subscribers see a single notification round.
type ChangeSet struct {
	Collections []Collection
}

// Touches reports whether the change-set includes col.
func (c ChangeSet) Touches(col Collection) bool {
	return slices.Contains(c.Collections, col)
}
