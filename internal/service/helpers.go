package service

import (
	"math"
	"sort"
	"time"
)

// sortByTimeDesc orders items newest first by the given timestamp accessor.
func sortByTimeDesc[T any](items []*T, at func(*T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return at(items[i]).After(at(items[j]))
	})
}

// roundPercent converts a current/target ratio to a whole percentage capped
// at 100. A non-positive target yields 0.
func roundPercent(current, target int) int {
	if target <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(current) / float64(target)))
	if pct > 100 {
		return 100
	}
	return pct
}

// round1 rounds to one decimal place, for mood averages in insight text.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
