package fastlap

import (
	"sort"
	"time"
)

// LapEntry is one timed attempt by one driver. TimeMS is the canonical sort
// key and is always derived from the submitted time string by ParseLapTime;
// DisplayTime is re-rendered from TimeMS so the two cannot diverge.
type LapEntry struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id,omitempty"`
	DriverName  string    `json:"driver_name"`
	Team        string    `json:"team"`
	Email       string    `json:"email"`
	TimeMS      int       `json:"lap_time_ms"`
	DisplayTime string    `json:"lap_time_display"`
	CreatedAt   time.Time `json:"created_at"`
}

// RankedEntry is a LapEntry annotated with its 1-based position in the
// time-ascending order and its formatted gap to the leader. It is computed
// fresh on every read and never persisted.
type RankedEntry struct {
	LapEntry

	Rank int    `json:"rank"`
	Gap  string `json:"gap"`
}

// RankEntries produces the leaderboard order for a snapshot of lap entries:
// fastest first, ties kept in their input order, dense 1-based ranks (tied
// entries still occupy consecutive positions, there is no gap-skipping).
// The input slice is not modified.
func RankEntries(entries []*LapEntry) []*RankedEntry {
	sorted := make([]*LapEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeMS < sorted[j].TimeMS
	})

	ranked := make([]*RankedEntry, 0, len(sorted))

	if len(sorted) == 0 {
		return ranked
	}

	leaderTime := sorted[0].TimeMS

	for i, entry := range sorted {
		ranked = append(ranked, &RankedEntry{
			LapEntry: *entry,
			Rank:     i + 1,
			Gap:      FormatGap(leaderTime, entry.TimeMS),
		})
	}

	return ranked
}
