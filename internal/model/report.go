package model

import (
	"sort"
	"time"
)

// SyncReport summarizes one reconciliation run.
type SyncReport struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Total         int       `json:"total"`
	Inserted      int       `json:"inserted"`
	Skipped       int       `json:"skipped"`
	MissingGameID int       `json:"missing_game_id"`
	Failed        int       `json:"failed"`
}

// ImageReport summarizes one image refresh run.
type ImageReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Extracted  int       `json:"extracted"`
	Updated    int       `json:"updated"`
	NotFound   int       `json:"not_found"`
}

// PlatformCounts tallies exported titles per platform tag.
type PlatformCounts map[string]int

// Total sums all per-platform counts.
func (c PlatformCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Sorted returns the platform tags in lexical order, for stable reporting.
func (c PlatformCounts) Sorted() []string {
	platforms := make([]string, 0, len(c))
	for p := range c {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}
