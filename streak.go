package main

import (
	"sort"
	"time"
)

// computeStreak counts consecutive calendar days with at least one weight-log
// entry, walking backward from today. The newest logged day must be today or
// yesterday for a streak to exist; the first missing day ends it. Several
// entries on the same date count once.
func computeStreak(logs []weightLogEntry, now time.Time) int {
	if len(logs) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(logs))
	days := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		key := l.Date.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, truncateToDay(l.Date.Time))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := truncateToDay(now)
	if daysBetween(days[0], today) > 1 {
		return 0
	}

	streak := 1
	prev := days[0]
	for _, d := range days[1:] {
		if daysBetween(d, prev) != 1 {
			break
		}
		streak++
		prev = d
	}
	return streak
}

// truncateToDay returns midnight UTC of t's calendar day.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole number of days from a to b (negative when b is earlier).
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
