package progress

import (
	"sort"
	"time"
)

const day = 24 * time.Hour

type Streak struct {
	Current int `json:"currentStreak"`
	Longest int `json:"longestStreak"`
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeStreak reduces times to distinct UTC days and measures consecutive
// runs. Current is the run ending at the latest day present, whether or not
// that day is today.
func ComputeStreak(times []time.Time) Streak {
	seen := make(map[time.Time]struct{}, len(times))
	days := make([]time.Time, 0, len(times))
	for _, t := range times {
		d := Day(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var s Streak
	for i, d := range days {
		if i == 0 {
			s.Current, s.Longest = 1, 1
			continue
		}
		gap := d.Sub(days[i-1])
		switch {
		case gap == day:
			s.Current++
		case gap > day:
			s.Longest = max(s.Longest, s.Current)
			s.Current = 1
		}
	}
	s.Longest = max(s.Longest, s.Current)
	return s
}
