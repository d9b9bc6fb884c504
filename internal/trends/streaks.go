package trends

import (
	"sort"
	"time"
)

const (
	streakSampleSize = 50
	streakWindow     = 7 * 24 * time.Hour
	consecutiveGap   = 2 * 24 * time.Hour
)

type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// CalculateStreaks computes per-type streaks over the 50 most recent
// highlights. Current counts the newest events of a type that fall within
// seven days of now, stopping at the first one that does not. Best is the
// longest chronological run of events no more than two days apart.
func CalculateStreaks(highlights []Highlight, now time.Time) map[string]Streak {
	recent := append([]Highlight(nil), highlights...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.Before(recent[j].Timestamp)
	})
	if len(recent) > streakSampleSize {
		recent = recent[len(recent)-streakSampleSize:]
	}

	byType := make(map[string][]time.Time)
	for _, h := range recent {
		byType[h.Type] = append(byType[h.Type], h.Timestamp)
	}

	out := make(map[string]Streak, len(byType))
	for typ, times := range byType {
		out[typ] = Streak{
			Current: currentStreak(times, now),
			Best:    bestStreak(times),
		}
	}
	return out
}

// times is ascending.
func currentStreak(times []time.Time, now time.Time) int {
	n := 0
	for i := len(times) - 1; i >= 0; i-- {
		if !isWithinStreak(times[i], now) {
			break
		}
		n++
	}
	return n
}

func bestStreak(times []time.Time) int {
	best, run := 0, 0
	for i, ts := range times {
		if i > 0 && isConsecutive(times[i-1], ts) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func isWithinStreak(ts, now time.Time) bool {
	return now.Sub(ts) <= streakWindow
}

func isConsecutive(prev, next time.Time) bool {
	return next.Sub(prev) <= consecutiveGap
}
