package trends

import (
	"fmt"
	"sort"
	"strings"
)

// BadgeNudge is a badge the player has partially progressed toward.
type BadgeNudge struct {
	ID      string
	Name    string
	Percent float64
}

// GenerateRecommendations derives coaching messages from an analysis. Output
// order is stable: improvement focus first, then streaks by highlight type,
// then badges by id.
func GenerateRecommendations(perf Performance, streaks map[string]Streak, badges []BadgeNudge) []string {
	recs := []string{}

	if len(perf.Improvements) > 0 {
		recs = append(recs, fmt.Sprintf("Focus on improving %s to build more consistent performance.",
			strings.Join(perf.Improvements, ", ")))
	}

	types := make([]string, 0, len(streaks))
	for typ, s := range streaks {
		if s.Current > 0 {
			types = append(types, typ)
		}
	}
	sort.Strings(types)
	for _, typ := range types {
		recs = append(recs, fmt.Sprintf("You're on a %d-highlight %s streak. Keep it going!", streaks[typ].Current, typ))
	}

	nudges := append([]BadgeNudge(nil), badges...)
	sort.Slice(nudges, func(i, j int) bool { return nudges[i].ID < nudges[j].ID })
	for _, b := range nudges {
		if b.Percent >= 75 && b.Percent < 100 {
			recs = append(recs, fmt.Sprintf("You're %.0f%% of the way to %s. Almost there!", b.Percent, b.Name))
		}
	}

	return recs
}
