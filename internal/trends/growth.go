package trends

type Tier string

const (
	TierExceptional      Tier = "exceptional"
	TierGood             Tier = "good"
	TierSteady           Tier = "steady"
	TierDeclining        Tier = "declining"
	TierNeedsImprovement Tier = "needs_improvement"
)

// Classify maps a percent change onto a growth tier.
func Classify(change float64) Tier {
	switch {
	case change >= 25:
		return TierExceptional
	case change >= 10:
		return TierGood
	case change >= 0:
		return TierSteady
	case change >= -10:
		return TierDeclining
	default:
		return TierNeedsImprovement
	}
}

// PercentChange returns the change from prev to curr in percent. A zero
// baseline counts as +100% when anything was recorded after it.
func PercentChange(prev, curr float64) float64 {
	if prev == 0 {
		if curr > 0 {
			return 100
		}
		return 0
	}
	return (curr - prev) / prev * 100
}

type CategoryGrowth struct {
	Changes       map[string]float64 `json:"changes"`
	AverageChange float64            `json:"average_change"`
	Tier          Tier               `json:"tier"`
}

type Growth struct {
	Status        string                      `json:"status"`
	Categories    map[Category]CategoryGrowth `json:"categories,omitempty"`
	OverallChange float64                     `json:"overall_change,omitempty"`
	OverallTrend  Tier                        `json:"overall_trend,omitempty"`
}

// CalculateGrowth compares the two most recent snapshots of a time-ordered
// history. Only metrics present in both snapshots contribute; a category
// without any comparable metric is left out of the result. The overall trend
// is the mean of the category averages, classified with the same thresholds.
func CalculateGrowth(history []StatSnapshot) Growth {
	if len(history) < 2 {
		return Growth{Status: StatusInsufficientData}
	}
	prev := history[len(history)-2].Metrics
	curr := history[len(history)-1].Metrics

	g := Growth{Status: StatusOK, Categories: make(map[Category]CategoryGrowth)}
	var overall float64
	for _, cat := range Categories {
		changes := make(map[string]float64)
		var sum float64
		for _, name := range CategoryMetrics[cat] {
			p, okPrev := prev[name]
			c, okCurr := curr[name]
			if !okPrev || !okCurr {
				continue
			}
			change := PercentChange(p, c)
			changes[name] = change
			sum += change
		}
		if len(changes) == 0 {
			continue
		}
		avg := sum / float64(len(changes))
		g.Categories[cat] = CategoryGrowth{Changes: changes, AverageChange: avg, Tier: Classify(avg)}
		overall += avg
	}

	if len(g.Categories) == 0 {
		return Growth{Status: StatusInsufficientData}
	}
	g.OverallChange = overall / float64(len(g.Categories))
	g.OverallTrend = Classify(g.OverallChange)
	return g
}
