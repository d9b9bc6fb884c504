package trends

import "sort"

const performanceWindow = 5

const (
	MetricImproving = "improving"
	MetricStable    = "stable"
	MetricDeclining = "declining"
)

type MetricStats struct {
	Average  float64 `json:"average"`
	Variance float64 `json:"variance"`
	Samples  int     `json:"samples"`
	Trend    string  `json:"trend"`
}

type Performance struct {
	Status       string                 `json:"status"`
	Metrics      map[string]MetricStats `json:"metrics,omitempty"`
	Strengths    []string               `json:"strengths"`
	Improvements []string               `json:"improvements"`
	Consistency  map[Category]float64   `json:"consistency,omitempty"`
}

// AnalyzePerformance looks at the last five snapshots. A metric's trend
// compares its newest sample in the window against its oldest.
func AnalyzePerformance(history []StatSnapshot) Performance {
	if len(history) < 2 {
		return Performance{Status: StatusInsufficientData, Strengths: []string{}, Improvements: []string{}}
	}
	window := history
	if len(window) > performanceWindow {
		window = window[len(window)-performanceWindow:]
	}

	perf := Performance{
		Status:       StatusOK,
		Metrics:      make(map[string]MetricStats),
		Strengths:    []string{},
		Improvements: []string{},
		Consistency:  make(map[Category]float64),
	}

	for _, cat := range Categories {
		var consistency float64
		counted := 0
		for _, name := range CategoryMetrics[cat] {
			var samples []float64
			for _, s := range window {
				if v, ok := s.Metrics[name]; ok {
					samples = append(samples, v)
				}
			}
			if len(samples) == 0 {
				continue
			}
			st := describe(samples)
			perf.Metrics[name] = st

			if st.Average > 0 && st.Variance < 1 {
				perf.Strengths = append(perf.Strengths, name)
			}
			if st.Variance > 2 || st.Trend == MetricDeclining {
				perf.Improvements = append(perf.Improvements, name)
			}
			consistency += 1 / (1 + st.Variance)
			counted++
		}
		if counted > 0 {
			perf.Consistency[cat] = consistency / float64(counted)
		}
	}

	sort.Strings(perf.Strengths)
	sort.Strings(perf.Improvements)
	return perf
}

func describe(samples []float64) MetricStats {
	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))

	var sq float64
	for _, v := range samples {
		d := v - mean
		sq += d * d
	}

	trend := MetricStable
	if len(samples) >= 2 {
		first, last := samples[0], samples[len(samples)-1]
		switch {
		case last > first:
			trend = MetricImproving
		case last < first:
			trend = MetricDeclining
		}
	}

	return MetricStats{
		Average:  mean,
		Variance: sq / float64(len(samples)),
		Samples:  len(samples),
		Trend:    trend,
	}
}
