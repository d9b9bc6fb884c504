package trends

import (
	"math"
	"strings"
	"testing"
)

func TestAnalyzePerformance_Insufficient(t *testing.T) {
	p := AnalyzePerformance([]StatSnapshot{snap(0, Metrics{"points": 3})})
	if p.Status != StatusInsufficientData {
		t.Errorf("Status = %q, want insufficient", p.Status)
	}
}

func TestAnalyzePerformance_StrengthsAndImprovements(t *testing.T) {
	history := []StatSnapshot{
		snap(0, Metrics{"points": 10, "rebounds": 2, "steals": 5}),
		snap(1, Metrics{"points": 10, "rebounds": 8, "steals": 4}),
		snap(2, Metrics{"points": 10, "rebounds": 1, "steals": 3}),
	}
	p := AnalyzePerformance(history)

	// steals is low-variance even while declining, so it is both
	if len(p.Strengths) != 2 || p.Strengths[0] != "points" || p.Strengths[1] != "steals" {
		t.Errorf("Strengths = %v, want [points steals]", p.Strengths)
	}
	// rebounds: high variance; steals: declining
	if len(p.Improvements) != 2 || p.Improvements[0] != "rebounds" || p.Improvements[1] != "steals" {
		t.Errorf("Improvements = %v, want [rebounds steals]", p.Improvements)
	}
	if p.Metrics["steals"].Trend != MetricDeclining {
		t.Errorf("steals trend = %q, want declining", p.Metrics["steals"].Trend)
	}
}

func TestAnalyzePerformance_WindowOfFive(t *testing.T) {
	var history []StatSnapshot
	for i := 0; i < 8; i++ {
		history = append(history, snap(i, Metrics{"assists": float64(i)}))
	}
	p := AnalyzePerformance(history)
	st := p.Metrics["assists"]
	if st.Samples != 5 {
		t.Errorf("Samples = %d, want 5", st.Samples)
	}
	if st.Average != 5 {
		t.Errorf("Average = %v, want 5", st.Average)
	}
	if st.Variance != 2 {
		t.Errorf("Variance = %v, want 2", st.Variance)
	}
}

func TestAnalyzePerformance_ConsistencyBounded(t *testing.T) {
	history := []StatSnapshot{
		snap(0, Metrics{"blocks": 1, "clutch_plays": 0}),
		snap(1, Metrics{"blocks": 1, "clutch_plays": 10}),
	}
	p := AnalyzePerformance(history)
	if p.Consistency[CategoryDefense] != 1 {
		t.Errorf("defense consistency = %v, want 1", p.Consistency[CategoryDefense])
	}
	impact := p.Consistency[CategoryImpact]
	if impact <= 0 || impact > 1 {
		t.Errorf("impact consistency = %v, want (0,1]", impact)
	}
	if math.Abs(impact-1.0/26) > 1e-9 {
		t.Errorf("impact consistency = %v, want %v", impact, 1.0/26)
	}
	if _, ok := p.Consistency[CategoryOffense]; ok {
		t.Error("offense has no metrics and should have no score")
	}
}

func TestGenerateRecommendations(t *testing.T) {
	perf := Performance{Improvements: []string{"rebounds", "steals"}}
	streaks := map[string]Streak{
		"HotStreak":  {Current: 3, Best: 4},
		"ClutchPlay": {Current: 1, Best: 1},
		"Dunk":       {Current: 0, Best: 2},
	}
	badges := []BadgeNudge{
		{ID: "b", Name: "Sharpshooter", Percent: 80},
		{ID: "a", Name: "Clutch Performer", Percent: 50},
		{ID: "c", Name: "Done", Percent: 100},
	}

	recs := GenerateRecommendations(perf, streaks, badges)
	if len(recs) != 4 {
		t.Fatalf("got %d recommendations, want 4: %v", len(recs), recs)
	}
	if !strings.Contains(recs[0], "rebounds, steals") {
		t.Errorf("recs[0] = %q, want improvement focus", recs[0])
	}
	if !strings.Contains(recs[1], "ClutchPlay") || !strings.Contains(recs[2], "HotStreak") {
		t.Errorf("streak messages out of order: %v", recs[1:3])
	}
	if !strings.Contains(recs[3], "Sharpshooter") {
		t.Errorf("recs[3] = %q, want badge nudge", recs[3])
	}

	again := GenerateRecommendations(perf, streaks, badges)
	for i := range recs {
		if recs[i] != again[i] {
			t.Fatalf("recommendations not deterministic: %v vs %v", recs, again)
		}
	}
}

func TestGenerateRecommendations_Empty(t *testing.T) {
	recs := GenerateRecommendations(Performance{}, nil, nil)
	if recs == nil || len(recs) != 0 {
		t.Errorf("got %v, want empty non-nil slice", recs)
	}
}
