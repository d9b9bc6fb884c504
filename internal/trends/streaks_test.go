package trends

import (
	"testing"
	"time"
)

func hl(typ string, day float64) Highlight {
	return Highlight{Type: typ, Timestamp: t0.Add(time.Duration(day * float64(24*time.Hour)))}
}

func TestCalculateStreaks_CurrentAndBest(t *testing.T) {
	highlights := []Highlight{hl("ClutchPlay", 0), hl("ClutchPlay", 1), hl("ClutchPlay", 9)}
	now := t0.AddDate(0, 0, 9)

	got := CalculateStreaks(highlights, now)["ClutchPlay"]
	if got.Current != 1 {
		t.Errorf("Current = %d, want 1", got.Current)
	}
	if got.Best != 2 {
		t.Errorf("Best = %d, want 2", got.Best)
	}
}

func TestCalculateStreaks_UnsortedInput(t *testing.T) {
	highlights := []Highlight{hl("HotStreak", 3), hl("HotStreak", 1), hl("HotStreak", 2)}
	got := CalculateStreaks(highlights, t0.AddDate(0, 0, 3))["HotStreak"]
	if got.Current != 3 || got.Best != 3 {
		t.Errorf("got %+v, want current=3 best=3", got)
	}
}

func TestCalculateStreaks_GroupsByType(t *testing.T) {
	highlights := []Highlight{hl("A", 0), hl("B", 0.5), hl("A", 1), hl("B", 5)}
	got := CalculateStreaks(highlights, t0.AddDate(0, 0, 20))
	if len(got) != 2 {
		t.Fatalf("types = %d, want 2", len(got))
	}
	if got["A"].Current != 0 {
		t.Errorf("A current = %d, want 0 (outside window)", got["A"].Current)
	}
	if got["A"].Best != 2 {
		t.Errorf("A best = %d, want 2", got["A"].Best)
	}
	if got["B"].Best != 1 {
		t.Errorf("B best = %d, want 1", got["B"].Best)
	}
}

func TestCalculateStreaks_OnlyLastFifty(t *testing.T) {
	var highlights []Highlight
	for i := 0; i < 60; i++ {
		highlights = append(highlights, hl("Dunk", float64(i)*0.1))
	}
	got := CalculateStreaks(highlights, t0.AddDate(0, 0, 6))["Dunk"]
	if got.Best != 50 {
		t.Errorf("Best = %d, want 50", got.Best)
	}
	if got.Current != 50 {
		t.Errorf("Current = %d, want 50", got.Current)
	}
}

func TestCalculateStreaks_Empty(t *testing.T) {
	if got := CalculateStreaks(nil, t0); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
