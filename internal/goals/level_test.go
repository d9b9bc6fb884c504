package goals

import (
	"math"
	"testing"
)

func TestLevel_Boundaries(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{150, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
		{1000, 5},
		{-50, 1},
	}
	for _, c := range cases {
		if got := Level(c.xp); got != c.want {
			t.Errorf("Level(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}

func TestLevel_Monotonic(t *testing.T) {
	prev := Level(0)
	for xp := 1; xp <= 100000; xp += 7 {
		l := Level(xp)
		if l < prev {
			t.Fatalf("Level(%d) = %d dropped below %d", xp, l, prev)
		}
		prev = l
	}
}

func TestLevel_MatchesThresholds(t *testing.T) {
	for n := 1; n <= 200; n++ {
		start := LevelThreshold(n)
		if got := Level(start); got != n {
			t.Errorf("Level(%d) = %d, want %d", start, got, n)
		}
		if n > 1 {
			if got := Level(start - 1); got != n-1 {
				t.Errorf("Level(%d) = %d, want %d", start-1, got, n-1)
			}
		}
	}
}

func TestLevelProgress(t *testing.T) {
	info := LevelProgress(150)
	if info.Level != 2 {
		t.Errorf("Level = %d, want 2", info.Level)
	}
	if info.XPIntoLevel != 50 {
		t.Errorf("XPIntoLevel = %d, want 50", info.XPIntoLevel)
	}
	if info.XPToNextLevel != 150 {
		t.Errorf("XPToNextLevel = %d, want 150", info.XPToNextLevel)
	}
	if info.Percent != 25 {
		t.Errorf("Percent = %v, want 25", info.Percent)
	}
}

func TestLevel_LargeXPTerminates(t *testing.T) {
	want := Level(MaxTotalXP)
	if want < 6000 {
		t.Fatalf("Level(MaxTotalXP) = %d, want a level in the thousands", want)
	}
	if got := Level(math.MaxInt); got != want {
		t.Errorf("Level(MaxInt) = %d, want it capped at %d", got, want)
	}
	if LevelThreshold(want) > MaxTotalXP || LevelThreshold(want+1) <= MaxTotalXP {
		t.Errorf("thresholds around level %d do not bracket MaxTotalXP", want)
	}
}

func TestLevelThreshold_Saturates(t *testing.T) {
	if got := LevelThreshold(1 << 40); got != math.MaxInt {
		t.Errorf("LevelThreshold(2^40) = %d, want MaxInt", got)
	}
	if got := LevelProgress(math.MaxInt); got.TotalXP != MaxTotalXP || got.XPToNextLevel <= 0 {
		t.Errorf("LevelProgress(MaxInt) = %+v, want capped at MaxTotalXP", got)
	}
}
