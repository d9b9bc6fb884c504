package goals

import (
	"context"
	"testing"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		level, badges int
		want          PlayerTier
	}{
		{1, 0, TierRookie},
		{5, 2, TierRookie},
		{5, 3, TierProspect},
		{12, 3, TierProspect},
		{10, 8, TierContender},
		{20, 15, TierVeteran},
		{30, 25, TierElite},
		{45, 34, TierElite},
		{40, 35, TierProdigy},
		{50, 50, TierLegend},
		{80, 60, TierLegend},
	}
	for _, c := range cases {
		if got := TierFor(c.level, c.badges); got != c.want {
			t.Errorf("TierFor(%d, %d) = %s, want %s", c.level, c.badges, got, c.want)
		}
	}
}

func TestTierStatus_NextTier(t *testing.T) {
	info := TierStatus(7, 4)
	if info.Tier != TierProspect {
		t.Fatalf("Tier = %s, want Prospect", info.Tier)
	}
	if info.Next == nil || *info.Next != (TierRequirement{TierContender, 10, 8}) {
		t.Errorf("Next = %+v, want Contender at level 10 with 8 badges", info.Next)
	}

	if top := TierStatus(50, 50); top.Tier != TierLegend || top.Next != nil {
		t.Errorf("top = %+v, want Legend with no next tier", top)
	}
}

func TestStreakBonus(t *testing.T) {
	cases := []struct {
		base, streak, want int
	}{
		{100, 0, 100},
		{100, 3, 130},
		{50, 3, 65},
		{250, 1, 275},
		{55, 1, 61},
		{0, 5, 0},
		{500, 1 << 40, MaxTotalXP},
	}
	for _, c := range cases {
		if got := StreakBonus(c.base, c.streak); got != c.want {
			t.Errorf("StreakBonus(%d, %d) = %d, want %d", c.base, c.streak, got, c.want)
		}
	}
}

func TestRecordBadge_StreakBonus(t *testing.T) {
	s, st, _ := newTestService()
	ctx := context.Background()
	st.PutStats(ctx, UserStats{OwnerID: "u1", Level: 1, CurrentStreak: 3, LongestStreak: 3})

	a, _, err := s.RecordBadge(ctx, "u1", BadgeAward{ID: "HOT_HAND", Name: "Hot Hand", Rarity: RarityRare})
	if err != nil {
		t.Fatalf("RecordBadge: %v", err)
	}
	if a.XPEarned != 130 {
		t.Errorf("XPEarned = %d, want 130 with a 3 day streak", a.XPEarned)
	}
	stats, _ := s.Stats(ctx, "u1")
	if stats.TotalXP != 130 {
		t.Errorf("TotalXP = %d, want 130", stats.TotalXP)
	}
}

func TestService_Tier(t *testing.T) {
	s, st, _ := newTestService()
	ctx := context.Background()
	st.PutStats(ctx, UserStats{OwnerID: "u1", TotalXP: LevelThreshold(6), Level: 6})
	for _, id := range []string{"A", "B", "C"} {
		if _, _, err := s.RecordBadge(ctx, "u1", BadgeAward{ID: id, Name: id, Rarity: RarityCommon}); err != nil {
			t.Fatalf("RecordBadge(%s): %v", id, err)
		}
	}

	info, err := s.Tier(ctx, "u1")
	if err != nil {
		t.Fatalf("Tier: %v", err)
	}
	if info.Tier != TierProspect || info.Badges != 3 {
		t.Errorf("info = %+v, want Prospect with 3 badges", info)
	}

	fresh, _ := s.Tier(ctx, "nobody")
	if fresh.Tier != TierRookie || fresh.Next == nil || fresh.Next.Tier != TierProspect {
		t.Errorf("new owner = %+v, want Rookie aiming at Prospect", fresh)
	}
}
