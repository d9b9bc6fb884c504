package goals

import (
	"context"
	"strings"
)

type PlayerTier string

const (
	TierRookie    PlayerTier = "Rookie"
	TierProspect  PlayerTier = "Prospect"
	TierContender PlayerTier = "Contender"
	TierVeteran   PlayerTier = "Veteran"
	TierElite     PlayerTier = "Elite"
	TierProdigy   PlayerTier = "Prodigy"
	TierLegend    PlayerTier = "Legend"
)

// TierRequirement is what a player needs to hold a tier.
type TierRequirement struct {
	Tier           PlayerTier `json:"tier"`
	MinLevel       int        `json:"min_level"`
	BadgesRequired int        `json:"badges_required"`
}

// tierLadder is ordered lowest to highest.
var tierLadder = []TierRequirement{
	{TierRookie, 0, 0},
	{TierProspect, 5, 3},
	{TierContender, 10, 8},
	{TierVeteran, 20, 15},
	{TierElite, 30, 25},
	{TierProdigy, 40, 35},
	{TierLegend, 50, 50},
}

// TierFor returns the highest tier whose level and badge requirements are
// both met.
func TierFor(level, badges int) PlayerTier {
	tier := TierRookie
	for _, r := range tierLadder {
		if level >= r.MinLevel && badges >= r.BadgesRequired {
			tier = r.Tier
		}
	}
	return tier
}

// NextTier returns the requirements of the tier above t. It reports false
// for the top tier.
func NextTier(t PlayerTier) (TierRequirement, bool) {
	for i, r := range tierLadder {
		if r.Tier == t && i+1 < len(tierLadder) {
			return tierLadder[i+1], true
		}
	}
	return TierRequirement{}, false
}

type TierInfo struct {
	Tier   PlayerTier       `json:"tier"`
	Level  int              `json:"level"`
	Badges int              `json:"badges"`
	Next   *TierRequirement `json:"next_tier"`
}

func TierStatus(level, badges int) TierInfo {
	info := TierInfo{Tier: TierFor(level, badges), Level: level, Badges: badges}
	if next, ok := NextTier(info.Tier); ok {
		info.Next = &next
	}
	return info
}

// CountBadges counts the recorded badge achievements in as.
func CountBadges(as []Achievement) int {
	n := 0
	prefix := BadgeAchievementID("")
	for _, a := range as {
		if strings.HasPrefix(a.AchievementID, prefix) {
			n++
		}
	}
	return n
}

// Tier returns the owner's tier from their level and recorded badges.
func (s *Service) Tier(ctx context.Context, ownerID string) (TierInfo, error) {
	st, err := s.loadStats(ctx, ownerID)
	if err != nil {
		return TierInfo{}, err
	}
	as, err := s.store.ListAchievements(ctx, ownerID)
	if err != nil {
		return TierInfo{}, persist("list achievements", err)
	}
	return TierStatus(Level(st.TotalXP), CountBadges(as)), nil
}

// StreakBonus scales base by 10% per day of the current streak, rounding up:
// ceil(base + base*streak*0.1). The result saturates at MaxTotalXP.
func StreakBonus(base, streak int) int {
	if base <= 0 || streak <= 0 {
		return max(base, 0)
	}
	if streak > (MaxTotalXP*10)/base {
		return MaxTotalXP
	}
	return min(base+(base*streak+9)/10, MaxTotalXP)
}
