package analytics

import "playerprogress/internal/goals"

type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	OwnerID string `json:"owner_id"`
	Level   int    `json:"level"`
	Value   int    `json:"value"`
}

type PlayerSummary struct {
	OwnerID        string               `json:"owner_id"`
	Stats          goals.UserStats      `json:"stats"`
	Level          goals.LevelInfo      `json:"level"`
	GoalsActive    int                  `json:"goals_active"`
	GoalsCompleted int                  `json:"goals_completed"`
	CompletionRate float64              `json:"completion_rate"` // percent of created goals completed
	ByRarity       map[goals.Rarity]int `json:"achievements_by_rarity"`
	Badges         int                  `json:"badges"`
	Tier           goals.TierInfo       `json:"tier"`
	Recent         []goals.Achievement  `json:"recent_achievements"`
}
