package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"playerprogress/internal/goals"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	recentCount  = 5
)

// Source is a goals.Store that can also rank owners.
type Source interface {
	goals.Store
	goals.Ranker
}

type Queries struct {
	Store Source
}

func NewQueries(store Source) *Queries {
	return &Queries{Store: store}
}

var categories = map[string]goals.StatField{
	"xp":             goals.StatTotalXP,
	"streak":         goals.StatCurrentStreak,
	"longest_streak": goals.StatLongestStreak,
	"goals":          goals.StatGoalsCompleted,
	"achievements":   goals.StatAchievements,
}

// GetLeaderboard ranks owners by category. Owners with equal values share
// order by owner id but get distinct ranks.
func (q *Queries) GetLeaderboard(ctx context.Context, category string, limit int) ([]LeaderboardEntry, error) {
	if category == "" {
		category = "xp"
	}
	field, ok := categories[category]
	if !ok {
		return nil, &goals.ValidationError{Fields: map[string]string{"cat": fmt.Sprintf("unknown leaderboard category: %s", category)}}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	top, err := q.Store.TopStats(ctx, field, limit)
	if err != nil {
		return nil, &goals.PersistenceError{Op: "leaderboard", Err: err}
	}
	entries := make([]LeaderboardEntry, 0, len(top))
	for i, st := range top {
		entries = append(entries, LeaderboardEntry{
			Rank:    i + 1,
			OwnerID: st.OwnerID,
			Level:   st.Level,
			Value:   field.Of(st),
		})
	}
	return entries, nil
}

// GetPlayerSummary aggregates an owner's stats, goals and achievements. An
// owner with no history gets the level 1 defaults.
func (q *Queries) GetPlayerSummary(ctx context.Context, ownerID string) (*PlayerSummary, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, &goals.ValidationError{Fields: map[string]string{"owner_id": "required"}}
	}
	sum := &PlayerSummary{
		OwnerID:  ownerID,
		ByRarity: make(map[goals.Rarity]int),
		Recent:   []goals.Achievement{},
	}

	st, err := q.Store.GetStats(ctx, ownerID)
	switch {
	case errors.Is(err, goals.ErrNotFound):
		st = goals.UserStats{OwnerID: ownerID, Level: 1}
	case err != nil:
		return nil, &goals.PersistenceError{Op: "get stats", Err: err}
	}
	sum.Stats = st
	sum.Level = goals.LevelProgress(st.TotalXP)

	gs, err := q.Store.ListGoals(ctx, ownerID)
	if err != nil {
		return nil, &goals.PersistenceError{Op: "list goals", Err: err}
	}
	for _, g := range gs {
		if g.Completed {
			sum.GoalsCompleted++
		} else {
			sum.GoalsActive++
		}
	}
	if len(gs) > 0 {
		sum.CompletionRate = float64(sum.GoalsCompleted) / float64(len(gs)) * 100
	}

	as, err := q.Store.ListAchievements(ctx, ownerID)
	if err != nil {
		return nil, &goals.PersistenceError{Op: "list achievements", Err: err}
	}
	for _, a := range as {
		sum.ByRarity[a.Rarity]++
	}
	sum.Badges = goals.CountBadges(as)
	sum.Tier = goals.TierStatus(sum.Level.Level, sum.Badges)
	// newest first
	for i := len(as) - 1; i >= 0 && len(sum.Recent) < recentCount; i-- {
		sum.Recent = append(sum.Recent, as[i])
	}
	return sum, nil
}
