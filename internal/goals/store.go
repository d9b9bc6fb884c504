package goals

import (
	"context"

	"playerprogress/internal/events"
)

// Store is the persistence port. Implementations return an error wrapping
// ErrNotFound for missing records.
type Store interface {
	GetGoal(ctx context.Context, id string) (Goal, error)
	PutGoal(ctx context.Context, g Goal) error
	// ListGoals returns the owner's goals ordered by CreatedAt.
	ListGoals(ctx context.Context, ownerID string) ([]Goal, error)

	GetStats(ctx context.Context, ownerID string) (UserStats, error)
	PutStats(ctx context.Context, s UserStats) error

	// ListAchievements returns the owner's achievements ordered by UnlockedAt.
	ListAchievements(ctx context.Context, ownerID string) ([]Achievement, error)
	// PutAchievement inserts a unless the owner already holds a.AchievementID,
	// in which case it reports created=false and leaves the store unchanged.
	PutAchievement(ctx context.Context, a Achievement) (created bool, err error)
}

// Publisher receives progress events. Implementations must not block.
type Publisher interface {
	Publish(ev events.Event)
}

// StatField names a UserStats counter owners can be ranked by. The value is
// the column name in SQL-backed stores.
type StatField string

const (
	StatTotalXP        StatField = "total_xp"
	StatCurrentStreak  StatField = "current_streak"
	StatLongestStreak  StatField = "longest_streak"
	StatGoalsCompleted StatField = "goals_completed"
	StatAchievements   StatField = "achievements"
)

func (f StatField) Valid() bool {
	switch f {
	case StatTotalXP, StatCurrentStreak, StatLongestStreak, StatGoalsCompleted, StatAchievements:
		return true
	}
	return false
}

// Of reads the field from st.
func (f StatField) Of(st UserStats) int {
	switch f {
	case StatTotalXP:
		return st.TotalXP
	case StatCurrentStreak:
		return st.CurrentStreak
	case StatLongestStreak:
		return st.LongestStreak
	case StatGoalsCompleted:
		return st.GoalsCompleted
	case StatAchievements:
		return st.Achievements
	}
	return 0
}

// Ranker lists the owners with the highest value of a stat, ties broken by
// owner id.
type Ranker interface {
	TopStats(ctx context.Context, by StatField, limit int) ([]UserStats, error)
}
