package goals

import "time"

type GoalType string

const (
	GoalDrill     GoalType = "drill"
	GoalScore     GoalType = "score"
	GoalFrequency GoalType = "frequency"
)

type GoalCategory string

const (
	CategoryDaily       GoalCategory = "daily"
	CategoryWeekly      GoalCategory = "weekly"
	CategoryMonthly     GoalCategory = "monthly"
	CategoryAchievement GoalCategory = "achievement"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Goal is a target tracked to completion. Progress stays within [0, Target]
// and Completed is set exactly when Progress reaches Target.
type Goal struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"owner_id"`
	Type          GoalType     `json:"type"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Target        float64      `json:"target"`
	Progress      float64      `json:"progress"`
	Completed     bool         `json:"completed"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Category      GoalCategory `json:"category"`
	XPReward      int          `json:"xp_reward"`
	CurrentStreak int          `json:"current_streak,omitempty"`
	StreakDays    int          `json:"streak_days,omitempty"`
}

// GoalSpec is the caller-supplied part of a new goal.
type GoalSpec struct {
	Type        GoalType     `json:"type" validate:"required,oneof=drill score frequency"`
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description" validate:"max=1000"`
	Target      float64      `json:"target" validate:"gt=0"`
	Category    GoalCategory `json:"category" validate:"required,oneof=daily weekly monthly achievement"`
	XPReward    int          `json:"xp_reward" validate:"gte=0,max=100000"`
}

type Achievement struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	AchievementID string    `json:"achievement_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	XPEarned      int       `json:"xp_earned"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	Rarity        Rarity    `json:"rarity"`
}

type UserStats struct {
	OwnerID        string    `json:"owner_id"`
	TotalXP        int       `json:"total_xp"`
	Level          int       `json:"level"`
	Achievements   int       `json:"achievements"`
	GoalsCompleted int       `json:"goals_completed"`
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
	LastActivity   time.Time `json:"last_activity"`
	LastUpdated    time.Time `json:"last_updated"`

	// PendingGoalRewards holds goals whose reward is paid but whose completed
	// state is not yet stored.
	PendingGoalRewards []string `json:"-"`
}

// Session is the result of one completed training session.
type Session struct {
	OwnerID    string    `json:"owner_id" validate:"required"`
	DrillType  string    `json:"drill_type,omitempty"`
	AvgScore   *float64  `json:"avg_score,omitempty" validate:"omitempty,gte=0"`
	TotalShots int       `json:"total_shots,omitempty" validate:"gte=0"`
	Scores     []float64 `json:"scores,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// BadgeAward is an externally earned badge to be recorded as an achievement.
type BadgeAward struct {
	ID          string
	Name        string
	Description string
	Rarity      Rarity
}

// ProgressResult is everything one tracked session changed.
type ProgressResult struct {
	Stats     UserStats     `json:"stats"`
	Goals     []Goal        `json:"goals"`
	Completed []Goal        `json:"completed"`
	Unlocked  []Achievement `json:"unlocked"`
}
