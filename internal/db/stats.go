package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"playerprogress/internal/goals"
)

func (d *DB) GetStats(ctx context.Context, ownerID string) (goals.UserStats, error) {
	var st goals.UserStats
	var lastActivity sql.NullTime
	err := d.conn.QueryRowContext(ctx, `
		SELECT owner_id, total_xp, level, achievements, goals_completed,
			current_streak, longest_streak, last_activity, last_updated, pending_goal_rewards
		FROM user_stats WHERE owner_id = $1
	`, ownerID).Scan(&st.OwnerID, &st.TotalXP, &st.Level, &st.Achievements, &st.GoalsCompleted,
		&st.CurrentStreak, &st.LongestStreak, &lastActivity, &st.LastUpdated, pq.Array(&st.PendingGoalRewards))
	if errors.Is(err, sql.ErrNoRows) {
		return goals.UserStats{}, fmt.Errorf("stats %s: %w", ownerID, goals.ErrNotFound)
	}
	if err != nil {
		return goals.UserStats{}, fmt.Errorf("getting stats: %w", err)
	}
	if lastActivity.Valid {
		st.LastActivity = lastActivity.Time
	}
	return st, nil
}

func (d *DB) PutStats(ctx context.Context, st goals.UserStats) error {
	lastActivity := sql.NullTime{Time: st.LastActivity, Valid: !st.LastActivity.IsZero()}
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO user_stats (owner_id, total_xp, level, achievements, goals_completed,
			current_streak, longest_streak, last_activity, last_updated, pending_goal_rewards)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (owner_id) DO UPDATE SET
			total_xp = $2, level = $3, achievements = $4, goals_completed = $5,
			current_streak = $6, longest_streak = $7, last_activity = $8, last_updated = $9,
			pending_goal_rewards = $10
	`, st.OwnerID, st.TotalXP, st.Level, st.Achievements, st.GoalsCompleted,
		st.CurrentStreak, st.LongestStreak, lastActivity, st.LastUpdated, pq.Array(st.PendingGoalRewards))
	if err != nil {
		return fmt.Errorf("saving stats: %w", err)
	}
	return nil
}

func (d *DB) TopStats(ctx context.Context, by goals.StatField, limit int) ([]goals.UserStats, error) {
	if !by.Valid() {
		return nil, fmt.Errorf("unknown stat %q", by)
	}
	// by is one of a fixed set of column names
	rows, err := d.conn.QueryContext(ctx, `
		SELECT owner_id, total_xp, level, achievements, goals_completed,
			current_streak, longest_streak, last_activity, last_updated
		FROM user_stats
		ORDER BY `+string(by)+` DESC, owner_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking stats: %w", err)
	}
	defer rows.Close()

	out := []goals.UserStats{}
	for rows.Next() {
		var st goals.UserStats
		var lastActivity sql.NullTime
		if err := rows.Scan(&st.OwnerID, &st.TotalXP, &st.Level, &st.Achievements, &st.GoalsCompleted,
			&st.CurrentStreak, &st.LongestStreak, &lastActivity, &st.LastUpdated); err != nil {
			return nil, fmt.Errorf("scanning stats: %w", err)
		}
		if lastActivity.Valid {
			st.LastActivity = lastActivity.Time
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
