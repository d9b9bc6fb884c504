package db

import (
	"context"
	"fmt"

	"playerprogress/internal/goals"
)

func (d *DB) ListAchievements(ctx context.Context, ownerID string) ([]goals.Achievement, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, owner_id, achievement_id, title, description, category, xp_earned, unlocked_at, rarity
		FROM achievements WHERE owner_id = $1 ORDER BY unlocked_at, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	defer rows.Close()

	out := []goals.Achievement{}
	for rows.Next() {
		var a goals.Achievement
		var rarity string
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.AchievementID, &a.Title, &a.Description,
			&a.Category, &a.XPEarned, &a.UnlockedAt, &rarity); err != nil {
			return nil, fmt.Errorf("scanning achievement: %w", err)
		}
		a.Rarity = goals.Rarity(rarity)
		out = append(out, a)
	}
	return out, rows.Err()
}

// PutAchievement relies on the (owner_id, achievement_id) unique key so
// concurrent unlocks of the same achievement insert one row.
func (d *DB) PutAchievement(ctx context.Context, a goals.Achievement) (bool, error) {
	res, err := d.conn.ExecContext(ctx, `
		INSERT INTO achievements (id, owner_id, achievement_id, title, description, category, xp_earned, unlocked_at, rarity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (owner_id, achievement_id) DO NOTHING
	`, a.ID, a.OwnerID, a.AchievementID, a.Title, a.Description, a.Category, a.XPEarned, a.UnlockedAt, string(a.Rarity))
	if err != nil {
		return false, fmt.Errorf("saving achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("saving achievement: %w", err)
	}
	return n == 1, nil
}
