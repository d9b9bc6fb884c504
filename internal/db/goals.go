package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"playerprogress/internal/goals"
)

const goalColumns = `id, owner_id, type, title, description, target, progress, completed,
	completed_at, created_at, updated_at, category, xp_reward, current_streak, streak_days`

func (d *DB) GetGoal(ctx context.Context, id string) (goals.Goal, error) {
	row := d.conn.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return goals.Goal{}, fmt.Errorf("goal %s: %w", id, goals.ErrNotFound)
	}
	if err != nil {
		return goals.Goal{}, fmt.Errorf("getting goal: %w", err)
	}
	return g, nil
}

func (d *DB) PutGoal(ctx context.Context, g goals.Goal) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			title = $4, description = $5, target = $6, progress = $7, completed = $8,
			completed_at = $9, updated_at = $11, category = $12, xp_reward = $13,
			current_streak = $14, streak_days = $15
	`, g.ID, g.OwnerID, string(g.Type), g.Title, g.Description, g.Target, g.Progress, g.Completed,
		g.CompletedAt, g.CreatedAt, g.UpdatedAt, string(g.Category), g.XPReward, g.CurrentStreak, g.StreakDays)
	if err != nil {
		return fmt.Errorf("saving goal: %w", err)
	}
	return nil
}

func (d *DB) ListGoals(ctx context.Context, ownerID string) ([]goals.Goal, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT `+goalColumns+` FROM goals WHERE owner_id = $1 ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	out := []goals.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(s scanner) (goals.Goal, error) {
	var g goals.Goal
	var typ, category string
	var completedAt sql.NullTime
	err := s.Scan(&g.ID, &g.OwnerID, &typ, &g.Title, &g.Description, &g.Target, &g.Progress, &g.Completed,
		&completedAt, &g.CreatedAt, &g.UpdatedAt, &category, &g.XPReward, &g.CurrentStreak, &g.StreakDays)
	if err != nil {
		return goals.Goal{}, err
	}
	g.Type = goals.GoalType(typ)
	g.Category = goals.GoalCategory(category)
	if completedAt.Valid {
		t := completedAt.Time
		g.CompletedAt = &t
	}
	return g, nil
}
