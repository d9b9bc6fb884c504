package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"playerprogress/internal/goals"
)

// Memory is an in-process goals.Store used when no database is configured.
type Memory struct {
	mu           sync.Mutex
	goals        map[string]goals.Goal
	stats        map[string]goals.UserStats
	achievements map[string][]goals.Achievement
}

func NewMemory() *Memory {
	return &Memory{
		goals:        make(map[string]goals.Goal),
		stats:        make(map[string]goals.UserStats),
		achievements: make(map[string][]goals.Achievement),
	}
}

func (m *Memory) GetGoal(_ context.Context, id string) (goals.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return goals.Goal{}, fmt.Errorf("goal %s: %w", id, goals.ErrNotFound)
	}
	return g, nil
}

func (m *Memory) PutGoal(_ context.Context, g goals.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[g.ID] = g
	return nil
}

func (m *Memory) ListGoals(_ context.Context, ownerID string) ([]goals.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []goals.Goal{}
	for _, g := range m.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetStats(_ context.Context, ownerID string) (goals.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stats[ownerID]
	if !ok {
		return goals.UserStats{}, fmt.Errorf("stats %s: %w", ownerID, goals.ErrNotFound)
	}
	return st, nil
}

func (m *Memory) PutStats(_ context.Context, st goals.UserStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[st.OwnerID] = st
	return nil
}

func (m *Memory) ListAchievements(_ context.Context, ownerID string) ([]goals.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]goals.Achievement{}, m.achievements[ownerID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UnlockedAt.Before(out[j].UnlockedAt) })
	return out, nil
}

func (m *Memory) PutAchievement(_ context.Context, a goals.Achievement) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, have := range m.achievements[a.OwnerID] {
		if have.AchievementID == a.AchievementID {
			return false, nil
		}
	}
	m.achievements[a.OwnerID] = append(m.achievements[a.OwnerID], a)
	return true, nil
}

func (m *Memory) TopStats(_ context.Context, by goals.StatField, limit int) ([]goals.UserStats, error) {
	if !by.Valid() {
		return nil, fmt.Errorf("unknown stat %q", by)
	}
	m.mu.Lock()
	out := make([]goals.UserStats, 0, len(m.stats))
	for _, st := range m.stats {
		out = append(out, st)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := by.Of(out[i]), by.Of(out[j])
		if a != b {
			return a > b
		}
		return out[i].OwnerID < out[j].OwnerID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
