package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"playerprogress/internal/badges"
	"playerprogress/internal/cache"
	"playerprogress/internal/goals"
	"playerprogress/internal/players"
	"playerprogress/internal/trends"
)

const DefaultCacheTTL = 5 * time.Minute

// Report is the progress summary served for one player.
type Report struct {
	PlayerID        string                                  `json:"player_id"`
	Growth          trends.Growth                           `json:"growth"`
	Streaks         map[string]trends.Streak                `json:"streaks"`
	Trends          map[trends.Category][]trends.TrendPoint `json:"trends"`
	Badges          badges.PlayerBadges                     `json:"badges"`
	Performance     trends.Performance                      `json:"performance"`
	Recommendations []string                                `json:"recommendations"`
	LastUpdated     time.Time                               `json:"last_updated"`
}

// BadgeRecorder turns an earned badge into a persisted reward.
type BadgeRecorder interface {
	RecordBadge(ctx context.Context, ownerID string, b goals.BadgeAward) (goals.Achievement, bool, error)
}

// Tracker feeds highlights and stat snapshots into the player working set
// and the badge engine, and serves cached progress reports.
type Tracker struct {
	players  *players.Store
	badges   *badges.Engine
	cache    cache.Cache
	ttl      time.Duration
	recorder BadgeRecorder
	now      func() time.Time
}

// NewTracker wires a Tracker. recorder may be nil.
func NewTracker(ps *players.Store, be *badges.Engine, c cache.Cache, ttl time.Duration, recorder BadgeRecorder) *Tracker {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Tracker{
		players:  ps,
		badges:   be,
		cache:    c,
		ttl:      ttl,
		recorder: recorder,
		now:      time.Now,
	}
}

func cacheKey(playerID string) string { return "report:" + playerID }

// AddHighlights appends highlights to the player's history and runs them
// through the badge engine. Newly earned badges are returned and recorded as
// achievements.
func (t *Tracker) AddHighlights(ctx context.Context, playerID string, hs []trends.Highlight) ([]badges.EarnedBadge, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, &goals.ValidationError{Fields: map[string]string{"player_id": "required"}}
	}
	if len(hs) == 0 {
		return nil, &goals.ValidationError{Fields: map[string]string{"highlights": "at least one highlight is required"}}
	}
	now := t.now()
	clean := make([]trends.Highlight, len(hs))
	for i, h := range hs {
		if strings.TrimSpace(h.Type) == "" {
			return nil, &goals.ValidationError{Fields: map[string]string{"highlight_type": fmt.Sprintf("required (highlight %d)", i)}}
		}
		if h.Timestamp.IsZero() {
			h.Timestamp = now
		}
		clean[i] = h
	}

	var earned []badges.EarnedBadge
	t.players.Update(playerID, func(p *trends.Profile) {
		p.AddHighlights(clean...)
		earned = t.badges.ProcessHighlights(playerID, clean)
		for _, b := range earned {
			p.Badges[string(b.ID)] = true
		}
	})
	t.invalidate(ctx, playerID)

	if earned == nil {
		earned = []badges.EarnedBadge{}
	}
	var errs []error
	for _, b := range earned {
		log.Printf("[Badges] %s earned %s", playerID, b.ID)
		if t.recorder == nil {
			continue
		}
		_, _, err := t.recorder.RecordBadge(ctx, playerID, goals.BadgeAward{
			ID:          string(b.ID),
			Name:        b.Name,
			Description: b.Description,
			Rarity:      goals.Rarity(b.Rarity),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("recording badge %s: %w", b.ID, err))
		}
	}
	return earned, errors.Join(errs...)
}

// AddSnapshot records one stat snapshot for the player.
func (t *Tracker) AddSnapshot(ctx context.Context, playerID string, s trends.StatSnapshot) error {
	if strings.TrimSpace(playerID) == "" {
		return &goals.ValidationError{Fields: map[string]string{"player_id": "required"}}
	}
	if len(s.Metrics) == 0 {
		return &goals.ValidationError{Fields: map[string]string{"metrics": "at least one metric is required"}}
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = t.now()
	}
	t.players.Update(playerID, func(p *trends.Profile) {
		p.AddSnapshot(s)
	})
	t.invalidate(ctx, playerID)
	return nil
}

// Badges returns the player's badge state straight from the engine.
func (t *Tracker) Badges(playerID string) badges.PlayerBadges {
	return t.badges.PlayerBadges(playerID)
}

// Report returns the player's progress report, from cache when fresh.
func (t *Tracker) Report(ctx context.Context, playerID string) (Report, error) {
	key := cacheKey(playerID)
	if data, ok, err := t.cache.Get(ctx, key); err != nil {
		log.Printf("[Cache] Get %s failed: %v", key, err)
	} else if ok {
		var r Report
		if err := json.Unmarshal(data, &r); err == nil {
			return r, nil
		}
		log.Printf("[Cache] Discarding unreadable entry %s", key)
	}

	p, ok := t.players.View(playerID)
	if !ok {
		return Report{}, fmt.Errorf("player %s: %w", playerID, goals.ErrNotFound)
	}
	r := t.build(p)

	if data, err := json.Marshal(r); err != nil {
		log.Printf("[Reports] Marshal report for %s: %v", playerID, err)
	} else if err := t.cache.Set(ctx, key, data, t.ttl); err != nil {
		log.Printf("[Cache] Set %s failed: %v", key, err)
	}
	return r, nil
}

func (t *Tracker) build(p *trends.Profile) Report {
	now := t.now()
	perf := trends.AnalyzePerformance(p.StatsHistory)
	streaks := trends.CalculateStreaks(p.Highlights, now)
	return Report{
		PlayerID:        p.PlayerID,
		Growth:          trends.CalculateGrowth(p.StatsHistory),
		Streaks:         streaks,
		Trends:          p.Trends,
		Badges:          t.badges.PlayerBadges(p.PlayerID),
		Performance:     perf,
		Recommendations: trends.GenerateRecommendations(perf, streaks, t.badges.Nudges(p.PlayerID)),
		LastUpdated:     now,
	}
}

// Sweep applies retention to every profile, evicts the empty ones and drops
// their cached reports. It returns the evicted player ids.
func (t *Tracker) Sweep(ctx context.Context) []string {
	evicted := t.players.Sweep()
	for _, id := range evicted {
		t.invalidate(ctx, id)
	}
	if len(evicted) > 0 {
		log.Printf("[Reports] Evicted %d idle profiles", len(evicted))
	}
	return evicted
}

// Forget resets a player: the tracked profile, badge counters and cached
// report are dropped. Badge achievements already recorded with their XP stay,
// so badges earned again after a reset pay nothing.
func (t *Tracker) Forget(ctx context.Context, playerID string) error {
	if strings.TrimSpace(playerID) == "" {
		return &goals.ValidationError{Fields: map[string]string{"player_id": "required"}}
	}
	t.players.Remove(playerID)
	t.badges.Forget(playerID)
	t.invalidate(ctx, playerID)
	log.Printf("[Reports] Reset player %s", playerID)
	return nil
}

// invalidate drops the cached report. A cache failure is logged only; the
// stale entry expires with its TTL.
func (t *Tracker) invalidate(ctx context.Context, playerID string) {
	if err := t.cache.Delete(ctx, cacheKey(playerID)); err != nil {
		log.Printf("[Cache] Invalidate %s failed: %v", playerID, err)
	}
}
