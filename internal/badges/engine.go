package badges

import (
	"sort"
	"sync"
	"time"

	"playerprogress/internal/trends"
)

const weeklyWindow = 7 * 24 * time.Hour

type EarnedBadge struct {
	ID          BadgeID   `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Rarity      string    `json:"rarity"`
	EarnedAt    time.Time `json:"earned_at"`
}

type Progress struct {
	Current  int `json:"current"`
	Required int `json:"required"`
}

// Percent is Current as a share of Required, capped at 100.
func (p Progress) Percent() float64 {
	if p.Required <= 0 {
		return 0
	}
	pct := float64(p.Current) / float64(p.Required) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

type Stats struct {
	TotalHighlights  int `json:"total_highlights"`
	WeeklyHighlights int `json:"weekly_highlights"`
}

type PlayerBadges struct {
	Earned   []EarnedBadge        `json:"earned"`
	Progress map[BadgeID]Progress `json:"progress"`
	Stats    Stats                `json:"stats"`
}

type playerState struct {
	counts   map[string]int
	total    int
	recent   []time.Time
	earned   []EarnedBadge
	has      map[BadgeID]bool
	progress map[BadgeID]Progress
}

func newPlayerState() *playerState {
	return &playerState{
		counts:   make(map[string]int),
		has:      make(map[BadgeID]bool),
		progress: make(map[BadgeID]Progress),
	}
}

// Engine tracks highlight counts per player and awards badges from the
// catalog. A single lock covers all players because Weekly MVP compares
// counts across them.
type Engine struct {
	mu      sync.Mutex
	players map[string]*playerState
	catalog []Badge
	now     func() time.Time
}

func NewEngine(weeklyMVPMin int) *Engine {
	return &Engine{
		players: make(map[string]*playerState),
		catalog: catalog(weeklyMVPMin),
		now:     time.Now,
	}
}

// ProcessHighlights folds hs into the player's counts one at a time, in
// timestamp order, and returns the badges newly earned along the way.
func (e *Engine) ProcessHighlights(playerID string, hs []trends.Highlight) []EarnedBadge {
	sorted := append([]trends.Highlight(nil), hs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	st, ok := e.players[playerID]
	if !ok {
		st = newPlayerState()
		e.players[playerID] = st
	}
	st.recent = pruneRecent(st.recent, now)

	var newly []EarnedBadge
	for _, h := range sorted {
		st.total++
		st.counts[h.Type]++
		if now.Sub(h.Timestamp) <= weeklyWindow {
			st.recent = append(st.recent, h.Timestamp)
		}

		for _, b := range e.catalog {
			if st.has[b.ID] {
				continue
			}
			var current int
			switch b.Rule {
			case RuleFirstOf, RuleCount:
				if b.HighlightType != h.Type {
					continue
				}
				current = st.counts[h.Type]
				if current >= b.Requirement {
					newly = append(newly, e.award(st, b, now))
					continue
				}
			case RuleWeeklyMVP:
				current = len(st.recent)
				if current >= b.Requirement && e.strictlyHighest(playerID, current, now) {
					newly = append(newly, e.award(st, b, now))
					continue
				}
			}
			st.progress[b.ID] = Progress{Current: current, Required: b.Requirement}
		}
	}
	return newly
}

func (e *Engine) award(st *playerState, b Badge, now time.Time) EarnedBadge {
	eb := EarnedBadge{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Icon:        b.Icon,
		Rarity:      b.Rarity,
		EarnedAt:    now,
	}
	st.has[b.ID] = true
	st.earned = append(st.earned, eb)
	delete(st.progress, b.ID)
	return eb
}

// strictlyHighest reports whether weekly beats every other player's weekly
// count. Ties are not enough. Caller holds e.mu.
func (e *Engine) strictlyHighest(playerID string, weekly int, now time.Time) bool {
	for id, other := range e.players {
		if id == playerID {
			continue
		}
		if countRecent(other.recent, now) >= weekly {
			return false
		}
	}
	return true
}

// PlayerBadges returns a copy of the player's badge state. Unknown players get
// the empty shape.
func (e *Engine) PlayerBadges(playerID string) PlayerBadges {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := PlayerBadges{
		Earned:   []EarnedBadge{},
		Progress: make(map[BadgeID]Progress),
	}
	st, ok := e.players[playerID]
	if !ok {
		return out
	}
	out.Earned = append(out.Earned, st.earned...)
	for id, p := range st.progress {
		out.Progress[id] = p
	}
	out.Stats = Stats{
		TotalHighlights:  st.total,
		WeeklyHighlights: countRecent(st.recent, e.now()),
	}
	return out
}

// Nudges converts in-flight progress into recommendation input.
func (e *Engine) Nudges(playerID string) []trends.BadgeNudge {
	pb := e.PlayerBadges(playerID)
	nudges := make([]trends.BadgeNudge, 0, len(pb.Progress))
	for id, p := range pb.Progress {
		nudges = append(nudges, trends.BadgeNudge{
			ID:      string(id),
			Name:    AllBadges[id].Name,
			Percent: p.Percent(),
		})
	}
	return nudges
}

// Forget drops a player's badge state.
func (e *Engine) Forget(playerID string) {
	e.mu.Lock()
	delete(e.players, playerID)
	e.mu.Unlock()
}

func pruneRecent(ts []time.Time, now time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if now.Sub(t) <= weeklyWindow {
			kept = append(kept, t)
		}
	}
	return kept
}

func countRecent(ts []time.Time, now time.Time) int {
	n := 0
	for _, t := range ts {
		if now.Sub(t) <= weeklyWindow {
			n++
		}
	}
	return n
}
