package trends

import (
	"sort"
	"time"
)

type Category string

const (
	CategoryOffense Category = "offense"
	CategoryDefense Category = "defense"
	CategoryImpact  Category = "impact"
)

// Categories lists the stat categories in reporting order.
var Categories = []Category{CategoryOffense, CategoryDefense, CategoryImpact}

var CategoryMetrics = map[Category][]string{
	CategoryOffense: {"points", "assists", "field_goals", "three_pointers"},
	CategoryDefense: {"rebounds", "blocks", "steals"},
	CategoryImpact:  {"clutch_plays", "momentum_shifts", "hot_streaks"},
}

const (
	StatusOK               = "ok"
	StatusInsufficientData = "Insufficient data"
)

// Metrics is a bag of named numeric stats. A metric that was not recorded is
// absent from the map, which is different from a recorded zero.
type Metrics map[string]float64

type StatSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Metrics   Metrics   `json:"metrics"`
}

type Highlight struct {
	Type      string         `json:"highlight_type"`
	Timestamp time.Time      `json:"timestamp"`
	Fields    map[string]any `json:"fields,omitempty"`
}

type TrendPoint struct {
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Profile is the per-player working set the analyzer reads from.
type Profile struct {
	PlayerID     string                    `json:"player_id"`
	Highlights   []Highlight               `json:"highlights"`
	StatsHistory []StatSnapshot            `json:"stats_history"`
	Badges       map[string]bool           `json:"badges"`
	Trends       map[Category][]TrendPoint `json:"trends"`
}

func NewProfile(playerID string) *Profile {
	return &Profile{
		PlayerID: playerID,
		Badges:   make(map[string]bool),
		Trends:   make(map[Category][]TrendPoint),
	}
}

// AddSnapshot inserts s keeping StatsHistory ordered by timestamp and records a
// trend point for every category that has at least one metric in s.
func (p *Profile) AddSnapshot(s StatSnapshot) {
	i := sort.Search(len(p.StatsHistory), func(i int) bool {
		return p.StatsHistory[i].Timestamp.After(s.Timestamp)
	})
	p.StatsHistory = append(p.StatsHistory, StatSnapshot{})
	copy(p.StatsHistory[i+1:], p.StatsHistory[i:])
	p.StatsHistory[i] = s

	for _, cat := range Categories {
		score, ok := CategoryScore(s.Metrics, cat)
		if !ok {
			continue
		}
		p.Trends[cat] = append(p.Trends[cat], TrendPoint{Score: score, Timestamp: s.Timestamp})
	}
}

func (p *Profile) AddHighlights(hs ...Highlight) {
	p.Highlights = append(p.Highlights, hs...)
}

// Trim drops highlights, snapshots and trend points older than cutoff, then
// keeps at most maxSnapshots of the newest snapshots and trend points.
func (p *Profile) Trim(cutoff time.Time, maxSnapshots int) {
	kept := p.Highlights[:0]
	for _, h := range p.Highlights {
		if !h.Timestamp.Before(cutoff) {
			kept = append(kept, h)
		}
	}
	p.Highlights = kept

	start := 0
	for start < len(p.StatsHistory) && p.StatsHistory[start].Timestamp.Before(cutoff) {
		start++
	}
	if n := len(p.StatsHistory) - start; maxSnapshots > 0 && n > maxSnapshots {
		start += n - maxSnapshots
	}
	p.StatsHistory = append([]StatSnapshot(nil), p.StatsHistory[start:]...)

	for cat, points := range p.Trends {
		s := 0
		for s < len(points) && points[s].Timestamp.Before(cutoff) {
			s++
		}
		if n := len(points) - s; maxSnapshots > 0 && n > maxSnapshots {
			s += n - maxSnapshots
		}
		if s == len(points) {
			delete(p.Trends, cat)
			continue
		}
		p.Trends[cat] = append([]TrendPoint(nil), points[s:]...)
	}
}

// Empty reports whether the profile holds no history at all.
func (p *Profile) Empty() bool {
	return len(p.Highlights) == 0 && len(p.StatsHistory) == 0 && len(p.Badges) == 0
}

// Clone returns a deep copy safe to read without holding the owner's lock.
func (p *Profile) Clone() *Profile {
	c := &Profile{
		PlayerID:     p.PlayerID,
		Highlights:   make([]Highlight, len(p.Highlights)),
		StatsHistory: make([]StatSnapshot, len(p.StatsHistory)),
		Badges:       make(map[string]bool, len(p.Badges)),
		Trends:       make(map[Category][]TrendPoint, len(p.Trends)),
	}
	copy(c.Highlights, p.Highlights)
	for i, s := range p.StatsHistory {
		m := make(Metrics, len(s.Metrics))
		for k, v := range s.Metrics {
			m[k] = v
		}
		c.StatsHistory[i] = StatSnapshot{Timestamp: s.Timestamp, Metrics: m}
	}
	for k, v := range p.Badges {
		c.Badges[k] = v
	}
	for cat, points := range p.Trends {
		c.Trends[cat] = append([]TrendPoint(nil), points...)
	}
	return c
}

// CategoryScore is the mean of the category's metrics present in m.
func CategoryScore(m Metrics, cat Category) (float64, bool) {
	var sum float64
	n := 0
	for _, name := range CategoryMetrics[cat] {
		if v, ok := m[name]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
