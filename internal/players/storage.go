package players

import (
	"sort"
	"sync"
	"time"

	"playerprogress/internal/trends"
)

type entry struct {
	mu      sync.Mutex
	profile *trends.Profile
	removed bool
}

// Store holds one trends.Profile per player. Each profile has its own lock so
// writers for different players never contend.
type Store struct {
	mu           sync.Mutex
	players      map[string]*entry
	retention    time.Duration
	maxSnapshots int
	now          func() time.Time
}

func NewStore(retention time.Duration, maxSnapshots int) *Store {
	return &Store{
		players:      make(map[string]*entry),
		retention:    retention,
		maxSnapshots: maxSnapshots,
		now:          time.Now,
	}
}

func (s *Store) entry(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.players[id]
	if !ok {
		e = &entry{profile: trends.NewProfile(id)}
		s.players[id] = e
	}
	return e
}

// Update runs fn against the player's profile under its lock, creating the
// profile if needed, then applies retention.
func (s *Store) Update(id string, fn func(p *trends.Profile)) {
	for {
		e := s.entry(id)
		e.mu.Lock()
		if e.removed {
			// lost a race with Sweep; the entry is gone from the map
			e.mu.Unlock()
			continue
		}
		fn(e.profile)
		e.profile.Trim(s.cutoff(), s.maxSnapshots)
		e.mu.Unlock()
		return
	}
}

// View returns a deep copy of the player's profile.
func (s *Store) View(id string) (*trends.Profile, bool) {
	s.mu.Lock()
	e, ok := s.players[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, false
	}
	return e.profile.Clone(), true
}

func (s *Store) GetList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	e, ok := s.players[id]
	delete(s.players, id)
	s.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
	}
}

// Sweep trims every profile and evicts the ones left empty. It returns the
// evicted player ids.
func (s *Store) Sweep() []string {
	cutoff := s.cutoff()
	var evicted []string
	for _, id := range s.GetList() {
		s.mu.Lock()
		e, ok := s.players[id]
		s.mu.Unlock()
		if !ok {
			continue
		}

		e.mu.Lock()
		e.profile.Trim(cutoff, s.maxSnapshots)
		if e.profile.Empty() {
			s.mu.Lock()
			if s.players[id] == e {
				delete(s.players, id)
			}
			s.mu.Unlock()
			e.removed = true
			evicted = append(evicted, id)
		}
		e.mu.Unlock()
	}
	return evicted
}

func (s *Store) cutoff() time.Time {
	if s.retention <= 0 {
		return time.Time{}
	}
	return s.now().Add(-s.retention)
}
