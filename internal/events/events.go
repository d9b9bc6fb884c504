package events

import (
	"log"
	"sync"
	"time"
)

type Kind string

const (
	SessionTracked      Kind = "session_tracked"
	XPAwarded           Kind = "xp_awarded"
	LevelUp             Kind = "level_up"
	GoalCompleted       Kind = "goal_completed"
	AchievementUnlocked Kind = "achievement_unlocked"
	BadgeEarned         Kind = "badge_earned"
	StreakUpdated       Kind = "streak_updated"
)

// Event is a progress notification for one owner. Fields not relevant to the
// kind are left zero.
type Event struct {
	Kind    Kind      `json:"kind"`
	OwnerID string    `json:"owner_id"`
	XP      int       `json:"xp,omitempty"`
	Level   int       `json:"level,omitempty"`
	Streak  int       `json:"streak,omitempty"`
	Ref     string    `json:"ref,omitempty"`
	Title   string    `json:"title,omitempty"`
	Rarity  string    `json:"rarity,omitempty"`
	At      time.Time `json:"at"`
}

type Observer func(Event)

// Bus delivers events to observers on a single dispatch goroutine. Publish
// never blocks: when the buffer is full the event is dropped.
type Bus struct {
	events chan Event
	done   chan struct{}

	mu        sync.RWMutex
	observers []Observer
	closed    bool
	dropped   uint64
}

func NewBus(size int) *Bus {
	if size <= 0 {
		size = 10
	}
	b := &Bus{
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Bus) Subscribe(o Observer) {
	b.mu.Lock()
	b.observers = append(b.observers, o)
	b.mu.Unlock()
}

func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.events <- ev:
	default:
		b.dropped++
		log.Printf("[Events] Dropped %s for %s: buffer full", ev.Kind, ev.OwnerID)
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (b *Bus) Dropped() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Close stops accepting events and waits for queued ones to be delivered.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.events)
	b.mu.Unlock()
	<-b.done
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for ev := range b.events {
		b.mu.RLock()
		observers := append([]Observer(nil), b.observers...)
		b.mu.RUnlock()
		for _, o := range observers {
			notify(o, ev)
		}
	}
}

func notify(o Observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Events] Observer panic on %s: %v", ev.Kind, r)
		}
	}()
	o(ev)
}
