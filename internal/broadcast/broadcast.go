package broadcast

import (
	"encoding/json"
	"log"
	"sync"

	"playerprogress/internal/events"
)

type Message struct {
	Event string
	Msg   string
}

// Broadcaster fans progress events out to per-owner subscriber channels.
type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[string]map[chan Message]bool
}

// NewBroadcaster subscribes to bus when it is non-nil.
func NewBroadcaster(bus *events.Bus) *Broadcaster {
	b := &Broadcaster{
		Clients: make(map[string]map[chan Message]bool),
	}
	if bus != nil {
		bus.Subscribe(b.Notify)
	}
	return b
}

func (b *Broadcaster) Subscribe(ownerID string) chan Message {
	ch := make(chan Message, 10)
	b.Mu.Lock()
	if b.Clients[ownerID] == nil {
		b.Clients[ownerID] = make(map[chan Message]bool)
	}
	b.Clients[ownerID][ch] = true
	b.Mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ownerID string, ch chan Message) {
	b.Mu.Lock()
	if set, ok := b.Clients[ownerID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(b.Clients, ownerID)
		}
	}
	b.Mu.Unlock()
	close(ch)
}

func (b *Broadcaster) Notify(ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Broadcast] Marshal error: %v\n", err)
		return
	}
	b.Broadcast(ev.OwnerID, string(ev.Kind), string(data))
}

func (b *Broadcaster) Broadcast(ownerID, event, message string) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients[ownerID] {
		select {
		case ch <- Message{Event: event, Msg: message}:
		default:
			// skip clients with full data channels
		}
	}
}

func (b *Broadcaster) Count(ownerID string) int {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	return len(b.Clients[ownerID])
}
