package events

import (
	"sync"
	"testing"
	"time"
)

func TestNewBus(t *testing.T) {
	bus := NewBus(0)
	defer bus.Close()
	if bus == nil {
		t.Fatal("NewBus() returned nil")
	}
	if cap(bus.events) != 10 {
		t.Errorf("default buffer = %d, want 10", cap(bus.events))
	}
}

func TestBus_PublishDelivers(t *testing.T) {
	bus := NewBus(10)
	got := make(chan Event, 1)
	bus.Subscribe(func(ev Event) { got <- ev })

	bus.Publish(Event{Kind: LevelUp, OwnerID: "u1", Level: 2})

	select {
	case ev := <-got:
		if ev.Kind != LevelUp || ev.OwnerID != "u1" || ev.Level != 2 {
			t.Errorf("received %+v", ev)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	bus.Close()
}

func TestBus_CloseDrainsQueue(t *testing.T) {
	bus := NewBus(10)
	var mu sync.Mutex
	n := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		n++
		mu.Unlock()
	})
	for i := 0; i < 5; i++ {
		bus.Publish(Event{Kind: XPAwarded})
	}
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	if n != 5 {
		t.Errorf("delivered %d, want 5", n)
	}
}

func TestBus_PublishNeverBlocks(t *testing.T) {
	bus := NewBus(1)
	release := make(chan struct{})
	bus.Subscribe(func(Event) { <-release })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			bus.Publish(Event{Kind: XPAwarded})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Publish blocked on a slow observer")
	}
	if bus.Dropped() == 0 {
		t.Error("expected some events to be dropped")
	}
	close(release)
	bus.Close()
}

func TestBus_ObserverPanicIsContained(t *testing.T) {
	bus := NewBus(10)
	got := make(chan struct{}, 1)
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(Event) { got <- struct{}{} })

	bus.Publish(Event{Kind: BadgeEarned})

	select {
	case <-got:
	case <-time.After(1 * time.Second):
		t.Fatal("second observer never ran")
	}
	bus.Close()
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus(1)
	bus.Close()
	bus.Publish(Event{Kind: XPAwarded})
	bus.Close()
}
