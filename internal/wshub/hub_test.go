package wshub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"playerprogress/internal/events"
)

func TestRegisterAndNotify(t *testing.T) {
	h := NewHub(nil)

	c1 := &Client{OwnerID: "u1", Send: make(chan []byte, 16)}
	c2 := &Client{OwnerID: "u1", Send: make(chan []byte, 16)}
	c3 := &Client{OwnerID: "u2", Send: make(chan []byte, 16)}

	h.Register(c1)
	h.Register(c2)
	h.Register(c3)

	h.Notify(events.Event{Kind: events.LevelUp, OwnerID: "u1", Level: 4})

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.Send:
			var got ServerMessage
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "level_up" || got.Data.Level != 4 {
				t.Fatalf("unexpected message: %+v", got)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("owner client did not receive message")
		}
	}

	select {
	case <-c3.Send:
		t.Fatal("u2 should not receive u1's notification")
	default:
		// expected
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	h := NewHub(nil)
	c1 := &Client{OwnerID: "u1", Send: make(chan []byte, 16)}
	h.Register(c1)

	h.Unregister(c1)
	h.Unregister(c1)

	if _, ok := <-c1.Send; ok {
		t.Fatal("c1.Send should be closed")
	}
	if h.Count("u1") != 0 {
		t.Errorf("Count = %d, want 0", h.Count("u1"))
	}
}

func TestNotifyDropsWhenFull(t *testing.T) {
	h := NewHub(nil)
	c := &Client{OwnerID: "u1", Send: make(chan []byte, 1)}
	h.Register(c)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			h.Notify(events.Event{Kind: events.XPAwarded, OwnerID: "u1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Notify blocked on a full client")
	}
}

func TestServeHTTP_RequiresOwner(t *testing.T) {
	h := NewHub(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServeHTTP_PushesEvents(t *testing.T) {
	h := NewHub(nil)
	ts := httptest.NewServer(h)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?owner=u1"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for h.Count("u1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.Notify(events.Event{Kind: events.BadgeEarned, OwnerID: "u1", Ref: "WEEKLY_MVP"})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var got ServerMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "badge_earned" || got.Data.Ref != "WEEKLY_MVP" {
		t.Errorf("got %+v", got)
	}

	conn.Close(websocket.StatusNormalClosure, "")
	deadline = time.Now().Add(2 * time.Second)
	for h.Count("u1") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never unregistered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
