package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeTreeImported, Data: TreeEventData{Source: "a.ged"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: tree.imported") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"source":"a.ged"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishTreeEvent_UpdateThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishTreeEvent(KindImported, "a.ged")
	b.PublishTreeEvent(KindRemoved, "b.ged")
	b.PublishTreeEvent("renamed", "c.ged")

	time.Sleep(50 * time.Millisecond)
	updateCount := 0
	treeCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "event: tree.updated") {
				updateCount++
			} else {
				treeCount++
			}
		default:
			break loop
		}
	}

	if treeCount != 2 {
		t.Errorf("tree events = %d, want 2", treeCount)
	}
	if updateCount != 1 {
		t.Errorf("update events = %d, want 1 (throttled)", updateCount)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeTreeRemoved, Data: TreeEventData{Source: "x.ged"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: tree.removed") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// The client buffer holds 64 messages.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: TypeTreeRemoved, Data: TreeEventData{Source: "x.ged"}})
	b.PublishTreeEvent(KindImported, "x.ged")
}

func TestFormat(t *testing.T) {
	raw, err := Format(Event{Type: TypeTreeImported, Data: TreeEventData{Source: "tak/a.ged"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "event: tree.imported\ndata: {\"source\":\"tak/a.ged\"}\n\n"
	if string(raw) != want {
		t.Errorf("Format = %q, want %q", raw, want)
	}
}
