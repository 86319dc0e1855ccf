package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

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

	b.Publish(Event{Type: EventTaxonomyUpdated, Data: map[string]string{"family_id": "fam"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: taxonomy.updated") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"family_id":"fam"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

// drain collects the event types currently buffered on ch.
func drain(ch chan []byte) map[string]int {
	time.Sleep(50 * time.Millisecond)
	counts := make(map[string]int)
	for {
		select {
		case msg := <-ch:
			line, _, _ := strings.Cut(string(msg), "\n")
			counts[strings.TrimPrefix(line, "event: ")]++
		default:
			return counts
		}
	}
}

func TestCatalogEvents_SuggestionThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger suggestions.updated.
	b.TaxonomyChanged("fam", []string{"#sono"})
	// Second event immediately should NOT trigger another one.
	b.ScoresChanged("fam")

	counts := drain(ch)
	if counts[EventTaxonomyUpdated] != 1 {
		t.Errorf("taxonomy events = %d, want 1", counts[EventTaxonomyUpdated])
	}
	if counts[EventScoresUpdated] != 1 {
		t.Errorf("scores events = %d, want 1", counts[EventScoresUpdated])
	}
	if counts[EventSuggestionsUpdated] != 1 {
		t.Errorf("suggestion events = %d, want 1 (throttled)", counts[EventSuggestionsUpdated])
	}
}

func TestCatalogEvents_ThrottleIsPerFamily(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.ScoresChanged("a")
	b.ScoresChanged("b")
	b.ScoresChanged("a")

	counts := drain(ch)
	if counts[EventScoresUpdated] != 3 {
		t.Errorf("scores events = %d, want 3", counts[EventScoresUpdated])
	}
	if counts[EventSuggestionsUpdated] != 2 {
		t.Errorf("suggestion events = %d, want 2 (one per family)", counts[EventSuggestionsUpdated])
	}
}

func TestTaxonomyChangedPayload(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	official := []string{"#lazer", "#sono"}
	b.TaxonomyChanged("fam", official)
	official[0] = "#mutated"

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, `"official_tags":["#lazer","#sono"]`) {
			t.Errorf("unexpected payload %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSynonymsReloaded(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.SynonymsReloaded(3)
	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), `"aliases":3`) {
			t.Errorf("unexpected payload %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
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

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.ScoresChanged("fam")
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: scores.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
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

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
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

	// Should be safe no-op after close.
	b.Publish(Event{Type: EventScoresUpdated, Data: map[string]string{"family_id": "fam"}})
	b.TaxonomyChanged("fam", nil)
	b.ScoresChanged("fam")
}
