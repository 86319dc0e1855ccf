// Package sse implements a Server-Sent Events broker for catalog updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync/atomic"
	"time"
)

// Event types.
const (
	EventTaxonomyUpdated    = "taxonomy.updated"
	EventScoresUpdated      = "scores.updated"
	EventSuggestionsUpdated = "suggestions.updated"
	EventSynonymsReloaded   = "synonyms.reloaded"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type catalogEventReq struct {
	kind     string
	familyID string
	official []string
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + per-family suggestion throttle timestamps). Public methods
// communicate with this loop through channels, so no mutexes are required.
type Broker struct {
	suggestMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	catalogCh     chan catalogEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. suggestions.updated is emitted at most
// once per suggestThrottle for each family.
func NewBroker(suggestThrottle time.Duration) *Broker {
	if suggestThrottle <= 0 {
		suggestThrottle = 2 * time.Second
	}

	b := &Broker{
		suggestMin:    suggestThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		catalogCh:     make(chan catalogEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	lastSuggest := make(map[string]time.Time)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.catalogCh:
			switch req.kind {
			case EventTaxonomyUpdated:
				broadcast(Event{Type: EventTaxonomyUpdated, Data: map[string]any{
					"family_id":     req.familyID,
					"official_tags": req.official,
				}})
			case EventScoresUpdated:
				broadcast(Event{Type: EventScoresUpdated, Data: map[string]string{"family_id": req.familyID}})
			}

			// Both kinds change the suggestion list.
			now := time.Now()
			if now.Sub(lastSuggest[req.familyID]) >= b.suggestMin {
				lastSuggest[req.familyID] = now
				broadcast(Event{Type: EventSuggestionsUpdated, Data: map[string]string{"family_id": req.familyID}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

func (b *Broker) publishCatalog(req catalogEventReq) {
	if b.closed.Load() {
		return
	}
	select {
	case b.catalogCh <- req:
	case <-b.stopped:
	}
}

// TaxonomyChanged publishes taxonomy.updated and a throttled
// suggestions.updated for the family.
func (b *Broker) TaxonomyChanged(familyID string, official []string) {
	b.publishCatalog(catalogEventReq{kind: EventTaxonomyUpdated, familyID: familyID, official: slices.Clone(official)})
}

// ScoresChanged publishes scores.updated and a throttled
// suggestions.updated for the family.
func (b *Broker) ScoresChanged(familyID string) {
	b.publishCatalog(catalogEventReq{kind: EventScoresUpdated, familyID: familyID})
}

// SynonymsReloaded publishes synonyms.reloaded.
func (b *Broker) SynonymsReloaded(aliases int) {
	b.Publish(Event{Type: EventSynonymsReloaded, Data: map[string]int{"aliases": aliases}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
