package events

import (
	"context"
	"sync"

	"opsboard/internal/otel"
)

const subscriberBuffer = 256

// Hub fans changes out to per-org subscribers. Slow subscribers drop events
// rather than blocking the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Change]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Change]struct{})}
}

// Subscribe registers a new subscriber for one org's changes.
func (h *Hub) Subscribe(orgID string) chan Change {
	ch := make(chan Change, subscriberBuffer)
	h.mu.Lock()
	if h.subs[orgID] == nil {
		h.subs[orgID] = make(map[chan Change]struct{})
	}
	h.subs[orgID][ch] = struct{}{}
	h.mu.Unlock()
	otel.AddSSEConnection()
	return ch
}

// Unsubscribe removes and closes the subscriber channel. Safe to call twice.
func (h *Hub) Unsubscribe(orgID string, ch chan Change) {
	h.mu.Lock()
	if set, ok := h.subs[orgID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
			otel.RemoveSSEConnection()
		}
		if len(set) == 0 {
			delete(h.subs, orgID)
		}
	}
	h.mu.Unlock()
}

// Publish delivers the change to every subscriber of its org.
func (h *Hub) Publish(c Change) {
	otel.RecordChangeEvent(context.Background(), c.Table, string(c.Kind))
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[c.OrgID] {
		select {
		case ch <- c:
		default:
			// Drop if subscriber is too slow; prevents global backpressure.
			otel.RecordDroppedEvent(context.Background())
		}
	}
}
