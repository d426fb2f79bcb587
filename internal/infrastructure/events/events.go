// Package events fans committed player events out to live subscribers.
package events

import (
	"context"
	"log/slog"
	"sync"

	"card-clicker/internal/models"
)

// subscriberBuffer bounds how far a slow subscriber may lag before events are dropped.
const subscriberBuffer = 32

// Hub is the in-process broker used when no redis is configured.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan models.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan models.Event]struct{})}
}

func (h *Hub) Publish(ctx context.Context, event models.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[event.PlayerID] {
		select {
		case ch <- event:
		default:
			slog.Warn("dropping event for slow subscriber", "player", event.PlayerID, "type", event.Type)
		}
	}
	return nil
}

// Subscribe returns a channel of the player's events. The channel is closed
// by cancel or when ctx ends.
func (h *Hub) Subscribe(ctx context.Context, playerID string) (<-chan models.Event, func(), error) {
	ch := make(chan models.Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[playerID] == nil {
		h.subs[playerID] = make(map[chan models.Event]struct{})
	}
	h.subs[playerID][ch] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[playerID], ch)
			if len(h.subs[playerID]) == 0 {
				delete(h.subs, playerID)
			}
			close(ch)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel, nil
}

// Subscribers reports how many live subscriptions a player has.
func (h *Hub) Subscribers(playerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[playerID])
}
