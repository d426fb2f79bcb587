package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"card-clicker/internal/models"

	"github.com/redis/go-redis/v9"
)

// Redis publishes events on one pub/sub channel per player so that every
// API instance can stream them.
type Redis struct {
	rdb redis.UniversalClient
}

func NewRedis(rdb redis.UniversalClient) *Redis {
	return &Redis{rdb: rdb}
}

func channel(playerID string) string {
	return "events:" + playerID
}

func (r *Redis) Publish(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, channel(event.PlayerID), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w: %w", event.Type, models.ErrCollaboratorUnavailable, err)
	}
	return nil
}

// Subscribe waits for the subscription to be confirmed before returning,
// so no event published afterwards is missed.
func (r *Redis) Subscribe(ctx context.Context, playerID string) (<-chan models.Event, func(), error) {
	pubsub := r.rdb.Subscribe(ctx, channel(playerID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe: %w: %w", models.ErrCollaboratorUnavailable, err)
	}

	out := make(chan models.Event, subscriberBuffer)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event models.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Error("decoding event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- event:
				default:
					slog.Warn("dropping event for slow subscriber", "player", playerID, "type", event.Type)
				}
			}
		}
	}()
	return out, cancel, nil
}
