package usecases

import (
	"context"

	"card-clicker/internal/models"
)

// PORTS define interfaces between the usecases and the event infrastructure
type Publisher interface {
	// Fans a committed event out to the player's live subscribers
	Publish(ctx context.Context, event models.Event) error
}
