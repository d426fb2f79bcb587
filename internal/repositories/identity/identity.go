package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Identity issues a stable player id per custom id.
type Identity struct {
	mu       sync.Mutex
	byCustom map[string]string
}

func New() *Identity {
	return &Identity{byCustom: make(map[string]string)}
}

func (i *Identity) Login(ctx context.Context, customID string) (string, bool, error) {
	customID = strings.TrimSpace(customID)
	if customID == "" {
		return "", false, errors.New("custom id is required")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if playerID, ok := i.byCustom[customID]; ok {
		return playerID, false, nil
	}
	playerID := uuid.NewString()
	i.byCustom[customID] = playerID
	return playerID, true, nil
}
