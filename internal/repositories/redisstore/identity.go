package redisstore

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Identity struct {
	rdb redis.UniversalClient
}

func NewIdentity(rdb redis.UniversalClient) *Identity {
	return &Identity{rdb: rdb}
}

func (i *Identity) Login(ctx context.Context, customID string) (string, bool, error) {
	customID = strings.TrimSpace(customID)
	if customID == "" {
		return "", false, errors.New("custom id is required")
	}

	playerID, err := i.rdb.HGet(ctx, identityKey, customID).Result()
	if err == nil {
		return playerID, false, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", false, unavailable("login", err)
	}

	// HSETNX settles a race between two first logins on the same custom id
	candidate := uuid.NewString()
	created, err := i.rdb.HSetNX(ctx, identityKey, customID, candidate).Result()
	if err != nil {
		return "", false, unavailable("login", err)
	}
	if created {
		return candidate, true, nil
	}
	playerID, err = i.rdb.HGet(ctx, identityKey, customID).Result()
	if err != nil {
		return "", false, unavailable("login", err)
	}
	return playerID, false, nil
}
