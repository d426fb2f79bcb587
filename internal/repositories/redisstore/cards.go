package redisstore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"card-clicker/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cards stores one hash per player, instance id -> card JSON.
type Cards struct {
	rdb redis.UniversalClient
}

func NewCards(rdb redis.UniversalClient) *Cards {
	return &Cards{rdb: rdb}
}

// GetOwnedCards returns the collection in acquisition order.
func (c *Cards) GetOwnedCards(ctx context.Context, playerID string) ([]models.OwnedCard, error) {
	all, err := c.rdb.HGetAll(ctx, cardsKey(playerID)).Result()
	if err != nil {
		return nil, unavailable("get cards", err)
	}

	owned := make([]models.OwnedCard, 0, len(all))
	for instanceID, raw := range all {
		var card models.OwnedCard
		if err := json.Unmarshal([]byte(raw), &card); err != nil {
			return nil, fmt.Errorf("decode card %s: %w", instanceID, err)
		}
		owned = append(owned, card)
	}
	slices.SortFunc(owned, func(a, b models.OwnedCard) int {
		if d := a.AcquiredAt.Compare(b.AcquiredAt); d != 0 {
			return d
		}
		return cmp.Compare(a.InstanceID, b.InstanceID)
	})
	return owned, nil
}

func (c *Cards) AddCard(ctx context.Context, card models.OwnedCard) error {
	card.Template = models.CardTemplate{}
	raw, err := json.Marshal(card)
	if err != nil {
		return err
	}
	added, err := c.rdb.HSetNX(ctx, cardsKey(card.PlayerID), card.InstanceID, raw).Result()
	if err != nil {
		return unavailable("add card", err)
	}
	if !added {
		return fmt.Errorf("card %s: %w", card.InstanceID, models.ErrAlreadyExists)
	}
	return nil
}

func (c *Cards) DeleteCard(ctx context.Context, playerID, instanceID string) error {
	n, err := c.rdb.HDel(ctx, cardsKey(playerID), instanceID).Result()
	if err != nil {
		return unavailable("delete card", err)
	}
	if n == 0 {
		return fmt.Errorf("card %s: %w", instanceID, models.ErrNotFound)
	}
	return nil
}

func (c *Cards) SetLevel(ctx context.Context, playerID, instanceID string, level int) error {
	return c.update(ctx, playerID, instanceID, func(card *models.OwnedCard) { card.Level = level })
}

func (c *Cards) SetUnseen(ctx context.Context, playerID, instanceID string, unseen bool) error {
	return c.update(ctx, playerID, instanceID, func(card *models.OwnedCard) { card.Unseen = unseen })
}

// update rewrites one card under WATCH so a concurrent delete is not resurrected.
func (c *Cards) update(ctx context.Context, playerID, instanceID string, fn func(*models.OwnedCard)) error {
	key := cardsKey(playerID)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, instanceID).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("card %s: %w", instanceID, models.ErrNotFound)
		}
		if err != nil {
			return err
		}

		var card models.OwnedCard
		if err := json.Unmarshal(raw, &card); err != nil {
			return fmt.Errorf("decode card %s: %w", instanceID, err)
		}
		fn(&card)
		next, err := json.Marshal(card)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, instanceID, next)
			return nil
		})
		return err
	}, key)

	if err == nil || errors.Is(err, models.ErrNotFound) {
		return err
	}
	return unavailable("update card", err)
}
