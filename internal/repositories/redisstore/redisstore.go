// Package redisstore keeps players, collections, identities and the
// leaderboard in redis. Values are JSON documents; the leaderboard is a
// sorted set scored by deck power.
package redisstore

import (
	"fmt"

	"card-clicker/internal/models"
)

const (
	identityKey         = "identity:custom"
	leaderboardKey      = "leaderboard:deck_power"
	leaderboardNamesKey = "leaderboard:names"
)

func playerKey(playerID string) string {
	return "player:" + playerID
}

func cardsKey(playerID string) string {
	return "cards:" + playerID
}

func unavailable(op string, err error) error {
	return fmt.Errorf("redis %s: %w: %w", op, models.ErrCollaboratorUnavailable, err)
}
