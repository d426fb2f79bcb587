package redisstore

import (
	"context"
	"fmt"

	"card-clicker/internal/models"

	"github.com/redis/go-redis/v9"
)

type Leaderboard struct {
	rdb redis.UniversalClient
}

func NewLeaderboard(rdb redis.UniversalClient) *Leaderboard {
	return &Leaderboard{rdb: rdb}
}

func (l *Leaderboard) PushScore(ctx context.Context, playerID string, score int) error {
	err := l.rdb.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(score), Member: playerID}).Err()
	if err != nil {
		return unavailable("push score", err)
	}
	return nil
}

func (l *Leaderboard) SetDisplayName(ctx context.Context, playerID, name string) error {
	if err := l.rdb.HSet(ctx, leaderboardNamesKey, playerID, name).Err(); err != nil {
		return unavailable("set display name", err)
	}
	return nil
}

func (l *Leaderboard) GetTopN(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 {
		return []models.LeaderboardEntry{}, nil
	}
	top, err := l.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, unavailable("top scores", err)
	}
	if len(top) == 0 {
		return []models.LeaderboardEntry{}, nil
	}

	ids := make([]string, len(top))
	for i, z := range top {
		ids[i] = fmt.Sprint(z.Member)
	}
	names, err := l.rdb.HMGet(ctx, leaderboardNamesKey, ids...).Result()
	if err != nil {
		return nil, unavailable("display names", err)
	}

	entries := make([]models.LeaderboardEntry, len(top))
	for i, z := range top {
		name, _ := names[i].(string)
		if name == "" {
			name = ids[i]
		}
		entries[i] = models.LeaderboardEntry{
			PlayerID:    ids[i],
			DisplayName: name,
			Score:       int(z.Score),
			Rank:        i + 1,
		}
	}
	return entries, nil
}
