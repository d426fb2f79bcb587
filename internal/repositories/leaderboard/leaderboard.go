package leaderboard

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"card-clicker/internal/models"
)

type Leaderboard struct {
	mu     sync.RWMutex
	scores map[string]int
	names  map[string]string
}

func New() *Leaderboard {
	return &Leaderboard{
		scores: make(map[string]int),
		names:  make(map[string]string),
	}
}

func (l *Leaderboard) PushScore(ctx context.Context, playerID string, score int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores[playerID] = score
	return nil
}

func (l *Leaderboard) SetDisplayName(ctx context.Context, playerID, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names[playerID] = name
	return nil
}

// GetTopN ranks by score descending, ties by player id. Ranks start at 1.
func (l *Leaderboard) GetTopN(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]models.LeaderboardEntry, 0, len(l.scores))
	for id, score := range l.scores {
		name := l.names[id]
		if name == "" {
			name = id
		}
		entries = append(entries, models.LeaderboardEntry{PlayerID: id, DisplayName: name, Score: score})
	}
	slices.SortFunc(entries, func(a, b models.LeaderboardEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})

	if n >= 0 && n < len(entries) {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
