package usecases

import (
	"context"

	"card-clicker/internal/models"
)

// DefaultLeaderboardSize is used when no positive size is requested.
const DefaultLeaderboardSize = 10

func (u *UseCases) Leaderboard(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	entries, err := u.repos.Leaderboard.GetTopN(ctx, n)
	if err != nil {
		return nil, unavailable("leaderboard", err)
	}
	return entries, nil
}
