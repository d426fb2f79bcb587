package postgres

import (
	"context"
	"database/sql"

	"card-clicker/internal/models"
)

type Leaderboard struct {
	db *sql.DB
}

func NewLeaderboard(db *sql.DB) *Leaderboard {
	return &Leaderboard{db: db}
}

func (l *Leaderboard) PushScore(ctx context.Context, playerID string, score int) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO leaderboard (player_id, score) VALUES ($1, $2)
		ON CONFLICT (player_id) DO UPDATE SET score = EXCLUDED.score`, playerID, score)
	if err != nil {
		return unavailable("push score", err)
	}
	return nil
}

func (l *Leaderboard) SetDisplayName(ctx context.Context, playerID, name string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO leaderboard (player_id, display_name) VALUES ($1, $2)
		ON CONFLICT (player_id) DO UPDATE SET display_name = EXCLUDED.display_name`, playerID, name)
	if err != nil {
		return unavailable("set display name", err)
	}
	return nil
}

func (l *Leaderboard) GetTopN(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT player_id, display_name, score FROM leaderboard
		ORDER BY score DESC, player_id LIMIT $1`, max(n, 0))
	if err != nil {
		return nil, unavailable("top scores", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, max(n, 0))
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.DisplayName, &e.Score); err != nil {
			return nil, unavailable("scan score", err)
		}
		if e.DisplayName == "" {
			e.DisplayName = e.PlayerID
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("top scores", err)
	}
	return entries, nil
}
