package repositories

import (
	"context"
	"database/sql"

	"card-clicker/internal/models"
	"card-clicker/internal/repositories/cards"
	"card-clicker/internal/repositories/catalog"
	"card-clicker/internal/repositories/identity"
	"card-clicker/internal/repositories/leaderboard"
	"card-clicker/internal/repositories/players"
	"card-clicker/internal/repositories/postgres"
	"card-clicker/internal/repositories/redisstore"

	"github.com/redis/go-redis/v9"
)

type Repositories struct {
	Identity interface {
		Login(ctx context.Context, customID string) (playerID string, created bool, err error)
	}
	Player interface {
		GetPlayer(ctx context.Context, playerID string) (models.PlayerState, bool, error)
		CreatePlayer(ctx context.Context, player models.PlayerState) error
		UpdatePlayer(ctx context.Context, player models.PlayerState) error
	}
	// Cards are stored without their joined templates
	Card interface {
		GetOwnedCards(ctx context.Context, playerID string) ([]models.OwnedCard, error)
		AddCard(ctx context.Context, card models.OwnedCard) error
		DeleteCard(ctx context.Context, playerID, instanceID string) error
		SetLevel(ctx context.Context, playerID, instanceID string, level int) error
		SetUnseen(ctx context.Context, playerID, instanceID string, unseen bool) error
	}
	Catalog interface {
		GetRandomCardID(ctx context.Context) (string, error)
		GetTemplate(ctx context.Context, cardID string) (models.CardTemplate, bool, error)
	}
	Leaderboard interface {
		PushScore(ctx context.Context, playerID string, score int) error
		SetDisplayName(ctx context.Context, playerID, name string) error
		GetTopN(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
	}
}

// New keeps everything in process memory.
func New(cat *catalog.Catalog) *Repositories {
	return &Repositories{
		Identity:    identity.New(),
		Player:      players.New(),
		Card:        cards.New(),
		Catalog:     cat,
		Leaderboard: leaderboard.New(),
	}
}

// NewRedis stores players, cards, identities and the leaderboard in redis.
func NewRedis(rdb redis.UniversalClient, cat *catalog.Catalog) *Repositories {
	return &Repositories{
		Identity:    redisstore.NewIdentity(rdb),
		Player:      redisstore.NewPlayers(rdb),
		Card:        redisstore.NewCards(rdb),
		Catalog:     cat,
		Leaderboard: redisstore.NewLeaderboard(rdb),
	}
}

// NewPostgres stores players, cards, identities and the leaderboard in postgres.
func NewPostgres(db *sql.DB, cat *catalog.Catalog) *Repositories {
	return &Repositories{
		Identity:    postgres.NewIdentity(db),
		Player:      postgres.NewPlayers(db),
		Card:        postgres.NewCards(db),
		Catalog:     cat,
		Leaderboard: postgres.NewLeaderboard(db),
	}
}
