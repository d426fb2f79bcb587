package handlers

import (
	"context"

	"card-clicker/internal/models"
	"card-clicker/internal/usecases"

	"github.com/gin-gonic/gin"
)

// Subscriber streams the committed events of one player.
type Subscriber interface {
	Subscribe(ctx context.Context, playerID string) (<-chan models.Event, func(), error)
}

type Handlers struct {
	useCases        *usecases.UseCases
	events          Subscriber
	backend         string
	leaderboardSize int
}

func New(useCases *usecases.UseCases, events Subscriber, backend string, leaderboardSize int) *Handlers {
	return &Handlers{
		useCases:        useCases,
		events:          events,
		backend:         backend,
		leaderboardSize: leaderboardSize,
	}
}

// Router registers every API route
func (h *Handlers) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", h.getHealth)
	r.POST("/login", h.login)
	r.GET("/leaderboard", h.getLeaderboard)

	players := r.Group("/players/:id")
	{
		players.GET("", h.getPlayer)
		players.POST("/click", h.click)
		players.POST("/save", h.save)
		players.PUT("/autoclick", h.setAutoClick)
		players.DELETE("/session", h.closeSession)
		players.GET("/events", h.streamEvents)

		players.POST("/cards/seen", h.clearUnseen)
		players.POST("/cards/:instanceId/upgrade", h.upgrade)
		players.POST("/cards/:instanceId/disenchant", h.disenchant)

		players.GET("/deck", h.getDeck)
		players.PUT("/deck/slots/:slot", h.swapSlot)
		players.DELETE("/deck/slots", h.resetDeck)
	}

	return r
}
