package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"card-clicker/internal/game"
	"card-clicker/internal/models"
	"card-clicker/internal/repositories"
)

// DefaultAutoClickInterval is the auto-click cadence.
const DefaultAutoClickInterval = 5 * time.Second

type Options struct {
	ClicksPerCard     int
	AutoClickInterval time.Duration
	Rand              game.Roller
	Clock             game.Clock
}

type UseCases struct {
	repos     *repositories.Repositories
	events    Publisher
	engine    *game.Engine
	clock     game.Clock
	autoClick time.Duration

	sessionsMU sync.Mutex
	sessions   map[string]*session
	closed     bool
}

func New(repos *repositories.Repositories, events Publisher, opts Options) *UseCases {
	if opts.Rand == nil {
		opts.Rand = game.NewRand(0)
	}
	if opts.Clock == nil {
		opts.Clock = game.RealClock{}
	}
	if opts.AutoClickInterval == 0 {
		opts.AutoClickInterval = DefaultAutoClickInterval
	}
	return &UseCases{
		repos:     repos,
		events:    events,
		engine:    game.NewEngine(repos.Catalog, opts.Rand, opts.Clock, opts.ClicksPerCard),
		clock:     opts.Clock,
		autoClick: opts.AutoClickInterval,
		sessions:  make(map[string]*session),
	}
}

// Threshold is the number of clicks that grants a card.
func (u *UseCases) Threshold() int {
	return u.engine.ClicksPerCard
}

func (u *UseCases) publish(ctx context.Context, events ...models.Event) {
	if u.events == nil {
		return
	}
	for _, e := range events {
		if err := u.events.Publish(ctx, e); err != nil {
			slog.Error("failed to publish event", "player", e.PlayerID, "type", e.Type, "error", err)
		}
	}
}

// unavailable marks a store failure as a collaborator error unless it already is one.
func unavailable(op string, err error) error {
	if errors.Is(err, models.ErrCollaboratorUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrCollaboratorUnavailable, err)
}
