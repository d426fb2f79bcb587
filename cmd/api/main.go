package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"card-clicker/internal/config"
	"card-clicker/internal/game"
	handlers "card-clicker/internal/handlers/http"
	"card-clicker/internal/infrastructure/events"
	"card-clicker/internal/models"
	"card-clicker/internal/repositories"
	"card-clicker/internal/repositories/catalog"
	"card-clicker/internal/repositories/postgres"
	"card-clicker/internal/usecases"
	"card-clicker/internal/utils"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

// broker publishes and delivers player events
type broker interface {
	Publish(ctx context.Context, event models.Event) error
	Subscribe(ctx context.Context, playerID string) (<-chan models.Event, func(), error)
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	// Load the card catalog
	templates, err := utils.New().CatalogDB.LoadCardsFromFile(cfg.CatalogFile)
	if err != nil {
		return err
	}
	// One generator for both the catalog and the engine
	rnd := game.NewRand(cfg.RNGSeed)
	cat := catalog.New(rnd, cfg.CatalogIDSpace, templates...)
	slog.Info("catalog loaded", "file", cfg.CatalogFile, "cards", cat.Length())

	// Wire the dependencies
	repos, broker, closeStore, err := openBackend(ctx, cfg, cat)
	if err != nil {
		return err
	}
	defer closeStore()

	useCases := usecases.New(repos, broker, usecases.Options{
		ClicksPerCard:     cfg.ClicksPerCard,
		AutoClickInterval: cfg.AutoClickInterval,
		Rand:              rnd,
	})
	h := handlers.New(useCases, broker, cfg.Backend, cfg.LeaderboardSize)

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		color.Green("Card Clicker API listening on :%s (%s backend)", cfg.APIPort, cfg.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	color.Yellow("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop taking requests before saving the open sessions
	err = server.Shutdown(shutdownCtx)
	return errors.Join(err, useCases.Shutdown(shutdownCtx))
}

func openBackend(ctx context.Context, cfg config.Config, cat *catalog.Catalog) (*repositories.Repositories, broker, func(), error) {
	switch cfg.Backend {
	case config.BackendRedis:
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: cfg.RedisAddrs})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, nil, fmt.Errorf("connecting to redis %v: %w", cfg.RedisAddrs, err)
		}
		slog.Info("connected to redis", "addrs", cfg.RedisAddrs)
		return repositories.NewRedis(rdb, cat), events.NewRedis(rdb), func() { rdb.Close() }, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		slog.Info("connected to postgres")
		return repositories.NewPostgres(db, cat), events.NewHub(), closeDB(db), nil

	default:
		return repositories.New(cat), events.NewHub(), func() {}, nil
	}
}

func closeDB(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			slog.Error("closing postgres", "error", err)
		}
	}
}
