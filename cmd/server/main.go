package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-dispatch-service/internal/adapters/cache"
	"fleet-dispatch-service/internal/adapters/distance"
	"fleet-dispatch-service/internal/adapters/repositories"
	"fleet-dispatch-service/internal/api"
	"fleet-dispatch-service/internal/config"
	"fleet-dispatch-service/internal/platform/db"
	"fleet-dispatch-service/internal/platform/obs"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGINT,
}

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, Haversine) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	obs.SetupLogger(cfg.Environment, cfg.LogLevel)
	if envErr != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	optimizer, err := config.LoadOptimizerDefaults(cfg.OptimizerDefaultsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load optimizer defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	deps := api.Deps{
		Provider:       distance.NewHaversineProvider(),
		Cache:          cache.NoopResultCache{},
		CacheTTL:       cfg.ResultCacheTTL,
		Genetic:        optimizer.Genetic,
		Tabu:           optimizer.Tabu,
		DefaultDepot:   cfg.DefaultDepot,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		HealthChecks:   map[string]func(context.Context) error{},
	}

	// Storage is optional: without it, order-id lookups and route saving answer 503.
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()
		wireStorage(&deps, conn)
		log.Info().Msg("postgres storage enabled")
	} else {
		log.Warn().Msg("DATABASE_URL not set; order lookups and route saving are disabled")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("cannot ping redis")
		}

		deps.Cache = cache.NewRedisResultCache(client)
		deps.HealthChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.ResultCacheTTL).Msg("redis result cache enabled")
	}

	// Timeouts leave room for large genetic runs.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("graceful shutdown HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info().Msg("HTTP server is stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func wireStorage(deps *api.Deps, conn *sql.DB) {
	deps.Orders = repositories.NewPostgresOrderRepository(conn)
	deps.Restrictions = repositories.NewPostgresRestrictionRepository(conn)
	deps.Routes = repositories.NewPostgresRouteRepository(conn)
	deps.HealthChecks["postgres"] = conn.PingContext
}
