package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"fleet-dispatch-service/internal/adapters/repositories"
	"fleet-dispatch-service/internal/config"
	"fleet-dispatch-service/internal/platform/db"
	"fleet-dispatch-service/internal/platform/obs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

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

	seedPath := flag.String("seed", cfg.SeedPath, "path to the JSON seed file")
	schemaOnly := flag.Bool("schema-only", false, "create the schema without seeding")
	flag.Parse()

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	if err := initAndSeed(ctx, conn, *seedPath, *schemaOnly); err != nil {
		log.Fatal().Err(err).Msg("dbtool failed")
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, schemaOnly bool) error {
	log.Info().Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Info().Msg("schema ready")

	if schemaOnly {
		return nil
	}

	log.Info().Str("path", seedPath).Msg("seeding database")
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Info().Msg("seeding complete")

	return nil
}
