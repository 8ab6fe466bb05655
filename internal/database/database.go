package database

import (
	"context"
	"dodgetracker/internal/config"
	"dodgetracker/internal/constants"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func New(cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	logger.Info().Msg("connecting to database")

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	// The per-region fetch fan-out shares the pool with the cycle
	// transaction, so keep the limit comfortably above the region count.
	poolCfg.MaxConns = constants.DBMaxConns
	poolCfg.MinConns = constants.DBMinConns
	poolCfg.MaxConnLifetime = constants.DBConnMaxLifetime
	poolCfg.MaxConnIdleTime = constants.DBMaxIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		logger.Error().Err(err).Msg("database ping failed")
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := runMigrations(pool, logger); err != nil {
		pool.Close()
		logger.Error().Err(err).Msg("failed to run migrations")
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Msg("database connection established")
	return pool, nil
}

func runMigrations(pool *pgxpool.Pool, logger zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	logger.Info().Msg("migrations completed successfully")
	return nil
}
