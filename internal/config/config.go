package config

import (
	"dodgetracker/internal/constants"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DatabaseURL    string
	RiotAPIKey     string
	LogLevel       string
	CycleTimeout   time.Duration
	RegionTimeout  time.Duration
	LolprosTimeout time.Duration
	DecayLPLoss    int
	ChunkSize      int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RiotAPIKey:     getEnv("RIOT_API_KEY", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CycleTimeout:   getEnvDuration("CYCLE_TIMEOUT", constants.CycleTimeout),
		RegionTimeout:  getEnvDuration("REGION_TIMEOUT", constants.RegionTimeout),
		LolprosTimeout: getEnvDuration("LOLPROS_TIMEOUT", constants.LolprosTimeout),
		DecayLPLoss:    getEnvInt("DECAY_LP_LOSS", constants.DecayLPLoss),
		ChunkSize:      getEnvInt("CHUNK_SIZE", constants.ChunkSize),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}

	logger.Info().
		Str("log_level", cfg.LogLevel).
		Dur("cycle_timeout", cfg.CycleTimeout).
		Dur("region_timeout", cfg.RegionTimeout).
		Int("decay_lp_loss", cfg.DecayLPLoss).
		Int("chunk_size", cfg.ChunkSize).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
