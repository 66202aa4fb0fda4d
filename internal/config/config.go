package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"aoe2-overlay/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	StatsAPIRoot    string
	RefDataRoot     string
	ServerPort      string
	LogLevel        string
	RefreshInterval time.Duration
	DefaultLanguage string
	DefaultGame     string

	// IndexPlatform selects which platform namespace of the reference
	// players file is indexed for alias lookups.
	IndexPlatform string

	// ArchiveDBPath enables the local match archive when non-empty.
	ArchiveDBPath string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		StatsAPIRoot:    getEnv("STATS_API_ROOT", "https://aoe2.net"),
		RefDataRoot:     getEnv("REFDATA_ROOT", "https://raw.githubusercontent.com/SiegeEngineers/aoc-reference-data/master/data"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL_SECONDS", constants.RefreshInterval),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		DefaultGame:     getEnv("DEFAULT_GAME", "aoe2de"),
		IndexPlatform:   getEnv("INDEX_PLATFORM", "rl"),
		ArchiveDBPath:   getEnv("ARCHIVE_DB_PATH", ""),
	}

	if cfg.StatsAPIRoot == "" {
		return nil, fmt.Errorf("STATS_API_ROOT must not be empty")
	}
	if cfg.RefDataRoot == "" {
		return nil, fmt.Errorf("REFDATA_ROOT must not be empty")
	}

	logger.Info().
		Str("stats_api_root", cfg.StatsAPIRoot).
		Str("refdata_root", cfg.RefDataRoot).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("refresh_interval", cfg.RefreshInterval).
		Str("default_language", cfg.DefaultLanguage).
		Str("default_game", cfg.DefaultGame).
		Str("index_platform", cfg.IndexPlatform).
		Bool("archive_enabled", cfg.ArchiveDBPath != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

var Module = fx.Provide(Load)
