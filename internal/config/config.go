package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const DefaultStartGGURL = "https://api.start.gg/gql/alpha"

type Config struct {
	StartGGToken string
	StartGGURL   string
	DBPath       string
	ServerPort   string
	LogLevel     string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		StartGGToken: getEnv("STARTGG_API_TOKEN", ""),
		StartGGURL:   getEnv("STARTGG_API_URL", DefaultStartGGURL),
		DBPath:       getEnv("DB_PATH", "elo.db"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("startgg_url", cfg.StartGGURL).
		Bool("startgg_token_set", cfg.StartGGToken != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
