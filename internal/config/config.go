package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr             string
	DatabaseURL      string
	JWTSecret        string
	RabbitMQURL      string
	MigrateOnStart   bool
	CORSAllowOrigins string
	ShutdownTimeout  time.Duration
}

// Load reads configuration from environment variables. Call godotenv.Load
// first if a .env file should be honoured.
func Load() (Config, error) {
	cfg := Config{
		Addr:             getEnv("APP_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		MigrateOnStart:   true,
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		ShutdownTimeout:  10 * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is not set")
	}

	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.New("MIGRATE_ON_START must be a boolean")
		}
		cfg.MigrateOnStart = b
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.New("SHUTDOWN_TIMEOUT must be a duration")
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
