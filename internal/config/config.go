// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the process configuration, populated from environment
// variables. A .env file is loaded by the godotenv autoload import in main.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// TMDBAPIKey authorizes catalog requests. When empty the provider
	// serves the built-in fallback catalog only.
	TMDBAPIKey string `envconfig:"TMDB_API_KEY"`

	// RedisAddr enables the round-history publisher when set.
	RedisAddr        string `envconfig:"REDIS_ADDR"`
	RedisDB          int    `envconfig:"REDIS_DB" default:"0"`
	HistoryQueueName string `envconfig:"HISTORY_QUEUE_NAME" default:"reelparty_rounds"`

	// TokenExpireTime bounds the ephemeral session token; zero means no
	// expiry claim is set.
	TokenExpireTime time.Duration `envconfig:"TOKEN_EXPIRE_TIME" default:"72h"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}
