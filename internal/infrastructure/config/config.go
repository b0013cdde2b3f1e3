package config

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SessionKey is the hex-encoded 32-byte key for session token
	// encryption. Rotating it invalidates every outstanding session.
	SessionKey string `env:"SESSION_KEY"`

	// TokenTTL bounds session lifetime.
	TokenTTL time.Duration `env:"TOKEN_TTL, default=24h"`

	// ActivityWorkers sizes the chat activity dispatcher pool.
	ActivityWorkers int `env:"ACTIVITY_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=chat_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// SessionKeyBytes decodes SESSION_KEY into raw key material.
func (c *Config) SessionKeyBytes() ([]byte, error) {
	if c.SessionKey == "" {
		return nil, fmt.Errorf("config: SESSION_KEY is not set")
	}
	key, err := hex.DecodeString(c.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("config: SESSION_KEY is not valid hex: %w", err)
	}
	return key, nil
}
