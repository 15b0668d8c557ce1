// Package config loads service configuration from the environment so main
// stays lean. Rate limit policies and cache strategy tables are static code
// configuration owned by their modules; only deployment-level knobs live here.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr              string
	LogLevel          slog.Level
	JWTSigningKey     string
	RateLimitDisabled bool
	CounterStore      string // "memory" or "redis"
	CacheCompression  bool
	ShutdownTimeout   time.Duration
	Redis             RedisConfig
}

// RedisConfig captures connection settings for the cache backing store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("STREAMGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	counterStore := os.Getenv("RATE_LIMIT_STORE")
	if counterStore != "redis" {
		counterStore = "memory"
	}

	return Server{
		Addr:              addr,
		LogLevel:          parseLogLevel(os.Getenv("LOG_LEVEL")),
		JWTSigningKey:     jwtSigningKey,
		RateLimitDisabled: os.Getenv("RATE_LIMIT_DISABLED") == "true",
		CounterStore:      counterStore,
		CacheCompression:  os.Getenv("CACHE_COMPRESSION") == "true",
		ShutdownTimeout:   10 * time.Second,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
