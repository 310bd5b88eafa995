package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session SessionConfig
	APIKey  APIKeyConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Usage   UsageConfig
	HTTP    HTTPConfig
}

// SessionConfig configures both credential channels. A positive LegacyTTL
// keeps issuing legacy sessions at login.
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET, required"`
	TTL          time.Duration `env:"SESSION_TTL,           default=24h"`
	CookieName   string        `env:"SESSION_COOKIE,        default=portal_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=true"`
	LegacyCookie string        `env:"LEGACY_SESSION_COOKIE, default=portal_sid"`
	LegacyTTL    time.Duration `env:"LEGACY_SESSION_TTL,    default=0s"`
}

type APIKeyConfig struct {
	Key        string `env:"INGEST_API_KEY, required"`
	AllowQuery bool   `env:"INGEST_API_KEY_ALLOW_QUERY, default=true"`
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI,           default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database    string        `env:"MONGO_DB,            default=client_portal"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT,       default=10s"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL_SIZE, default=100"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type UsageConfig struct {
	Workers  int           `env:"USAGE_WORKERS,   default=8"`
	DedupTTL time.Duration `env:"USAGE_DEDUP_TTL, default=24h"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,     default=15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,    default=15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT, default=20s"`
}

// IsDevelopment reports whether the service runs with developer defaults
// (pretty logs, swagger UI).
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
