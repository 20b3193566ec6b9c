package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config is read once at startup and never mutated afterwards
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// MarketsFile optionally replaces the built-in market catalogue
	MarketsFile string `env:"MARKETS_FILE"`

	Server   ServerConfig
	Database DatabaseConfig
	Bridge   BridgeConfig
	Cache    CacheConfig
	Refresh  RefreshConfig
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"5250"`
	GinMode        string   `env:"GIN_MODE" envDefault:"release"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	// AdminToken gates POST /admin/refresh. Empty rejects every request.
	AdminToken string `env:"BRIDGE_ADMIN_TOKEN"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL" envDefault:"database/listings.db"`
}

// BridgeConfig holds the upstream listings API settings
type BridgeConfig struct {
	BaseURL          string `env:"BRIDGE_BASE_URL" envDefault:"https://api.bridgedataoutput.com"`
	Dataset          string `env:"BRIDGE_DATASET"`
	ServerToken      string `env:"BRIDGE_SERVER_TOKEN"`
	RequestTimeoutMs int    `env:"REQUEST_TIMEOUT_MS" envDefault:"10000"`
	MaxRetries       int    `env:"MAX_RETRIES" envDefault:"3"`
	UseMock          bool   `env:"BRIDGE_USE_MOCK" envDefault:"false"`
}

// RequestTimeout is the per-call upstream timeout
func (b BridgeConfig) RequestTimeout() time.Duration {
	if b.RequestTimeoutMs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.RequestTimeoutMs) * time.Millisecond
}

type CacheConfig struct {
	// TTLMs is reported to callers only; nothing is evicted on it
	TTLMs int64 `env:"CACHE_TTL_MS" envDefault:"900000"`
}

type RefreshConfig struct {
	Enabled      bool          `env:"REFRESH_ENABLED" envDefault:"false"`
	Interval     time.Duration `env:"REFRESH_INTERVAL" envDefault:"1h"`
	RunOnStartup bool          `env:"REFRESH_ON_STARTUP" envDefault:"false"`
	Limit        int           `env:"REFRESH_LIMIT" envDefault:"100"`
}

// LoadConfig loads optional .env files and parses the environment into a Config
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
