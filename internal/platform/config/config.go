package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"

	minTokenSecretLength = 32
)

type Config struct {
	AppEnv       string `env:"APP_ENV" default:"development"`
	Port         string `env:"PORT" default:"3000"`
	StoreBackend string `env:"STORE_BACKEND" default:"postgres"`
	DatabaseURL  string `env:"DATABASE_URL"`
	RedisURL     string `env:"REDIS_URL"`
	LogLevel     string `env:"LOG_LEVEL" default:"info"`
	LogFormat    string `env:"LOG_FORMAT" default:"text"`

	TokenSecret string        `env:"TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" default:"24h"`

	ImageDir       string `env:"IMAGE_DIR" default:"images"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" default:"5242880"` // 5 MiB

	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" default:"*"`

	// TrustedProxies is a comma-separated list of CIDRs whose X-Forwarded-For
	// is believed. Empty means the TCP peer address is the client address.
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	LoginRatePerSecond float64       `env:"LOGIN_RATE_PER_SECOND" default:"1"`
	LoginRateBurst     int           `env:"LOGIN_RATE_BURST" default:"5"`
	LoginFreeAttempts  int           `env:"LOGIN_FREE_ATTEMPTS" default:"3"`
	LoginMinWait       time.Duration `env:"LOGIN_MIN_WAIT" default:"5s"`
	LoginMaxWait       time.Duration `env:"LOGIN_MAX_WAIT" default:"10m"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	if len(cfg.TokenSecret) < minTokenSecretLength {
		return fmt.Errorf("TOKEN_SECRET must be at least %d characters", minTokenSecretLength)
	}
	if cfg.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}

	switch cfg.StoreBackend {
	case StoreBackendPostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBackendPostgres, StoreBackendMemory, cfg.StoreBackend)
	}

	if cfg.ImageDir == "" {
		return errors.New("IMAGE_DIR must not be empty")
	}
	if cfg.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}

	if _, err := cfg.TrustedProxyNets(); err != nil {
		return err
	}

	if cfg.LoginRatePerSecond <= 0 || cfg.LoginRateBurst < 1 {
		return errors.New("LOGIN_RATE_PER_SECOND and LOGIN_RATE_BURST must be positive")
	}
	if cfg.LoginFreeAttempts < 0 {
		return errors.New("LOGIN_FREE_ATTEMPTS must not be negative")
	}
	if cfg.LoginMinWait <= 0 || cfg.LoginMaxWait < cfg.LoginMinWait {
		return errors.New("LOGIN_MIN_WAIT must be positive and not exceed LOGIN_MAX_WAIT")
	}

	return nil
}

// IsProduction reports whether the service runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TrustedProxyNets parses TrustedProxies.
func (c *Config) TrustedProxyNets() ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, raw := range strings.Split(c.TrustedProxies, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		_, ipNet, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES contains invalid CIDR %q: %w", raw, err)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}
