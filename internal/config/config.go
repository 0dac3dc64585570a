package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string `env:"APP_PORT, default=8080"`
	DatabaseURL string `env:"DATABASE_URL, required"`
	RedisURL    string `env:"REDIS_URL, required"`

	// AdminEmail receives a notification for every created user.
	// Empty disables the admin notification.
	AdminEmail string `env:"ADMIN_EMAIL"`

	SMTP  SMTPConfig
	Cache CacheConfig
	Rate  RateConfig

	MailQueueSize int `env:"MAIL_QUEUE_SIZE, default=256"`
}

type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST"`
	Port     int           `env:"SMTP_PORT, default=587"`
	Username string        `env:"SMTP_USERNAME"`
	Password string        `env:"SMTP_PASSWORD"`
	From     string        `env:"SMTP_FROM, default=no-reply@userhub.local"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT, default=10s"`
}

type CacheConfig struct {
	Prefix  string        `env:"CACHE_REDIS_PREFIX, default=userhub:cache:"`
	ListTTL time.Duration `env:"USERS_LIST_CACHE_TTL, default=30s"`
}

type RateConfig struct {
	CreateLimit  int           `env:"CREATE_RATE_LIMIT, default=10"`
	CreateWindow time.Duration `env:"CREATE_RATE_WINDOW, default=1m"`
	Prefix       string        `env:"RATE_REDIS_PREFIX, default=userhub:ratelimit:"`
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
