package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// BaseURL is the public site root interpolated into notification links
	// as the "host" context field when producers omit it. Trailing slash
	// expected.
	BaseURL string `env:"BASE_URL" env-default:"https://communities.social/"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	RedisAddr   string `env:"REDIS_ADDR" env-default:"localhost:6379"`

	NatsURL     string `env:"NATS_URL" env-default:""`
	NatsSubject string `env:"NATS_SUBJECT" env-default:"communities.notifications"`

	SMTPFrom string `env:"SMTP_FROM" env-required:"true"`
	SMTPHost string `env:"SMTP_HOST" env-required:"true"`
	SMTPPass string `env:"SMTP_PASS" env-required:"true"`
	SMTPPort string `env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `env:"SMTP_USER" env-required:"true"`

	PushURL            string `env:"PUSH_URL" env-default:""`
	PushTimeoutSeconds int    `env:"PUSH_TIMEOUT_SECONDS" env-default:"10"`

	DispatchConcurrency   int `env:"DISPATCH_CONCURRENCY" env-default:"8"`
	RecipientRatePerMin   int `env:"RECIPIENT_RATE_PER_MINUTE" env-default:"30"`
	NotificationPageLimit int `env:"NOTIFICATION_PAGE_LIMIT" env-default:"20"`

	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:""`
}

func Load() (*Config, error) {
	var cfg Config

	// ReadEnv only: all deployment configuration arrives through the
	// environment.
	err := cleanenv.ReadEnv(&cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return &cfg, nil
}
