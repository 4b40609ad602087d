package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	redisadapter "github.com/danielBingham/communities-sub006/internal/adapter/cache/redis"
	"github.com/danielBingham/communities-sub006/internal/adapter/email"
	natsadapter "github.com/danielBingham/communities-sub006/internal/adapter/events/nats"
	"github.com/danielBingham/communities-sub006/internal/adapter/push"
	"github.com/danielBingham/communities-sub006/internal/adapter/realtime"
	"github.com/danielBingham/communities-sub006/internal/adapter/repository/postgres"
	"github.com/danielBingham/communities-sub006/internal/config"
	"github.com/danielBingham/communities-sub006/internal/notification"
	"github.com/danielBingham/communities-sub006/internal/port"
)

// Container wires configuration into the registry, dispatcher, delivery
// adapters, and the clients they share. Built once in main and torn down
// with Close.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	DB    *pgxpool.Pool
	Redis *goredis.Client
	Nats  *natsadapter.Client

	Registry   *notification.Registry
	Dispatcher *notification.Dispatcher
	Store      port.NotificationStore
	Recipients port.RecipientRepository
	Hub        *realtime.Hub
}

func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.DB = pool

	c.Redis = redisadapter.NewClient(cfg.RedisAddr)

	registry := notification.NewRegistry()
	if err := registry.Load(notification.Definitions(), logger); err != nil {
		c.Close()
		return nil, fmt.Errorf("load notification definitions: %w", err)
	}
	c.Registry = registry
	logger.Info("notification registry loaded", "definitions", registry.Len())

	presence := realtime.NewPresence(c.Redis, time.Minute)
	c.Hub = realtime.NewHub(logger, presence)

	c.Store = postgres.NewNotificationRepository(pool)
	c.Recipients = postgres.NewRecipientRepository(pool)

	sinks := notification.Sinks{
		Email:    email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom),
		Store:    c.Store,
		Realtime: c.Hub,
		Mutes:    redisadapter.NewMuteStore(c.Redis),
	}
	if cfg.PushURL != "" {
		sinks.Push = push.NewClient(cfg.PushURL, time.Duration(cfg.PushTimeoutSeconds)*time.Second)
	}

	c.Dispatcher = notification.NewDispatcher(registry, sinks, notification.DispatcherOptions{
		MaxInFlight:        cfg.DispatchConcurrency,
		RecipientPerMinute: cfg.RecipientRatePerMin,
	}, logger)

	if cfg.NatsURL != "" {
		nc, err := natsadapter.NewClient(cfg.NatsURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		c.Nats = nc
	}

	return c, nil
}

// Close releases every client the container owns.
func (c *Container) Close() {
	if c.Nats != nil {
		c.Nats.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
