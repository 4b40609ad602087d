// Command communitiesd runs the Communities notification service: it loads
// the template registry, consumes notification events from NATS and HTTP,
// and fans rendered payloads out to email, the in-app feed, mobile push, and
// live websocket clients.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	natsadapter "github.com/danielBingham/communities-sub006/internal/adapter/events/nats"
	"github.com/danielBingham/communities-sub006/internal/app"
	"github.com/danielBingham/communities-sub006/internal/config"
	"github.com/danielBingham/communities-sub006/internal/pkg/logger"
	transport "github.com/danielBingham/communities-sub006/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := initTracing(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Error("failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown()
	}

	c, err := app.NewContainer(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build container", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	c.Dispatcher.Start(ctx)

	if c.Nats != nil {
		subscriber := natsadapter.NewSubscriber(c.Nats, c.Dispatcher, c.Recipients, cfg.BaseURL, log)
		sub, err := subscriber.Start(cfg.NatsSubject)
		if err != nil {
			log.Error("failed to subscribe to notification events", "error", err)
			os.Exit(1)
		}
		defer func() { _ = sub.Unsubscribe() }()
	}

	handler := transport.NewHandler(c.Dispatcher, c.Store, c.Recipients, c.Hub, cfg.BaseURL, cfg.NotificationPageLimit, log)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           transport.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
}

func initTracing(ctx context.Context, endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	res, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("communities-notifications"),
		),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}, nil
}
