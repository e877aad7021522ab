package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"paylinks/docs" // swagger docs
	"paylinks/internal/config"
	"paylinks/internal/db"
	"paylinks/internal/events"
	"paylinks/internal/handler"
	"paylinks/internal/logger"
	"paylinks/internal/metrics"
	"paylinks/internal/processor"
	"paylinks/internal/router"
	"paylinks/internal/service"
)

// @title Payment Links API
// @version 1.0
// @description Creates hosted checkout links at Mercado Pago and reconciles payment notifications.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a simulation token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.App.LogPath, cfg.App.Name, cfg.App.Debug)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DynamoDB tables are provisioned outside the service unless running locally.
	migrate := cfg.Store.Driver != config.DriverDynamoDB || cfg.Store.Local
	store, err := db.OpenStore(ctx, cfg.Store, migrate, zlog)
	if err != nil {
		zlog.Fatal("Store init failed", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	var proc processor.Processor
	if cfg.Processor.Enabled {
		mp := processor.NewMercadoPago(cfg.Processor.AccessToken, cfg.Processor.BaseURL, cfg.Processor.Timeout)
		if !mp.Configured() {
			zlog.Warn("MP_ACCESS_TOKEN is empty, link creation and processor webhooks will fail")
		}
		proc = mp
	} else {
		zlog.Warn("Payment processor integration disabled")
	}

	if cfg.Webhook.SimulationEnabled {
		if cfg.Webhook.SimulationSecret == "" {
			zlog.Warn("Webhook simulation is enabled without a secret, anyone can override link status")
		} else {
			zlog.Info("Webhook simulation enabled behind bearer token")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		zlog.Info("Publishing status events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zlog.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()

	// Initialize services
	opts := []service.Option{
		service.WithLogger(zlog),
		service.WithMetrics(appMetrics),
		service.WithPublisher(publisher),
		service.WithStoreTimeout(cfg.Store.Timeout),
	}
	linkService := service.NewLinkService(store.Links, proc, cfg.Processor, opts...)
	webhookService := service.NewWebhookService(store.Links, proc, cfg.Webhook, opts...)

	// Initialize handlers
	handlers := router.Handlers{
		Health:  newHealthHandler(cfg, proc),
		Links:   handler.NewLinkHandler(linkService),
		Webhook: handler.NewWebhookHandler(webhookService, cfg.Webhook.SimulationSecret != ""),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	// Register routes
	router.Register(e, zlog.Named("http"), handlers, router.Options{
		SimulationSecret: cfg.Webhook.SimulationSecret,
		Gatherer:         registry,
	})

	if cfg.App.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.App.SwaggerHost, "https://"), "http://")
	}
	zlog.Info("Swagger documentation available",
		zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	go func() {
		addr := ":" + cfg.App.ServerPort
		zlog.Info("Starting server",
			zap.String("addr", addr),
			zap.String("store_driver", cfg.Store.Driver),
			zap.String("store_mode", cfg.Store.StoreMode()),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server start failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newHealthHandler reports credentials from configuration alone, so a token
// shows as present even while the integration is disabled.
func newHealthHandler(cfg *config.Config, proc processor.Processor) *handler.HealthHandler {
	return handler.NewHealthHandler(
		cfg.Store.StoreMode(),
		proc != nil,
		cfg.Processor.AccessToken != "",
	)
}
