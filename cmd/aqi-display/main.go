package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/aqi-display/internal/api/http"
	"github.com/i474232898/aqi-display/internal/aqi"
	"github.com/i474232898/aqi-display/internal/aqi/providers"
	"github.com/i474232898/aqi-display/internal/config"
	"github.com/i474232898/aqi-display/internal/logging"
	"github.com/i474232898/aqi-display/internal/mqtt"
	"github.com/i474232898/aqi-display/internal/presenter"
	"github.com/i474232898/aqi-display/internal/relay"
	"github.com/i474232898/aqi-display/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound feed calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	fetcher := providers.NewFetcher(httpClient, cfg.Retry, cfg.Headers, log)
	rel := relay.New(fetcher, relay.BreakerConfig{
		Threshold: cfg.BreakerThreshold,
		Cooldown:  cfg.BreakerCooldown,
	}, log)

	// Optional broker output. A nil interface keeps publishing off.
	var publisher aqi.Publisher
	if cfg.MQTTEnabled() {
		pub := mqtt.NewPublisher(cfg, log)
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := pub.Connect(connectCtx); err != nil {
			log.Warn("mqtt not connected yet; retrying in background", "error", err)
		}
		cancel()
		defer pub.Disconnect()
		publisher = pub
	}

	widget, err := presenter.New(presenter.Options{
		Token:                   cfg.Token,
		City:                    cfg.City,
		IAQI:                    cfg.IAQI,
		UpdateInterval:          cfg.UpdateInterval,
		OverrideCityDisplayName: cfg.OverrideCityDisplayName,
		InitialLoadDelay:        cfg.InitialLoadDelay,
		Debug:                   cfg.Debug,
		APIBase:                 cfg.APIBase,
		ResponseTimeout:         cfg.ResponseTimeout,
		Location:                cfg.Location,
		Partition:               cfg.Partition,
	}, rel, store.NewMemoryStore(), publisher, log)
	if err != nil {
		log.Error("failed to create presenter", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := rel.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("relay stopped", "error", err)
		}
	}()
	go func() {
		if err := widget.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("presenter stopped", "error", err)
		}
	}()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "aqi-display",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "aqi-display",
			"city":    widget.City(),
		})
	})

	httpapi.RegisterRoutes(app, widget)

	go func() {
		log.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
