package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailor-sms-dispatch/internal/adapters/audit/postgres"
	"tailor-sms-dispatch/internal/adapters/audit/rabbitmq"
	"tailor-sms-dispatch/internal/adapters/bridge/httpbridge"
	"tailor-sms-dispatch/internal/config"
	"tailor-sms-dispatch/internal/dispatch"
	"tailor-sms-dispatch/internal/middleware"
	"tailor-sms-dispatch/internal/permissions"
	"tailor-sms-dispatch/internal/simdetect"
	"tailor-sms-dispatch/internal/transport"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	if err := run(log); err != nil {
		log.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	conf := config.FromEnv()

	// ── Adapters ─────────────────────────────────────────────────────────────
	bridge := httpbridge.New(conf.BridgeURL)

	auditSink, err := rabbitmq.NewPublisher(conf.AMQPURL)
	if err != nil {
		return errors.New("failed to connect to rabbitmq: " + err.Error())
	}
	defer auditSink.Close()

	auditRepo, err := postgres.New(conf.DatabaseURL)
	if err != nil {
		return errors.New("failed to connect to postgres: " + err.Error())
	}
	defer auditRepo.Close()

	// ── Dispatch pipeline ────────────────────────────────────────────────────
	gate := permissions.NewGate(bridge, log)
	detector := simdetect.New(simdetect.Config{
		Gate:         gate,
		Sender:       bridge,
		ActiveSims:   bridge.ActiveSims(),
		PhoneNumbers: bridge.PhoneNumbers(),
		SimSlots:     bridge.SimSlots(),
		NoTelephony:  conf.NoTelephony,
		Logger:       log,
	})
	dispatcher := dispatch.New(detector, bridge, auditSink, log,
		dispatch.WithSendTimeout(conf.SendTimeout))

	// ── HTTP surface ─────────────────────────────────────────────────────────
	fiberApp := fiber.New(fiber.Config{
		AppName:               "dispatch-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Batch sends are sequential; writes can take a while.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
		ServerHeader: "",
		BodyLimit:    1 * 1024 * 1024,
	})

	fiberApp.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	fiberApp.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${method} ${path} ${latency}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	fiberApp.Use(middleware.RequestID())
	fiberApp.Use(middleware.SecurityHeaders())
	fiberApp.Use(middleware.CORSConfig(conf.AllowedOrigins))

	rateLimiter := middleware.NewRateLimiter(conf.RateLimit, conf.RateWindow)
	fiberApp.Use(rateLimiter.Middleware())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	handler := transport.NewHandler(dispatcher, detector, auditRepo, log)
	handler.Register(fiberApp.Group("/api"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Info("dispatch-api started", "addr", conf.HTTPAddr, "bridge", conf.BridgeURL)
		if err := fiberApp.Listen(conf.HTTPAddr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		return errors.New("failed to shutdown gracefully: " + err.Error())
	}

	log.Info("dispatch-api stopped gracefully")
	return nil
}
