package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tailor-sms-dispatch/internal/adapters/audit/postgres"
	"tailor-sms-dispatch/internal/adapters/audit/rabbitmq"
	"tailor-sms-dispatch/internal/config"
	"tailor-sms-dispatch/internal/domain"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	conf := config.FromEnv()

	// ── Adapters ─────────────────────────────────────────────────────────────
	repo, err := postgres.New(conf.DatabaseURL)
	if err != nil {
		log.Error("connect postgres", "err", err)
		os.Exit(1)
	}
	defer repo.Close()

	consumer, err := rabbitmq.NewConsumer(conf.AMQPURL, log)
	if err != nil {
		log.Error("connect rabbitmq consumer", "err", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("audit-worker started")

	if err := consumer.Consume(ctx, func(ctx context.Context, rec domain.AuditRecord) error {
		return repo.Save(ctx, rec)
	}); err != nil && ctx.Err() == nil {
		log.Error("consumer error", "err", err)
		os.Exit(1)
	}

	log.Info("shutting down audit-worker")
}
