package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/emailam/Petzania-sub000/pkg/config"
	"github.com/emailam/Petzania-sub000/pkg/db"
	"github.com/emailam/Petzania-sub000/pkg/kafka"
	outboxRepository "github.com/emailam/Petzania-sub000/pkg/outbox/repository"
	"github.com/emailam/Petzania-sub000/pkg/outbox/worker"
	"github.com/emailam/Petzania-sub000/pkg/utils"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "registration-service")
	if err != nil {
		log.Fatalf("Error starting telemetry: %v", err)
	}

	logger, err := config.NewLogger(config.LoggerConfig{
		Level: "info",
		Env:   cfg.Env,
	})
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("error creating postgres db: %v", err)
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	// Registration has no inbound topics; the process exists to drain the
	// outbox the write path fills.
	outboxRepo := outboxRepository.NewOutboxRepository(pool, logger)

	relay := worker.NewOutboxRelay(pool, outboxRepo, producer, logger, worker.RelayConfig{
		BatchSize:       cfg.Outbox.BatchSize,
		Interval:        cfg.Outbox.RelayInterval,
		CleanupInterval: cfg.Outbox.CleanupInterval,
		Retention:       cfg.Outbox.Retention,
	})

	go relay.Start(ctx)

	<-ctx.Done()

	shutdownCtx, exit := context.WithTimeout(context.Background(), 5*time.Second)
	defer exit()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error closing telemetry: %v\n", err)
	} else {
		log.Printf("Closed telemetry successfully")
	}

	if err := producer.Close(); err != nil {
		log.Printf("Error closing producer: %v\n", err)
	}

	pool.Close()
	log.Println("✅ Postgres pool closed")
}
