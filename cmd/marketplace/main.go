package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/emailam/Petzania-sub000/internal/marketplace/repository"
	"github.com/emailam/Petzania-sub000/internal/marketplace/service"
	transport "github.com/emailam/Petzania-sub000/internal/marketplace/transport/kafka"
	"github.com/emailam/Petzania-sub000/pkg/config"
	"github.com/emailam/Petzania-sub000/pkg/db"
	"github.com/emailam/Petzania-sub000/pkg/kafka"
	"github.com/emailam/Petzania-sub000/pkg/outbox/publisher"
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

	tp, err := utils.InitTracer(ctx, "marketplace-service")
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

	outboxRepo := outboxRepository.NewOutboxRepository(pool, logger)
	postRepo := repository.NewPostRepository(pool, logger)
	shadowRepo := repository.NewShadowRepository(pool, logger)

	pub := publisher.NewPublisher(producer, outboxRepo, logger, publisher.Config{
		MaxAttempts:    cfg.Publisher.MaxAttempts,
		BackoffBase:    cfg.Publisher.BackoffBase,
		AttemptTimeout: cfg.Publisher.AttemptTimeout,
	})

	marketplaceService := service.NewMarketplaceService(
		pool,
		logger,
		postRepo,
		shadowRepo,
		outboxRepo,
		pub,
	)

	relay := worker.NewOutboxRelay(pool, outboxRepo, producer, logger, worker.RelayConfig{
		BatchSize:       cfg.Outbox.BatchSize,
		Interval:        cfg.Outbox.RelayInterval,
		CleanupInterval: cfg.Outbox.CleanupInterval,
		Retention:       cfg.Outbox.Retention,
	})

	go relay.Start(ctx)

	consumer := transport.NewConsumer(marketplaceService, logger)
	go consumer.Start(ctx, cfg.Kafka.Brokers)

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
