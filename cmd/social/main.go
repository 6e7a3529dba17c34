package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/emailam/Petzania-sub000/internal/social/repository"
	"github.com/emailam/Petzania-sub000/internal/social/service"
	transport "github.com/emailam/Petzania-sub000/internal/social/transport/kafka"
	"github.com/emailam/Petzania-sub000/pkg/config"
	"github.com/emailam/Petzania-sub000/pkg/db"
	"github.com/emailam/Petzania-sub000/pkg/kafka"
	outboxRepository "github.com/emailam/Petzania-sub000/pkg/outbox/repository"
	"github.com/emailam/Petzania-sub000/pkg/outbox/worker"
	"github.com/emailam/Petzania-sub000/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "social-service")
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

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	outboxRepo := outboxRepository.NewOutboxRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	friendshipRepo := repository.NewFriendshipRepository(pool, logger)
	chatRepo := repository.NewChatRepository(pool, logger)

	blockChecker := service.NewCachedBlockChecker(
		service.NewBlockChecker(friendshipRepo),
		redisClient,
	)

	socialService := service.NewSocialService(
		pool,
		logger,
		userRepo,
		friendshipRepo,
		chatRepo,
		outboxRepo,
		blockChecker,
	)

	relay := worker.NewOutboxRelay(pool, outboxRepo, producer, logger, worker.RelayConfig{
		BatchSize:       cfg.Outbox.BatchSize,
		Interval:        cfg.Outbox.RelayInterval,
		CleanupInterval: cfg.Outbox.CleanupInterval,
		Retention:       cfg.Outbox.Retention,
	})

	go relay.Start(ctx)

	consumer := transport.NewConsumer(socialService, logger)
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

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing redis client: %v\n", err)
	}

	pool.Close()
	log.Println("✅ Postgres pool closed")
}
