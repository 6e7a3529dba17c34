package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/emailam/Petzania-sub000/internal/notification/repository"
	"github.com/emailam/Petzania-sub000/internal/notification/service"
	transport "github.com/emailam/Petzania-sub000/internal/notification/transport/kafka"
	"github.com/emailam/Petzania-sub000/pkg/config"
	"github.com/emailam/Petzania-sub000/pkg/db"
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

	tp, err := utils.InitTracer(ctx, "notification-service")
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

	notificationRepo := repository.NewNotificationRepository(pool, logger)
	notificationService := service.NewNotificationService(pool, notificationRepo, logger)

	consumer := transport.NewConsumer(notificationService, logger)
	go consumer.Start(ctx, cfg.Kafka.Brokers)

	<-ctx.Done()

	shutdownCtx, exit := context.WithTimeout(context.Background(), 5*time.Second)
	defer exit()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error closing telemetry: %v\n", err)
	} else {
		log.Printf("Closed telemetry successfully")
	}

	pool.Close()
	log.Println("✅ Postgres pool closed")
}
