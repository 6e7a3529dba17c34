package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/emailam/Petzania-sub000/internal/marketplace/service"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/emailam/Petzania-sub000/pkg/kafka"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	"go.uber.org/zap"
)

type Consumer struct {
	service service.MarketplaceService
	logger  *zap.Logger
}

func NewConsumer(service service.MarketplaceService, logger *zap.Logger) *Consumer {
	return &Consumer{
		service: service,
		logger:  logger,
	}
}

func (c *Consumer) Start(ctx context.Context, brokers []string) {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		"marketplace-service-group",
		[]string{events.TopicUserLifecycle, events.TopicSocialBlock},
		c.ProcessMessage,
		c.logger,
	)

	consumerGroup.Run(ctx)
}

func (c *Consumer) ProcessMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	env, err := events.Decode(msg.Value)
	if err != nil {
		mylogger.Error(
			ctx,
			c.logger,
			"Dropping undecodable envelope",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)

		return nil
	}

	mylogger.Info(
		ctx,
		c.logger,
		"Processing message",
		zap.String("topic", msg.Topic),
		zap.String("event_type", env.EventType),
		zap.String("event_id", env.EventID),
	)

	switch env.EventType {
	case events.UserCreated:
		return c.service.HandleUserCreated(ctx, env)
	case events.UserDeleted:
		return c.service.HandleUserDeleted(ctx, env)
	case events.UserBlocked:
		return c.service.HandleUserBlocked(ctx, env)
	case events.UserUnblocked:
		return c.service.HandleUserUnblocked(ctx, env)
	default:
		mylogger.Warn(ctx, c.logger, "Ignored event type", zap.String("event_type", env.EventType))
	}

	return nil
}
