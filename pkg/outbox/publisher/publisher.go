package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	"github.com/emailam/Petzania-sub000/pkg/outbox/domain"
	"github.com/emailam/Petzania-sub000/pkg/utils"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type KafkaProducer interface {
	ProduceMessage(ctx context.Context, topic, key string, value []byte) error
}

type FallbackStore interface {
	SaveFallback(ctx context.Context, event *domain.OutboxEvent) error
}

type Config struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	AttemptTimeout time.Duration
}

// Publisher attempts direct broker delivery with bounded retry and falls
// back to a durable outbox row when the retry budget is spent. When Publish
// returns nil, exactly one of the two holds: the broker confirmed the
// message, or an unprocessed outbox row exists for the relay to drain.
type Publisher struct {
	producer KafkaProducer
	fallback FallbackStore
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
	cfg      Config
	tracer   trace.Tracer
}

func NewPublisher(
	producer KafkaProducer,
	fallback FallbackStore,
	logger *zap.Logger,
	cfg Config,
) *Publisher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 2 * time.Second
	}

	return &Publisher{
		producer: producer,
		fallback: fallback,
		breaker:  utils.NewBrokerBreaker("event-publisher"),
		logger:   logger,
		cfg:      cfg,
		tracer:   otel.Tracer("event_publisher"),
	}
}

func (p *Publisher) Publish(ctx context.Context, env *events.Envelope) error {
	ctx, span := p.tracer.Start(ctx, "Publisher.Publish")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", env.EventID),
		attribute.String("event_type", env.EventType),
	)

	topic := events.TopicFor(env.EventType)
	if topic == "" {
		return fmt.Errorf("no topic for event type %s", env.EventType)
	}

	raw, err := env.Marshal()
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := p.cfg.BackoffBase * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(backoff):
			}
			if lastErr != nil {
				break
			}
		}

		lastErr = p.produceOnce(ctx, topic, env.EntityID, raw)
		if lastErr == nil {
			return nil
		}

		mylogger.Warn(
			ctx,
			p.logger,
			"Direct publish attempt failed",
			zap.String("event_id", env.EventID),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}

	span.RecordError(lastErr)

	outboxEvent, err := domain.FromEnvelope(env)
	if err != nil {
		return fmt.Errorf("failed to build outbox fallback: %w", err)
	}

	// The fallback write runs outside any business transaction; once the row
	// is in, durability is the relay's problem and the publish succeeded from
	// the caller's point of view.
	if err := p.fallback.SaveFallback(context.WithoutCancel(ctx), outboxEvent); err != nil {
		span.RecordError(err)

		return fmt.Errorf("publish failed and outbox fallback failed: %w (publish error: %s)", err, lastErr)
	}

	mylogger.Info(
		ctx,
		p.logger,
		"Publish retries exhausted, event persisted to outbox",
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
	)

	return nil
}

func (p *Publisher) produceOnce(ctx context.Context, topic, key string, value []byte) error {
	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	defer cancel()

	_, err := utils.ExecuteWithBreaker(p.breaker, func() (struct{}, error) {
		return struct{}{}, p.producer.ProduceMessage(attemptCtx, topic, key, value)
	})

	return err
}
