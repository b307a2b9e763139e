package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

type BatchDispatcher interface {
	DispatchBatch(ctx context.Context, limit int, publish func(ctx context.Context, msg models.OutboxMessage) error) (int, error)
}

// Sink is one destination for outbox messages. A message counts as sent
// only after every sink accepted it.
type Sink interface {
	Name() string
	Publish(ctx context.Context, msg models.OutboxMessage) error
}

type Service struct {
	log        logger.Logger
	dispatcher BatchDispatcher
	sinks      []Sink

	batchSize int
	interval  time.Duration
	wake      chan struct{}
	tracer    trace.Tracer
}

func New(log logger.Logger, dispatcher BatchDispatcher, cfg config.OutboxConfig, sinks ...Sink) *Service {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}

	return &Service{
		log:        log,
		dispatcher: dispatcher,
		sinks:      sinks,
		batchSize:  max(cfg.BatchSize, 1),
		interval:   interval,
		wake:       make(chan struct{}, 1),
		tracer:     otel.Tracer("outbox"),
	}
}

// Notify asks Run for an early pass. It never blocks.
func (s *Service) Notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Dispatch drains the outbox batch by batch until a batch comes back short
// or a publish fails. It returns the number of messages sent.
func (s *Service) Dispatch(ctx context.Context) (int, error) {
	const op = "services.outbox.Dispatch"

	total := 0
	for {
		sent, err := s.dispatcher.DispatchBatch(ctx, s.batchSize, s.publish)
		total += sent
		if err != nil {
			return total, fmt.Errorf("%s: %w", op, err)
		}

		if sent < s.batchSize {
			return total, nil
		}
	}
}

// Run dispatches on every tick and on Notify until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	const op = "services.outbox.Run"

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-s.wake:
		}

		sent, err := s.Dispatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.ErrorContext(ctx, "outbox dispatch failed", slog.String("op", op), slog.Int("sent", sent), logger.Err(err))
			continue
		}

		if sent > 0 {
			s.log.DebugContext(ctx, "outbox dispatched", slog.String("op", op), slog.Int("sent", sent))
		}
	}
}

func (s *Service) publish(ctx context.Context, msg models.OutboxMessage) error {
	ctx, span := s.tracer.Start(ctx, "outbox publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.message.id", msg.EventUUID.String()),
			attribute.Int64("order.id", msg.OrderID),
		),
	)
	defer span.End()

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, msg); err != nil {
			metrics.OutboxFailures.WithLabelValues(sink.Name()).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return fmt.Errorf("%w: %s: %v", internalErrors.ErrBrokerUnavailable, sink.Name(), err)
		}

		metrics.OutboxPublished.WithLabelValues(sink.Name()).Inc()
	}

	return nil
}
