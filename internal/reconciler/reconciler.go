package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/metrics"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=reconciler.go -destination=mocks/mock_reconciler.go -package=mocks

// Prefetch is fixed at one: a consumer holds a single unacknowledged message,
// so stock mutations of one instance are strictly serialized.
const Prefetch = 1

var ErrDeliveriesClosed = errors.New("deliveries channel closed by broker")

type DeliverySource interface {
	Deliveries() (<-chan amqp.Delivery, error)
	Cancel() error
}

type StockReconciler interface {
	Reconcile(ctx context.Context, event models.OrderEvent) error
}

type Reconciler struct {
	log        logger.Logger
	source     DeliverySource
	reconciler StockReconciler
	attempts   *attempts
	tracer     trace.Tracer

	maxDeliveries     int
	processingTimeout time.Duration
}

func New(log logger.Logger, source DeliverySource, reconciler StockReconciler, cfg config.ReconcilerConfig) (*Reconciler, error) {
	tracker, err := newAttempts(cfg.AttemptCacheSize)
	if err != nil {
		return nil, fmt.Errorf("reconciler.New: %w", err)
	}

	return &Reconciler{
		log:               log,
		source:            source,
		reconciler:        reconciler,
		attempts:          tracker,
		tracer:            otel.Tracer("reconciler"),
		maxDeliveries:     cfg.MaxDeliveries,
		processingTimeout: cfg.ProcessingTimeout,
	}, nil
}

// Run consumes until ctx is done. On shutdown it cancels the consumer and
// returns after the message in hand, if any, has been acked or nacked. The
// caller closes the channel and connection afterwards.
func (r *Reconciler) Run(ctx context.Context) error {
	const op = "reconciler.Run"

	deliveries, err := r.source.Deliveries()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.log.InfoContext(ctx, "reconciler started", slog.String("op", op))

	for {
		select {
		case <-ctx.Done():
			if err = r.source.Cancel(); err != nil {
				r.log.WarnContext(ctx, "cancel consumer", slog.String("op", op), logger.Err(err))
			}
			r.log.InfoContext(ctx, "reconciler stopped", slog.String("op", op))
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%s: %w", op, ErrDeliveriesClosed)
			}

			r.handle(ctx, d)
		}
	}
}

func (r *Reconciler) handle(ctx context.Context, d amqp.Delivery) {
	const op = "reconciler.handle"

	// In-flight work outlives shutdown: only the processing timeout stops it.
	ctx = tracing.ExtractHeaders(context.WithoutCancel(ctx), d.Headers)
	ctx, span := r.tracer.Start(ctx, "reconcile order event",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.message.id", d.MessageId),
			attribute.Bool("messaging.rabbitmq.redelivered", d.Redelivered),
		),
	)
	defer span.End()

	attempt := r.attempts.next(d)

	err := r.process(ctx, d)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			r.log.ErrorContext(ctx, "ack failed", slog.String("op", op), slog.String("message_id", d.MessageId), logger.Err(ackErr))
			return
		}

		r.attempts.forget(d)
		metrics.ReconcilerDeliveries.WithLabelValues(metrics.OutcomeAcked).Inc()
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if r.maxDeliveries > 0 && attempt >= r.maxDeliveries {
		r.log.ErrorContext(ctx, "giving up on message, dead-lettering",
			slog.String("op", op),
			slog.String("message_id", d.MessageId),
			slog.Int("attempt", attempt),
			logger.Err(err),
		)

		if nackErr := d.Nack(false, false); nackErr != nil {
			r.log.ErrorContext(ctx, "nack failed", slog.String("op", op), logger.Err(nackErr))
			return
		}

		r.attempts.forget(d)
		metrics.ReconcilerDeliveries.WithLabelValues(metrics.OutcomeDeadLettered).Inc()
		return
	}

	r.log.WarnContext(ctx, "processing failed, requeueing",
		slog.String("op", op),
		slog.String("message_id", d.MessageId),
		slog.Int("attempt", attempt),
		slog.Bool("redelivered", d.Redelivered),
		logger.Err(err),
	)

	if nackErr := d.Nack(false, true); nackErr != nil {
		r.log.ErrorContext(ctx, "nack failed", slog.String("op", op), logger.Err(nackErr))
		return
	}

	metrics.ReconcilerDeliveries.WithLabelValues(metrics.OutcomeRequeued).Inc()
}

func (r *Reconciler) process(ctx context.Context, d amqp.Delivery) error {
	event, err := models.DecodeOrderEvent(d.Body)
	if err != nil {
		return err
	}

	if r.processingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.processingTimeout)
		defer cancel()
	}

	return r.reconciler.Reconcile(ctx, event)
}
