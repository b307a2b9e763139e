package dispatch

import (
	"context"
	"strconv"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/brokers/rabbitmq"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type rabbitPublisher interface {
	Publish(ctx context.Context, msg rabbitmq.Message) error
}

// RabbitSink publishes to the work queue the reconciler consumes. The outbox
// event uuid becomes the AMQP message id.
type RabbitSink struct {
	publisher rabbitPublisher
}

func NewRabbitSink(publisher rabbitPublisher) *RabbitSink {
	return &RabbitSink{publisher: publisher}
}

func (s *RabbitSink) Name() string {
	return "rabbitmq"
}

func (s *RabbitSink) Publish(ctx context.Context, msg models.OutboxMessage) error {
	return s.publisher.Publish(ctx, rabbitmq.Message{
		ID:      msg.EventUUID.String(),
		Type:    msg.EventType,
		Body:    msg.Payload,
		Headers: tracing.InjectHeaders(ctx, nil),
	})
}

type kafkaProducer interface {
	Send(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// KafkaSink mirrors events to a Kafka topic for downstream analytics.
type KafkaSink struct {
	producer kafkaProducer
}

func NewKafkaSink(producer kafkaProducer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Publish(ctx context.Context, msg models.OutboxMessage) error {
	headers := propagation.MapCarrier{
		"event_uuid": msg.EventUUID.String(),
		"event_type": msg.EventType,
	}
	otel.GetTextMapPropagator().Inject(ctx, headers)

	return s.producer.Send(ctx, strconv.FormatInt(msg.OrderID, 10), msg.Payload, headers)
}
