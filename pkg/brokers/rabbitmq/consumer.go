package rabbitmq

import (
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads the work queue with manual acknowledgement.
type Consumer struct {
	ch    Channel
	queue string
	tag   string
}

func NewConsumer(ch Channel, topology Topology, prefetch int) (*Consumer, error) {
	const op = "rabbitmq.NewConsumer"

	if err := Declare(ch, topology); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("%s: set qos: %w", op, err)
	}

	return &Consumer{
		ch:    ch,
		queue: topology.Queue,
		tag:   "reconciler-" + uuid.NewString(),
	}, nil
}

func (c *Consumer) Deliveries() (<-chan amqp.Delivery, error) {
	deliveries, err := c.ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq.Consumer.Deliveries: %w", err)
	}

	return deliveries, nil
}

// Cancel stops new deliveries. Deliveries already handed out stay valid for
// Ack and Nack until the channel is closed.
func (c *Consumer) Cancel() error {
	return c.ch.Cancel(c.tag, false)
}
