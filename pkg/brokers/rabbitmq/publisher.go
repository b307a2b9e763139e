package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrNacked        = errors.New("broker rejected the message")
	ErrConfirmClosed = errors.New("confirm channel closed")
)

type Message struct {
	ID      string
	Type    string
	Body    []byte
	Headers amqp.Table
}

// Publisher sends persistent messages to the work queue through the default
// exchange and waits for the broker's publisher confirm.
type Publisher struct {
	mu sync.Mutex

	ch             Channel
	queue          string
	confirms       chan amqp.Confirmation
	confirmTimeout time.Duration
	published      uint64
}

func NewPublisher(ch Channel, topology Topology, confirmTimeout time.Duration) (*Publisher, error) {
	const op = "rabbitmq.NewPublisher"

	if err := Declare(ch, topology); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("%s: enable confirms: %w", op, err)
	}

	return &Publisher{
		ch:             ch,
		queue:          topology.Queue,
		confirms:       ch.NotifyPublish(make(chan amqp.Confirmation, 16)),
		confirmTimeout: confirmTimeout,
	}, nil
}

// Publish returns once the broker has taken responsibility for the message.
// It does not wait for any consumer.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	const op = "rabbitmq.Publisher.Publish"

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.Type,
		Timestamp:    time.Now(),
		Headers:      msg.Headers,
		Body:         msg.Body,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.published++

	if err = p.waitConfirm(ctx, p.published); err != nil {
		return fmt.Errorf("%s: message %s: %w", op, msg.ID, err)
	}

	return nil
}

// waitConfirm skips confirmations left over from publishes that timed out.
func (p *Publisher) waitConfirm(ctx context.Context, tag uint64) error {
	ctx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	for {
		select {
		case confirm, ok := <-p.confirms:
			if !ok {
				return ErrConfirmClosed
			}
			if confirm.DeliveryTag < tag {
				continue
			}
			if !confirm.Ack {
				return ErrNacked
			}
			return nil
		case <-ctx.Done():
			return fmt.Errorf("wait for confirm: %w", ctx.Err())
		}
	}
}
