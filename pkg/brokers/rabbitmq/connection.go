package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel used by the publisher, the consumer
// and the topology declaration.
type Channel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
	Close() error
}

var _ Channel = (*amqp.Channel)(nil)

type DialConfig struct {
	URL      string
	Attempts int
	Backoff  time.Duration
}

// Connection owns one AMQP connection and the single channel opened on it.
// Close releases both.
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Dial retries while the broker is still starting up.
func Dial(ctx context.Context, log *slog.Logger, cfg DialConfig) (*Connection, error) {
	const op = "rabbitmq.Dial"

	attempts := max(cfg.Attempts, 1)

	var (
		conn *amqp.Connection
		err  error
	)
	for i := 1; i <= attempts; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}

		log.Warn("rabbitmq dial failed",
			slog.String("op", op),
			slog.Int("attempt", i),
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()),
		)

		if i == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, errors.Join(err, ctx.Err()))
		case <-time.After(cfg.Backoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: open channel: %w", op, err)
	}

	return &Connection{conn: conn, channel: ch}, nil
}

func (c *Connection) Channel() *amqp.Channel {
	return c.channel
}

func (c *Connection) Close() error {
	var err error
	if c.channel != nil && !c.channel.IsClosed() {
		err = c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		err = errors.Join(err, c.conn.Close())
	}

	return err
}
