package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	headerDeadLetterExchange   = "x-dead-letter-exchange"
	headerDeadLetterRoutingKey = "x-dead-letter-routing-key"
)

// Topology describes the durable work queue and, optionally, the dead-letter
// exchange and queue that receive messages rejected without requeue.
type Topology struct {
	Queue      string
	DeadLetter bool
}

func (t Topology) DeadLetterExchange() string {
	return t.Queue + ".dlx"
}

func (t Topology) DeadLetterQueue() string {
	return t.Queue + ".dlq"
}

// Declare is idempotent. Redeclaring an existing queue with different
// arguments makes the broker close the channel with PRECONDITION_FAILED, and
// that error is returned as is so startup fails.
func Declare(ch Channel, t Topology) error {
	const op = "rabbitmq.Declare"

	args := amqp.Table{}

	if t.DeadLetter {
		if err := ch.ExchangeDeclare(t.DeadLetterExchange(), amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
			return fmt.Errorf("%s: declare exchange %q: %w", op, t.DeadLetterExchange(), err)
		}

		if _, err := ch.QueueDeclare(t.DeadLetterQueue(), true, false, false, false, nil); err != nil {
			return fmt.Errorf("%s: declare queue %q: %w", op, t.DeadLetterQueue(), err)
		}

		if err := ch.QueueBind(t.DeadLetterQueue(), t.Queue, t.DeadLetterExchange(), false, nil); err != nil {
			return fmt.Errorf("%s: bind queue %q: %w", op, t.DeadLetterQueue(), err)
		}

		args[headerDeadLetterExchange] = t.DeadLetterExchange()
		args[headerDeadLetterRoutingKey] = t.Queue
	}

	if _, err := ch.QueueDeclare(t.Queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("%s: declare queue %q: %w", op, t.Queue, err)
	}

	return nil
}
