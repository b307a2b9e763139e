// Package rabbitmqtest is an in-memory AMQP broker good enough to drive the
// publisher and the reconciler in tests: durable queue declaration with
// argument equivalence checks, publisher confirms, prefetch, manual
// ack/nack, requeue with the redelivered flag and dead-lettering.
package rabbitmqtest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/brokers/rabbitmq"
)

var ErrChannelClosed = errors.New("rabbitmqtest: channel closed")

type queue struct {
	durable bool
	args    amqp.Table
	ready   []amqp.Delivery
	unacked int
}

type binding struct {
	exchange string
	key      string
}

type Broker struct {
	mu        sync.Mutex
	queues    map[string]*queue
	exchanges map[string]string
	bindings  map[binding]string
	channels  []*Channel
}

func NewBroker() *Broker {
	return &Broker{
		queues:    make(map[string]*queue),
		exchanges: make(map[string]string),
		bindings:  make(map[binding]string),
	}
}

// Channel opens a new channel on the broker.
func (b *Broker) Channel() *Channel {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := &Channel{
		broker:  b,
		unacked: make(map[uint64]pending),
	}
	b.channels = append(b.channels, ch)

	return ch
}

// QueueLen counts ready and unacknowledged messages, like the management UI.
func (b *Broker) QueueLen(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[name]
	if !ok {
		return 0
	}

	return len(q.ready) + q.unacked
}

// Ready returns a copy of the messages waiting in a queue.
func (b *Broker) Ready(name string) []amqp.Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[name]
	if !ok {
		return nil
	}

	return append([]amqp.Delivery(nil), q.ready...)
}

// QueueArgs returns the arguments the queue was declared with.
func (b *Broker) QueueArgs(name string) (amqp.Table, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[name]
	if !ok {
		return nil, false
	}

	return q.args, true
}

// route must be called with b.mu held.
func (b *Broker) route(exchange, key string, msg amqp.Delivery) {
	name := key
	if exchange != "" {
		bound, ok := b.bindings[binding{exchange: exchange, key: key}]
		if !ok {
			return
		}
		name = bound
	}

	q, ok := b.queues[name]
	if !ok {
		return
	}

	msg.Exchange = exchange
	msg.RoutingKey = key
	q.ready = append(q.ready, msg)
}

// dispatch must be called with b.mu held.
func (b *Broker) dispatch() {
	for _, ch := range b.channels {
		ch.dispatch()
	}
}

var _ rabbitmq.Channel = (*Channel)(nil)

type pending struct {
	queue    string
	delivery amqp.Delivery
}

type consumer struct {
	tag        string
	queue      string
	deliveries chan amqp.Delivery
}

type Channel struct {
	broker *Broker

	closed     bool
	prefetch   int
	confirming bool
	publishSeq uint64
	confirms   []chan amqp.Confirmation
	consumers  []*consumer
	tag        uint64
	unacked    map[uint64]pending

	publishErr  error
	nackPublish bool
}

// FailPublish makes every following publish on this channel return err.
// Pass nil to restore normal behaviour.
func (c *Channel) FailPublish(err error) {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	c.publishErr = err
}

// NackPublishes makes the broker negatively confirm following publishes.
func (c *Channel) NackPublishes(nack bool) {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	c.nackPublish = nack
}

func (c *Channel) Qos(prefetchCount, _ int, _ bool) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	c.prefetch = prefetchCount

	return nil
}

func (c *Channel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}

	if existing, ok := c.broker.exchanges[name]; ok && existing != kind {
		return c.preconditionFailed(fmt.Sprintf("inequivalent arg 'type' for exchange '%s'", name))
	}
	c.broker.exchanges[name] = kind

	return nil
}

func (c *Channel) QueueDeclare(name string, durable, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	if c.closed {
		return amqp.Queue{}, ErrChannelClosed
	}

	if args == nil {
		args = amqp.Table{}
	}

	if existing, ok := c.broker.queues[name]; ok {
		if existing.durable != durable || !reflect.DeepEqual(existing.args, args) {
			return amqp.Queue{}, c.preconditionFailed(fmt.Sprintf("inequivalent arg for queue '%s'", name))
		}

		return amqp.Queue{Name: name, Messages: len(existing.ready)}, nil
	}

	c.broker.queues[name] = &queue{durable: durable, args: args}

	return amqp.Queue{Name: name}, nil
}

func (c *Channel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	c.broker.bindings[binding{exchange: exchange, key: key}] = name

	return nil
}

func (c *Channel) Confirm(_ bool) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	c.confirming = true

	return nil
}

func (c *Channel) NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	c.confirms = append(c.confirms, confirm)

	return confirm
}

func (c *Channel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	if c.publishErr != nil {
		return c.publishErr
	}

	if !c.nackPublish {
		c.broker.route(exchange, key, amqp.Delivery{
			Headers:      copyTable(msg.Headers),
			ContentType:  msg.ContentType,
			DeliveryMode: msg.DeliveryMode,
			MessageId:    msg.MessageId,
			Timestamp:    msg.Timestamp,
			Type:         msg.Type,
			Body:         append([]byte(nil), msg.Body...),
		})
	}

	if c.confirming {
		c.publishSeq++
		for _, confirm := range c.confirms {
			select {
			case confirm <- amqp.Confirmation{DeliveryTag: c.publishSeq, Ack: !c.nackPublish}:
			default:
			}
		}
	}

	c.broker.dispatch()

	return nil
}

func (c *Channel) Consume(queueName, tag string, autoAck, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	if c.closed {
		return nil, ErrChannelClosed
	}
	if autoAck {
		return nil, errors.New("rabbitmqtest: auto-ack consumers are not supported")
	}
	if _, ok := c.broker.queues[queueName]; !ok {
		return nil, &amqp.Error{Code: amqp.NotFound, Reason: fmt.Sprintf("NOT_FOUND - no queue '%s'", queueName)}
	}

	capacity := c.prefetch
	if capacity <= 0 {
		capacity = 64
	}

	cons := &consumer{tag: tag, queue: queueName, deliveries: make(chan amqp.Delivery, capacity)}
	c.consumers = append(c.consumers, cons)

	c.broker.dispatch()

	return cons.deliveries, nil
}

func (c *Channel) Cancel(tag string, _ bool) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	for i, cons := range c.consumers {
		if cons.tag == tag {
			close(cons.deliveries)
			c.consumers = append(c.consumers[:i], c.consumers[i+1:]...)
			return nil
		}
	}

	return nil
}

// Close requeues every unacknowledged delivery, as a broker does when a
// channel goes away.
func (c *Channel) Close() error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	for _, cons := range c.consumers {
		close(cons.deliveries)
	}
	c.consumers = nil

	for tag, p := range c.unacked {
		c.requeue(tag, p)
	}

	for _, confirm := range c.confirms {
		close(confirm)
	}
	c.confirms = nil

	c.broker.dispatch()

	return nil
}

func (c *Channel) Ack(tag uint64, _ bool) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	p, ok := c.unacked[tag]
	if !ok {
		return c.preconditionFailed(fmt.Sprintf("unknown delivery tag %d", tag))
	}

	delete(c.unacked, tag)
	if q, ok := c.broker.queues[p.queue]; ok {
		q.unacked--
	}

	c.broker.dispatch()

	return nil
}

func (c *Channel) Nack(tag uint64, _ bool, requeue bool) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()

	p, ok := c.unacked[tag]
	if !ok {
		return c.preconditionFailed(fmt.Sprintf("unknown delivery tag %d", tag))
	}

	if requeue {
		c.requeue(tag, p)
	} else {
		c.deadLetter(tag, p)
	}

	c.broker.dispatch()

	return nil
}

func (c *Channel) Reject(tag uint64, requeue bool) error {
	return c.Nack(tag, false, requeue)
}

// requeue puts the message back at the head of its queue. Must be called
// with the broker lock held.
func (c *Channel) requeue(tag uint64, p pending) {
	delete(c.unacked, tag)

	q, ok := c.broker.queues[p.queue]
	if !ok {
		return
	}
	q.unacked--

	msg := p.delivery
	msg.Redelivered = true
	msg.Acknowledger = nil
	msg.DeliveryTag = 0
	msg.ConsumerTag = ""
	q.ready = append([]amqp.Delivery{msg}, q.ready...)
}

// deadLetter must be called with the broker lock held.
func (c *Channel) deadLetter(tag uint64, p pending) {
	delete(c.unacked, tag)

	q, ok := c.broker.queues[p.queue]
	if !ok {
		return
	}
	q.unacked--

	exchange, _ := q.args["x-dead-letter-exchange"].(string)
	if exchange == "" {
		return
	}

	key, _ := q.args["x-dead-letter-routing-key"].(string)
	if key == "" {
		key = p.delivery.RoutingKey
	}

	msg := p.delivery
	msg.Acknowledger = nil
	msg.DeliveryTag = 0
	msg.ConsumerTag = ""
	msg.Headers = copyTable(msg.Headers)
	msg.Headers["x-first-death-queue"] = p.queue
	msg.Headers["x-first-death-reason"] = "rejected"

	c.broker.route(exchange, key, msg)
}

// dispatch hands ready messages to this channel's consumers while the
// prefetch window allows. Must be called with the broker lock held.
func (c *Channel) dispatch() {
	if c.closed {
		return
	}

	for _, cons := range c.consumers {
		q, ok := c.broker.queues[cons.queue]
		if !ok {
			continue
		}

		for len(q.ready) > 0 && (c.prefetch <= 0 || len(c.unacked) < c.prefetch) && len(cons.deliveries) < cap(cons.deliveries) {
			msg := q.ready[0]
			q.ready = q.ready[1:]

			c.tag++
			msg.DeliveryTag = c.tag
			msg.ConsumerTag = cons.tag
			msg.Acknowledger = c

			c.unacked[c.tag] = pending{queue: cons.queue, delivery: msg}
			q.unacked++

			cons.deliveries <- msg
		}
	}
}

func (c *Channel) preconditionFailed(reason string) error {
	return &amqp.Error{Code: amqp.PreconditionFailed, Reason: "PRECONDITION_FAILED - " + reason}
}

func copyTable(t amqp.Table) amqp.Table {
	out := make(amqp.Table, len(t))
	for k, v := range t {
		out[k] = v
	}

	return out
}
