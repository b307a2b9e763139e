package reconciler

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

const headerDeliveryCount = "x-delivery-count"

// attempts counts how often a message has been handed to this process.
// Quorum queues report the count themselves in x-delivery-count; classic
// queues only flag redeliveries, so the count is kept in a bounded LRU keyed
// by message id. After a restart the count starts over, which can only
// delay dead-lettering, never trigger it early.
type attempts struct {
	seen *lru.Cache[string, int]
}

func newAttempts(size int) (*attempts, error) {
	seen, err := lru.New[string, int](max(size, 1))
	if err != nil {
		return nil, err
	}

	return &attempts{seen: seen}, nil
}

func (a *attempts) next(d amqp.Delivery) int {
	if count, ok := deliveryCount(d.Headers); ok {
		return int(count) + 1
	}

	key := messageKey(d)

	n, _ := a.seen.Get(key)
	n++
	if d.Redelivered && n < 2 {
		n = 2
	}
	a.seen.Add(key, n)

	return n
}

func (a *attempts) forget(d amqp.Delivery) {
	a.seen.Remove(messageKey(d))
}

func deliveryCount(headers amqp.Table) (int64, bool) {
	switch v := headers[headerDeliveryCount].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func messageKey(d amqp.Delivery) string {
	if d.MessageId != "" {
		return d.MessageId
	}

	sum := sha256.Sum256(d.Body)

	return hex.EncodeToString(sum[:])
}
