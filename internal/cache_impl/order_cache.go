package cache_impl

import (
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
)

type CacheI[K comparable, V any] interface {
	Get(key K) (value V, ok bool)
	Add(key K, value V) (evicted bool)
}

// Cache keeps recently created or read orders. Orders never change after
// confirmation, so entries only leave through size or TTL eviction.
type Cache struct {
	cache CacheI[int64, models.Order]
	log   *slog.Logger
}

func NewCache(
	cache CacheI[int64, models.Order],
	log *slog.Logger,
) *Cache {
	return &Cache{
		cache: cache,
		log:   log,
	}
}

func NewOrderCache(log *slog.Logger, size int, ttl time.Duration) *Cache {
	return NewCache(expirable.NewLRU[int64, models.Order](size, nil, ttl), log)
}

// Add stores a copy so later changes to the caller's order do not leak in.
func (c *Cache) Add(key int64, value *models.Order) (evicted bool) {
	if value == nil {
		return false
	}

	order := *value
	order.Items = append([]models.OrderItem(nil), value.Items...)

	return c.cache.Add(key, order)
}

func (c *Cache) Get(key int64) (value *models.Order, ok bool) {
	order, ok := c.cache.Get(key)
	if !ok {
		c.log.Debug("order cache miss", slog.Int64("order_id", key))
		return nil, false
	}

	return &order, true
}
