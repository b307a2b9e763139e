package create

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

type OrderCreator interface {
	Create(ctx context.Context, order models.Order) (models.Order, error)
}

type OrderCache interface {
	Add(key int64, value *models.Order) (evicted bool)
}

// OutboxNotifier wakes the outbox dispatcher so a fresh order does not wait
// for the next poll.
type OutboxNotifier interface {
	Notify()
}

type OrderCreationService struct {
	log   *slog.Logger
	cache OrderCache

	orderCreator OrderCreator
	notifier     OutboxNotifier
}

func New(log *slog.Logger, cache OrderCache, orderCreator OrderCreator, notifier OutboxNotifier) *OrderCreationService {
	return &OrderCreationService{
		log:          log,
		cache:        cache,
		orderCreator: orderCreator,
		notifier:     notifier,
	}
}

// Create confirms the order immediately. Stock is reconciled later from the
// ORDER_PLACED event written alongside it.
func (os *OrderCreationService) Create(ctx context.Context, customer string, items []models.OrderItem) (*models.Order, error) {
	const op = "services.order.Create"

	order, err := os.orderCreator.Create(ctx, models.Order{
		Customer: customer,
		Status:   models.OrderStatusConfirmed,
		Items:    items,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_ = os.cache.Add(order.ID, &order)
	os.notifier.Notify()

	os.log.InfoContext(ctx, "order confirmed",
		slog.String("op", op),
		slog.Int64("order_id", order.ID),
		slog.String("customer", customer),
		slog.Int("items", len(items)),
	)

	return &order, nil
}
