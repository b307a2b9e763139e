package get

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

type OrderGetter interface {
	Order(ctx context.Context, id int64) (*models.Order, error)
	OrdersByCustomer(ctx context.Context, customer string) ([]models.Order, error)
}

type OrderCache interface {
	Get(key int64) (value *models.Order, ok bool)
	Add(key int64, value *models.Order) (evicted bool)
}

type OrderRetrievalService struct {
	log   *slog.Logger
	cache OrderCache

	orderGetter OrderGetter
}

func New(
	log *slog.Logger,
	cache OrderCache,
	orderGetter OrderGetter,
) *OrderRetrievalService {
	return &OrderRetrievalService{
		log:         log,
		cache:       cache,
		orderGetter: orderGetter,
	}
}

// Order returns the order only to the customer who placed it; anybody else
// gets ErrOrderNotFound.
func (os *OrderRetrievalService) Order(ctx context.Context, id int64, customer string) (*models.Order, error) {
	const op = "service.order.Order"

	order, ok := os.cache.Get(id)
	if ok {
		os.log.DebugContext(ctx, "cache was used", slog.String("op", op), slog.Int64("order_id", id))
	} else {
		var err error
		order, err = os.orderGetter.Order(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		_ = os.cache.Add(id, order)
	}

	if order.Customer != customer {
		return nil, fmt.Errorf("%s: %w", op, internalErrors.ErrOrderNotFound)
	}

	return order, nil
}

func (os *OrderRetrievalService) Orders(ctx context.Context, customer string) ([]models.Order, error) {
	const op = "service.order.Orders"

	orders, err := os.orderGetter.OrdersByCustomer(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}
