package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/databases/postgres"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

type Repository struct {
	log logger.Logger
	db  *sqlx.DB
}

func NewOrderRepository(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{
		log: log,
		db:  db,
	}
}

// Create stores the order, its items and the ORDER_PLACED outbox row in one
// transaction, so an event exists for every committed order.
func (or *Repository) Create(ctx context.Context, order models.Order) (models.Order, error) {
	const op = "repository.order.Create"

	err := postgres.WithTx(ctx, or.db, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(tx *sqlx.Tx) error {
		const orderQuery = `INSERT INTO orders (customer, status) VALUES ($1, $2) RETURNING id, created_at`

		if err := tx.QueryRowxContext(ctx, orderQuery, order.Customer, order.Status).Scan(&order.ID, &order.CreatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if err := insertItems(ctx, tx, order); err != nil {
			return err
		}

		return insertOutbox(ctx, tx, order)
	})
	if err != nil {
		or.log.ErrorContext(ctx, op, logger.Err(err))
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	return order, nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, order models.Order) error {
	const itemsQuery = `INSERT INTO order_items (order_id, product_id, quantity) VALUES %s`

	values := make([]any, 0, len(order.Items)*3)
	placeholders := make([]string, 0, len(order.Items))

	for i, item := range order.Items {
		values = append(values, order.ID, item.ProductID, item.Quantity)

		argID := i * 3
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d)", argID+1, argID+2, argID+3))
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(itemsQuery, strings.Join(placeholders, ", ")), values...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	return nil
}

func insertOutbox(ctx context.Context, tx *sqlx.Tx, order models.Order) error {
	payload, err := models.EncodeOrderEvent(order.Event())
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	const outboxQuery = `INSERT INTO outbox (event_uuid, event_type, order_id, payload) VALUES ($1, $2, $3, $4)`

	if _, err = tx.ExecContext(ctx, outboxQuery, uuid.New(), models.EventTypeOrderPlaced, order.ID, payload); err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}

	return nil
}

func (or *Repository) Order(ctx context.Context, id int64) (*models.Order, error) {
	const op = "repository.order.Order"

	const orderQuery = `SELECT id, customer, status, created_at FROM orders WHERE id = $1`

	var order models.Order
	if err := or.db.GetContext(ctx, &order, orderQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internalErrors.ErrOrderNotFound
		}
		or.log.ErrorContext(ctx, op, logger.Err(err))
		return nil, fmt.Errorf("%s: select order: %w", op, err)
	}

	const itemsQuery = `SELECT order_id, product_id, quantity FROM order_items WHERE order_id = $1 ORDER BY id`

	if err := or.db.SelectContext(ctx, &order.Items, itemsQuery, id); err != nil {
		or.log.ErrorContext(ctx, op, logger.Err(err))
		return nil, fmt.Errorf("%s: select order items: %w", op, err)
	}

	return &order, nil
}

// OrdersByCustomer returns the customer's orders, newest first.
func (or *Repository) OrdersByCustomer(ctx context.Context, customer string) ([]models.Order, error) {
	const op = "repository.order.OrdersByCustomer"

	const ordersQuery = `SELECT id, customer, status, created_at FROM orders WHERE customer = $1 ORDER BY id DESC`

	var orders []models.Order
	if err := or.db.SelectContext(ctx, &orders, ordersQuery, customer); err != nil {
		or.log.ErrorContext(ctx, op, logger.Err(err))
		return nil, fmt.Errorf("%s: select orders: %w", op, err)
	}

	if len(orders) == 0 {
		return []models.Order{}, nil
	}

	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]int, len(orders))
	for i, order := range orders {
		ids = append(ids, order.ID)
		byID[order.ID] = i
	}

	const itemsQuery = `SELECT order_id, product_id, quantity FROM order_items WHERE order_id = ANY($1) ORDER BY id`

	var items []models.OrderItem
	if err := or.db.SelectContext(ctx, &items, itemsQuery, pq.Array(ids)); err != nil {
		or.log.ErrorContext(ctx, op, logger.Err(err))
		return nil, fmt.Errorf("%s: select order items: %w", op, err)
	}

	for _, item := range items {
		i := byID[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	return orders, nil
}
