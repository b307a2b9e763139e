package order

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

func newRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewOrderRepository(logger.Discard(), sqlx.NewDb(db, "postgres")), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepository(t)
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	order := models.Order{
		Customer: "cliente",
		Status:   models.OrderStatusConfirmed,
		Items: []models.OrderItem{
			{ProductID: 3, Quantity: 2},
			{ProductID: 5, Quantity: 1},
		},
	}

	payload, err := models.EncodeOrderEvent(models.OrderEvent{
		OrderID:   7,
		LineItems: []models.LineItem{{ProductID: 3, Quantity: 2}, {ProductID: 5, Quantity: 1}},
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders (customer, status) VALUES ($1, $2) RETURNING id, created_at`)).
		WithArgs("cliente", models.OrderStatusConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, createdAt))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3), ($4, $5, $6)`)).
		WithArgs(int64(7), int64(3), 2, int64(7), int64(5), 1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO outbox (event_uuid, event_type, order_id, payload) VALUES ($1, $2, $3, $4)`)).
		WithArgs(sqlmock.AnyArg(), models.EventTypeOrderPlaced, int64(7), payload).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	require.Equal(t, int64(7), created.ID)
	require.Equal(t, createdAt, created.CreatedAt)
	require.Equal(t, int64(7), created.Items[1].OrderID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackWhenOutboxFails(t *testing.T) {
	repo, mock := newRepository(t)
	errOutbox := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO outbox`)).
		WillReturnError(errOutbox)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), models.Order{
		Customer: "cliente",
		Status:   models.OrderStatusConfirmed,
		Items:    []models.OrderItem{{ProductID: 3, Quantity: 2}},
	})
	require.ErrorIs(t, err, errOutbox)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrder(t *testing.T) {
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tCases := []struct {
		name     string
		behavior func(mock sqlmock.Sqlmock)
		expected *models.Order
		expErr   error
	}{
		{
			name: "found",
			behavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer, status, created_at FROM orders WHERE id = $1`)).
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "customer", "status", "created_at"}).
						AddRow(7, "cliente", models.OrderStatusConfirmed, createdAt))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT order_id, product_id, quantity FROM order_items WHERE order_id = $1 ORDER BY id`)).
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "quantity"}).AddRow(7, 3, 2))
			},
			expected: &models.Order{
				ID:        7,
				Customer:  "cliente",
				Status:    models.OrderStatusConfirmed,
				CreatedAt: createdAt,
				Items:     []models.OrderItem{{OrderID: 7, ProductID: 3, Quantity: 2}},
			},
		},
		{
			name: "not_found",
			behavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer, status, created_at FROM orders WHERE id = $1`)).
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "customer", "status", "created_at"}))
			},
			expErr: internalErrors.ErrOrderNotFound,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			repo, mock := newRepository(t)
			tCase.behavior(mock)

			order, err := repo.Order(context.Background(), 7)
			if tCase.expErr != nil {
				require.ErrorIs(t, err, tCase.expErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, tCase.expected, order)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrdersByCustomer(t *testing.T) {
	repo, mock := newRepository(t)
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer, status, created_at FROM orders WHERE customer = $1 ORDER BY id DESC`)).
		WithArgs("cliente").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer", "status", "created_at"}).
			AddRow(8, "cliente", models.OrderStatusConfirmed, createdAt).
			AddRow(7, "cliente", models.OrderStatusConfirmed, createdAt))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT order_id, product_id, quantity FROM order_items WHERE order_id = ANY($1) ORDER BY id`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "quantity"}).
			AddRow(7, 3, 2).
			AddRow(8, 1, 1).
			AddRow(8, 2, 4))

	orders, err := repo.OrdersByCustomer(context.Background(), "cliente")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, int64(8), orders[0].ID)
	require.Len(t, orders[0].Items, 2)
	require.Equal(t, []models.OrderItem{{OrderID: 7, ProductID: 3, Quantity: 2}}, orders[1].Items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersByCustomerEmpty(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer, status, created_at FROM orders WHERE customer = $1`)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer", "status", "created_at"}))

	orders, err := repo.OrdersByCustomer(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, orders)
	require.NotNil(t, orders)
	require.NoError(t, mock.ExpectationsWereMet())
}
