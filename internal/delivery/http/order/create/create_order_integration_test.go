package create

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/order/create"
	mockServices "github.com/tumbleweedd/two_services_system/order_inventory/internal/services/order/create/mocks"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

func TestCreateOrders(t *testing.T) {
	log := logger.Discard()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	type mockBehavior func(
		repo *mockServices.MockOrderCreator,
		cache *mockServices.MockOrderCache,
		notifier *mockServices.MockOutboxNotifier,
	)

	tCases := []struct {
		name         string
		reqBody      string
		mockBehavior mockBehavior
		expStatus    int
		expBody      string
		expLocation  string
	}{
		{
			name:    "OK",
			reqBody: `{"items":[{"product_id":3,"quantity":2}]}`,
			mockBehavior: func(repo *mockServices.MockOrderCreator, cache *mockServices.MockOrderCache, notifier *mockServices.MockOutboxNotifier) {
				repo.EXPECT().Create(gomock.Any(), models.Order{
					Customer: "cliente",
					Status:   models.OrderStatusConfirmed,
					Items:    []models.OrderItem{{ProductID: 3, Quantity: 2}},
				}).Return(models.Order{
					ID:        7,
					Customer:  "cliente",
					Status:    models.OrderStatusConfirmed,
					CreatedAt: createdAt,
					Items:     []models.OrderItem{{OrderID: 7, ProductID: 3, Quantity: 2}},
				}, nil)
				cache.EXPECT().Add(int64(7), gomock.Any()).Return(false)
				notifier.EXPECT().Notify()
			},
			expStatus:   http.StatusCreated,
			expBody:     "{\"id\":7,\"customer\":\"cliente\",\"status\":\"Confirmed\",\"created_at\":\"2026-03-01T12:00:00Z\",\"items\":[{\"product_id\":3,\"quantity\":2}]}\n",
			expLocation: "/api/orders/7",
		},
		{
			name:         "empty_items",
			reqBody:      `{"items":[]}`,
			mockBehavior: func(*mockServices.MockOrderCreator, *mockServices.MockOrderCache, *mockServices.MockOutboxNotifier) {},
			expStatus:    http.StatusBadRequest,
			expBody:      "{\"error\":\"order must contain at least one item\"}\n",
		},
		{
			name:         "zero_quantity",
			reqBody:      `{"items":[{"product_id":3,"quantity":0}]}`,
			mockBehavior: func(*mockServices.MockOrderCreator, *mockServices.MockOrderCache, *mockServices.MockOutboxNotifier) {},
			expStatus:    http.StatusBadRequest,
			expBody:      "{\"error\":\"quantity must be greater than zero\"}\n",
		},
		{
			name:         "malformed_json",
			reqBody:      `{"items":[`,
			mockBehavior: func(*mockServices.MockOrderCreator, *mockServices.MockOrderCache, *mockServices.MockOutboxNotifier) {},
			expStatus:    http.StatusBadRequest,
			expBody:      "{\"error\":\"invalid request body\"}\n",
		},
		{
			name:    "repository_failure",
			reqBody: `{"items":[{"product_id":3,"quantity":2}]}`,
			mockBehavior: func(repo *mockServices.MockOrderCreator, cache *mockServices.MockOrderCache, notifier *mockServices.MockOutboxNotifier) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.Order{}, errors.New("could not serialize access"))
			},
			expStatus: http.StatusInternalServerError,
			expBody:   "{\"error\":\"failed to create order\"}\n",
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			repo := mockServices.NewMockOrderCreator(ctl)
			cache := mockServices.NewMockOrderCache(ctl)
			notifier := mockServices.NewMockOutboxNotifier(ctl)
			tCase.mockBehavior(repo, cache, notifier)

			h := NewHandler(log, create.New(log, cache, repo, notifier))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(tCase.reqBody))
			req = req.WithContext(middleware.WithIdentity(context.Background(), models.Identity{Name: "cliente", Role: models.RoleCustomer}))
			req.Header.Set("Content-Type", "application/json")

			h.Create(rec, req)

			res := rec.Result()
			defer res.Body.Close()

			data, err := io.ReadAll(res.Body)
			require.NoError(t, err)

			require.Equal(t, tCase.expStatus, res.StatusCode)
			require.Equal(t, tCase.expBody, string(data))
			require.Equal(t, tCase.expLocation, res.Header.Get("Location"))
		})
	}
}

func TestCreateWithoutIdentity(t *testing.T) {
	h := NewHandler(logger.Discard(), nil)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(`{}`)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
