package create_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/order/create"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/order/create/mocks"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()
	items := []models.OrderItem{{ProductID: 3, Quantity: 2}}
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	errDB := errors.New("could not serialize access")

	type mockBehavior func(
		creator *mocks.MockOrderCreator,
		cache *mocks.MockOrderCache,
		notifier *mocks.MockOutboxNotifier,
	)

	tCases := []struct {
		name         string
		mockBehavior mockBehavior
		expected     *models.Order
		expErr       error
	}{
		{
			name: "OK",
			mockBehavior: func(creator *mocks.MockOrderCreator, cache *mocks.MockOrderCache, notifier *mocks.MockOutboxNotifier) {
				saved := models.Order{
					ID:        7,
					Customer:  "cliente",
					Status:    models.OrderStatusConfirmed,
					CreatedAt: createdAt,
					Items:     []models.OrderItem{{OrderID: 7, ProductID: 3, Quantity: 2}},
				}

				gomock.InOrder(
					creator.EXPECT().Create(ctx, models.Order{
						Customer: "cliente",
						Status:   models.OrderStatusConfirmed,
						Items:    items,
					}).Return(saved, nil),
					cache.EXPECT().Add(int64(7), &saved).Return(false),
					notifier.EXPECT().Notify(),
				)
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
			name: "repository_error",
			mockBehavior: func(creator *mocks.MockOrderCreator, _ *mocks.MockOrderCache, _ *mocks.MockOutboxNotifier) {
				creator.EXPECT().Create(ctx, gomock.Any()).Return(models.Order{}, errDB)
			},
			expErr: errDB,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			creator := mocks.NewMockOrderCreator(ctl)
			cache := mocks.NewMockOrderCache(ctl)
			notifier := mocks.NewMockOutboxNotifier(ctl)
			tCase.mockBehavior(creator, cache, notifier)

			svc := create.New(logger.Discard(), cache, creator, notifier)

			order, err := svc.Create(ctx, "cliente", items)
			if tCase.expErr != nil {
				require.ErrorIs(t, err, tCase.expErr)
				require.Nil(t, order)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tCase.expected, order)
		})
	}
}
