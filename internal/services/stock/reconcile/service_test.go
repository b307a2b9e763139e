package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/stock/reconcile"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/stock/reconcile/mocks"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	errDB := errors.New("connection refused")

	event := models.OrderEvent{
		OrderID: 7,
		LineItems: []models.LineItem{
			{ProductID: 3, Quantity: 2},
			{ProductID: 404, Quantity: 1},
		},
	}

	tCases := []struct {
		name    string
		changes []models.StockChange
		repoErr error
		expErr  error
	}{
		{
			name: "applied_and_skipped",
			changes: []models.StockChange{
				{ProductID: 3, Requested: 2, Before: 10, After: 8},
				{ProductID: 404, Requested: 1, Skipped: true},
			},
		},
		{
			name: "negative_stock_is_not_an_error",
			changes: []models.StockChange{
				{ProductID: 3, Requested: 2, Before: 1, After: -1},
				{ProductID: 404, Requested: 1, Skipped: true},
			},
		},
		{
			name:    "store_failure",
			repoErr: errDB,
			expErr:  errDB,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			repo := mocks.NewMockStockDecrementer(ctl)
			repo.EXPECT().ApplyDecrements(ctx, event.LineItems).Return(tCase.changes, tCase.repoErr)

			err := reconcile.New(logger.Discard(), repo).Reconcile(ctx, event)
			if tCase.expErr != nil {
				require.ErrorIs(t, err, tCase.expErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
