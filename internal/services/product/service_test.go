package product_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/product"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/product/mocks"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

func keyboard(quantity int, version int64) *models.Product {
	return &models.Product{
		ID:          3,
		Name:        "Teclado",
		Description: "Mechanical keyboard",
		PriceCents:  25000,
		Quantity:    quantity,
		Version:     version,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	errDB := errors.New("connection refused")

	type mockBehavior func(store *mocks.MockProductStore)

	tCases := []struct {
		name         string
		patch        product.Patch
		mockBehavior mockBehavior
		expected     models.Product
		expErr       error
	}{
		{
			name:  "quantity_without_version",
			patch: product.Patch{Quantity: ptr(50)},
			mockBehavior: func(store *mocks.MockProductStore) {
				gomock.InOrder(
					store.EXPECT().Product(ctx, int64(3)).Return(keyboard(10, 4), nil),
					store.EXPECT().Update(ctx, *keyboard(50, 4)).Return(*keyboard(50, 5), nil),
				)
			},
			expected: *keyboard(50, 5),
		},
		{
			name:  "retries_after_concurrent_decrement",
			patch: product.Patch{PriceCents: ptr(int64(19900))},
			mockBehavior: func(store *mocks.MockProductStore) {
				stale := keyboard(10, 4)
				fresh := keyboard(8, 5)

				staleWrite := *stale
				staleWrite.PriceCents = 19900
				freshWrite := *fresh
				freshWrite.PriceCents = 19900
				saved := freshWrite
				saved.Version = 6

				gomock.InOrder(
					store.EXPECT().Product(ctx, int64(3)).Return(stale, nil),
					store.EXPECT().Update(ctx, staleWrite).Return(models.Product{}, internalErrors.ErrVersionConflict),
					store.EXPECT().Product(ctx, int64(3)).Return(fresh, nil),
					store.EXPECT().Update(ctx, freshWrite).Return(saved, nil),
				)
			},
			expected: models.Product{ID: 3, Name: "Teclado", Description: "Mechanical keyboard", PriceCents: 19900, Quantity: 8, Version: 6},
		},
		{
			name:  "pinned_version_conflict_is_returned",
			patch: product.Patch{Quantity: ptr(50), Version: ptr(int64(3))},
			mockBehavior: func(store *mocks.MockProductStore) {
				store.EXPECT().Product(ctx, int64(3)).Return(keyboard(10, 4), nil)
				store.EXPECT().Update(ctx, *keyboard(50, 3)).Return(models.Product{}, internalErrors.ErrVersionConflict)
			},
			expErr: internalErrors.ErrVersionConflict,
		},
		{
			name:  "gives_up_after_repeated_conflicts",
			patch: product.Patch{Quantity: ptr(50)},
			mockBehavior: func(store *mocks.MockProductStore) {
				store.EXPECT().Product(ctx, int64(3)).Return(keyboard(10, 4), nil).Times(3)
				store.EXPECT().Update(ctx, gomock.Any()).Return(models.Product{}, internalErrors.ErrVersionConflict).Times(3)
			},
			expErr: internalErrors.ErrVersionConflict,
		},
		{
			name:  "not_found",
			patch: product.Patch{Quantity: ptr(1)},
			mockBehavior: func(store *mocks.MockProductStore) {
				store.EXPECT().Product(ctx, int64(3)).Return(nil, internalErrors.ErrProductNotFound)
			},
			expErr: internalErrors.ErrProductNotFound,
		},
		{
			name:  "store_failure",
			patch: product.Patch{Quantity: ptr(1)},
			mockBehavior: func(store *mocks.MockProductStore) {
				store.EXPECT().Product(ctx, int64(3)).Return(keyboard(10, 4), nil)
				store.EXPECT().Update(ctx, gomock.Any()).Return(models.Product{}, errDB)
			},
			expErr: errDB,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			store := mocks.NewMockProductStore(ctl)
			tCase.mockBehavior(store)

			svc := product.New(logger.Discard(), store)

			updated, err := svc.Update(ctx, 3, tCase.patch)
			if tCase.expErr != nil {
				require.ErrorIs(t, err, tCase.expErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tCase.expected, updated)
		})
	}
}

func TestCRUDPassThrough(t *testing.T) {
	ctx := context.Background()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	store := mocks.NewMockProductStore(ctl)
	svc := product.New(logger.Discard(), store)

	store.EXPECT().Products(ctx).Return([]models.Product{*keyboard(10, 1)}, nil)
	products, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	store.EXPECT().Product(ctx, int64(3)).Return(keyboard(10, 1), nil)
	got, err := svc.Product(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, keyboard(10, 1), got)

	input := models.Product{Name: "Mouse", PriceCents: 9900, Quantity: 40}
	store.EXPECT().Create(ctx, input).Return(models.Product{ID: 4, Name: "Mouse", PriceCents: 9900, Quantity: 40, Version: 1}, nil)
	created, err := svc.Create(ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(4), created.ID)

	store.EXPECT().Delete(ctx, int64(9)).Return(internalErrors.ErrProductNotFound)
	require.ErrorIs(t, svc.Delete(ctx, 9), internalErrors.ErrProductNotFound)
}
