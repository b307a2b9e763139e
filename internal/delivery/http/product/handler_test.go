package product

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/product/mocks"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	productService "github.com/tumbleweedd/two_services_system/order_inventory/internal/services/product"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

var teclado = models.Product{ID: 3, Name: "Teclado", Description: "Mechanical", PriceCents: 25000, Quantity: 10, Version: 2}

const tecladoJSON = `{"id":3,"name":"Teclado","description":"Mechanical","price_cents":25000,"quantity":10,"version":2}`

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequireIdentity)
	r.Route("/api/products", h.Routes)

	return r
}

func TestProductRoutes(t *testing.T) {
	qty := 50

	type mockBehavior func(svc *mocks.MockProductService)

	tCases := []struct {
		name         string
		method       string
		target       string
		role         models.Role
		body         string
		mockBehavior mockBehavior
		expStatus    int
		expBody      string
	}{
		{
			name:   "list",
			method: http.MethodGet,
			target: "/api/products",
			role:   models.RoleCustomer,
			mockBehavior: func(svc *mocks.MockProductService) {
				svc.EXPECT().Products(gomock.Any()).Return([]models.Product{teclado}, nil)
			},
			expStatus: http.StatusOK,
			expBody:   "[" + tecladoJSON + "]\n",
		},
		{
			name:   "get",
			method: http.MethodGet,
			target: "/api/products/3",
			role:   models.RoleCustomer,
			mockBehavior: func(svc *mocks.MockProductService) {
				svc.EXPECT().Product(gomock.Any(), int64(3)).Return(&teclado, nil)
			},
			expStatus: http.StatusOK,
			expBody:   tecladoJSON + "\n",
		},
		{
			name:   "get_missing",
			method: http.MethodGet,
			target: "/api/products/404",
			role:   models.RoleAdministrator,
			mockBehavior: func(svc *mocks.MockProductService) {
				svc.EXPECT().Product(gomock.Any(), int64(404)).Return(nil, internalErrors.ErrProductNotFound)
			},
			expStatus: http.StatusNotFound,
			expBody:   "{\"error\":\"product not found\"}\n",
		},
		{
			name:   "create",
			method: http.MethodPost,
			target: "/api/products",
			role:   models.RoleAdministrator,
			body:   `{"name":"Teclado","description":"Mechanical","price_cents":25000,"quantity":10}`,
			mockBehavior: func(svc *mocks.MockProductService) {
				svc.EXPECT().Create(gomock.Any(), models.Product{
					Name: "Teclado", Description: "Mechanical", PriceCents: 25000, Quantity: 10,
				}).Return(teclado, nil)
			},
			expStatus: http.StatusCreated,
			expBody:   tecladoJSON + "\n",
		},
		{
			name:         "create_as_customer",
			method:       http.MethodPost,
			target:       "/api/products",
			role:         models.RoleCustomer,
			body:         `{"name":"Teclado","quantity":10}`,
			mockBehavior: func(*mocks.MockProductService) {},
			expStatus:    http.StatusForbidden,
			expBody:      "{\"error\":\"forbidden\"}\n",
		},
		{
			name:         "create_without_name",
			method:       http.MethodPost,
			target:       "/api/products",
			role:         models.RoleAdministrator,
			body:         `{"quantity":10}`,
			mockBehavior: func(*mocks.MockProductService) {},
			expStatus:    http.StatusBadRequest,
			expBody:      "{\"error\":\"invalid name\"}\n",
		},
		{
			name:         "create_negative_price",
			method:       http.MethodPost,
			target:       "/api/products",
			role:         models.RoleAdministrator,
			body:         `{"name":"Teclado","price_cents":-1}`,
			mockBehavior: func(*mocks.MockProductService) {},
			expStatus:    http.StatusBadRequest,
			expBody:      "{\"error\":\"invalid price_cents\"}\n",
		},
		{
			name:   "update_quantity",
			method: http.MethodPut,
			target: "/api/products/3",
			role:   models.RoleAdministrator,
			body:   `{"quantity":50}`,
			mockBehavior: func(svc *mocks.MockProductService) {
				updated := teclado
				updated.Quantity = 50
				updated.Version = 3
				svc.EXPECT().Update(gomock.Any(), int64(3), productService.Patch{Quantity: &qty}).Return(updated, nil)
			},
			expStatus: http.StatusOK,
			expBody:   `{"id":3,"name":"Teclado","description":"Mechanical","price_cents":25000,"quantity":50,"version":3}` + "\n",
		},
		{
			name:   "update_stale_version",
			method: http.MethodPut,
			target: "/api/products/3",
			role:   models.RoleAdministrator,
			body:   `{"quantity":50,"version":1}`,
			mockBehavior: func(svc *mocks.MockProductService) {
				svc.EXPECT().Update(gomock.Any(), int64(3), gomock.Any()).Return(models.Product{}, internalErrors.ErrVersionConflict)
			},
			expStatus: http.StatusConflict,
			expBody:   "{\"error\":\"product was modified concurrently\"}\n",
		},
		{
			name:         "update_nothing",
			method:       http.MethodPut,
			target:       "/api/products/3",
			role:         models.RoleAdministrator,
			body:         `{"version":2}`,
			mockBehavior: func(*mocks.MockProductService) {},
			expStatus:    http.StatusBadRequest,
			expBody:      "{\"error\":\"nothing to update\"}\n",
		},
		{
			name:         "update_negative_quantity",
			method:       http.MethodPut,
			target:       "/api/products/3",
			role:         models.RoleAdministrator,
			body:         `{"quantity":-5}`,
			mockBehavior: func(*mocks.MockProductService) {},
			expStatus:    http.StatusBadRequest,
			expBody:      "{\"error\":\"invalid quantity\"}\n",
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			target: "/api/products/3",
			role:   models.RoleAdministrator,
			mockBehavior: func(svc *mocks.MockProductService) {
				svc.EXPECT().Delete(gomock.Any(), int64(3)).Return(nil)
			},
			expStatus: http.StatusNoContent,
		},
		{
			name:   "delete_database_down",
			method: http.MethodDelete,
			target: "/api/products/3",
			role:   models.RoleAdministrator,
			mockBehavior: func(svc *mocks.MockProductService) {
				svc.EXPECT().Delete(gomock.Any(), int64(3)).Return(errors.New("connection refused"))
			},
			expStatus: http.StatusInternalServerError,
			expBody:   "{\"error\":\"internal error\"}\n",
		},
		{
			name:         "bad_id",
			method:       http.MethodGet,
			target:       "/api/products/zero",
			role:         models.RoleCustomer,
			mockBehavior: func(*mocks.MockProductService) {},
			expStatus:    http.StatusBadRequest,
			expBody:      "{\"error\":\"invalid product id\"}\n",
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			svc := mocks.NewMockProductService(ctl)
			tCase.mockBehavior(svc)

			router := newRouter(NewHandler(logger.Discard(), svc))

			req := httptest.NewRequest(tCase.method, tCase.target, bytes.NewBufferString(tCase.body))
			req.Header.Set("X-User-Name", "someone")
			req.Header.Set("X-User-Role", string(tCase.role))

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tCase.expStatus, rec.Code)
			require.Equal(t, tCase.expBody, rec.Body.String())
		})
	}
}
