package route

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
)

var testGateway = config.GatewayConfig{
	Services: map[string]string{
		ServiceInventory: "http://inventory:8081/api",
		ServiceSales:     "http://sales:8082/api",
	},
}

func TestMatch(t *testing.T) {
	table, err := NewTable(testGateway)
	require.NoError(t, err)

	tCases := []struct {
		name      string
		path      string
		method    string
		expRole   models.Role
		expTarget string
		expErr    error
	}{
		{
			name:      "inventory_list",
			path:      "/gateway/inventory/products",
			method:    http.MethodGet,
			expTarget: "http://inventory:8081/api/products",
		},
		{
			name:      "inventory_create",
			path:      "/gateway/inventory/products",
			method:    http.MethodPost,
			expRole:   models.RoleAdministrator,
			expTarget: "http://inventory:8081/api/products",
		},
		{
			name:      "inventory_delete",
			path:      "/gateway/inventory/products/3",
			method:    http.MethodDelete,
			expRole:   models.RoleAdministrator,
			expTarget: "http://inventory:8081/api/products/3",
		},
		{
			name:      "sales_create",
			path:      "/gateway/sales/orders",
			method:    http.MethodPost,
			expRole:   models.RoleCustomer,
			expTarget: "http://sales:8082/api/orders",
		},
		{
			name:      "service_root",
			path:      "/gateway/sales",
			method:    http.MethodGet,
			expRole:   models.RoleCustomer,
			expTarget: "http://sales:8082/api",
		},
		{
			name:   "unknown_service",
			path:   "/gateway/billing/invoices",
			method: http.MethodGet,
			expErr: internalErrors.ErrRouteNotFound,
		},
		{
			name:   "segment_boundary",
			path:   "/gateway/inventoryX/products",
			method: http.MethodGet,
			expErr: internalErrors.ErrRouteNotFound,
		},
		{
			name:   "unlisted_method",
			path:   "/gateway/inventory/products",
			method: http.MethodPatch,
			expErr: internalErrors.ErrRouteNotFound,
		},
		{
			name:   "outside_gateway",
			path:   "/api/products",
			method: http.MethodGet,
			expErr: internalErrors.ErrRouteNotFound,
		},
		{
			name:   "dot_segments",
			path:   "/gateway/inventory/../sales/orders",
			method: http.MethodGet,
			expErr: internalErrors.ErrRouteNotFound,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			match, err := table.Match(tCase.path, tCase.method)
			if tCase.expErr != nil {
				require.ErrorIs(t, err, tCase.expErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tCase.expRole, match.Rule.Role)
			require.Equal(t, tCase.expTarget, match.Target.String())
		})
	}
}

func TestFirstMatchWins(t *testing.T) {
	cfg := testGateway
	cfg.Routes = []config.RouteConfig{
		{Service: ServiceInventory, Method: "get", Role: string(models.RoleAdministrator)},
		{Service: ServiceInventory, Method: http.MethodGet, Role: RoleAny},
	}

	table, err := NewTable(cfg)
	require.NoError(t, err)

	match, err := table.Match("/gateway/inventory/products", http.MethodGet)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdministrator, match.Rule.Role)

	_, err = table.Match("/gateway/sales/orders", http.MethodGet)
	require.ErrorIs(t, err, internalErrors.ErrRouteNotFound)
}

func TestNewTableRejectsBadConfig(t *testing.T) {
	tCases := []struct {
		name string
		cfg  config.GatewayConfig
	}{
		{
			name: "route_without_upstream",
			cfg: config.GatewayConfig{
				Services: map[string]string{ServiceSales: "http://sales:8082/api"},
			},
		},
		{
			name: "relative_upstream",
			cfg: config.GatewayConfig{
				Services: map[string]string{ServiceInventory: "inventory/api", ServiceSales: "http://sales:8082/api"},
			},
		},
		{
			name: "unknown_role",
			cfg: config.GatewayConfig{
				Services: testGateway.Services,
				Routes:   []config.RouteConfig{{Service: ServiceSales, Method: http.MethodGet, Role: "Auditor"}},
			},
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			_, err := NewTable(tCase.cfg)
			require.Error(t, err)
		})
	}
}

func TestAuthorize(t *testing.T) {
	admin := models.Identity{Name: "admin", Role: models.RoleAdministrator}
	customer := models.Identity{Name: "cliente", Role: models.RoleCustomer}

	tCases := []struct {
		name     string
		rule     Rule
		identity models.Identity
		expErr   error
	}{
		{name: "any_role_admin", rule: Rule{}, identity: admin},
		{name: "any_role_customer", rule: Rule{}, identity: customer},
		{name: "admin_on_admin_route", rule: Rule{Role: models.RoleAdministrator}, identity: admin},
		{name: "customer_on_admin_route", rule: Rule{Role: models.RoleAdministrator}, identity: customer, expErr: internalErrors.ErrForbidden},
		{name: "admin_on_customer_route", rule: Rule{Role: models.RoleCustomer}, identity: admin, expErr: internalErrors.ErrForbidden},
		{name: "customer_on_customer_route", rule: Rule{Role: models.RoleCustomer}, identity: customer},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			err := Authorize(tCase.rule, tCase.identity)
			if tCase.expErr != nil {
				require.ErrorIs(t, err, tCase.expErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
