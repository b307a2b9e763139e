// Package route holds the gateway's ordered route table. A request is matched
// on (path, method) by the first rule that fits, then authorized against the
// rule's required role before anything is sent upstream.
package route

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
)

const (
	Prefix = "/gateway/"

	ServiceInventory = "inventory"
	ServiceSales     = "sales"

	// RoleAny in config lets every authenticated identity through.
	RoleAny = "any"
)

// Rule is one row of the route table. An empty Role means any authenticated
// identity is allowed.
type Rule struct {
	PathPrefix string
	Method     string
	Role       models.Role
	Service    string
}

// Match is a matched rule plus the upstream URL the request goes to.
type Match struct {
	Rule   Rule
	Target *url.URL
}

type Table struct {
	rules     []Rule
	upstreams map[string]*url.URL
}

// DefaultRoutes is used when the config carries no routes: inventory reads
// are open to every role, inventory writes need an Administrator, and every
// sales verb needs a Customer.
func DefaultRoutes() []config.RouteConfig {
	return []config.RouteConfig{
		{Service: ServiceInventory, Method: http.MethodGet, Role: RoleAny},
		{Service: ServiceInventory, Method: http.MethodPost, Role: string(models.RoleAdministrator)},
		{Service: ServiceInventory, Method: http.MethodPut, Role: string(models.RoleAdministrator)},
		{Service: ServiceInventory, Method: http.MethodDelete, Role: string(models.RoleAdministrator)},
		{Service: ServiceSales, Method: http.MethodGet, Role: string(models.RoleCustomer)},
		{Service: ServiceSales, Method: http.MethodPost, Role: string(models.RoleCustomer)},
		{Service: ServiceSales, Method: http.MethodPut, Role: string(models.RoleCustomer)},
		{Service: ServiceSales, Method: http.MethodDelete, Role: string(models.RoleCustomer)},
	}
}

func NewTable(cfg config.GatewayConfig) (*Table, error) {
	const op = "services.gateway.route.NewTable"

	upstreams := make(map[string]*url.URL, len(cfg.Services))
	for service, raw := range cfg.Services {
		base, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: service %q: %w", op, service, err)
		}
		if base.Scheme == "" || base.Host == "" {
			return nil, fmt.Errorf("%s: service %q: base url %q must be absolute", op, service, raw)
		}

		upstreams[service] = base
	}

	routes := cfg.Routes
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}

	rules := make([]Rule, 0, len(routes))
	for i, rc := range routes {
		if _, ok := upstreams[rc.Service]; !ok {
			return nil, fmt.Errorf("%s: route %d: no upstream configured for service %q", op, i, rc.Service)
		}

		role, err := parseRole(rc.Role)
		if err != nil {
			return nil, fmt.Errorf("%s: route %d: %w", op, i, err)
		}

		rules = append(rules, Rule{
			PathPrefix: Prefix + rc.Service,
			Method:     strings.ToUpper(rc.Method),
			Role:       role,
			Service:    rc.Service,
		})
	}

	return &Table{rules: rules, upstreams: upstreams}, nil
}

func parseRole(raw string) (models.Role, error) {
	switch {
	case raw == "" || strings.EqualFold(raw, RoleAny):
		return "", nil
	case raw == string(models.RoleAdministrator):
		return models.RoleAdministrator, nil
	case raw == string(models.RoleCustomer):
		return models.RoleCustomer, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Match returns the first rule whose prefix and method fit. Paths that try
// to climb out of the service with dot segments never match.
func (t *Table) Match(path, method string) (Match, error) {
	for _, rule := range t.rules {
		rest, ok := trailing(path, rule.PathPrefix)
		if !ok || rule.Method != method {
			continue
		}

		if hasDotSegment(rest) {
			return Match{}, internalErrors.ErrRouteNotFound
		}

		return Match{Rule: rule, Target: t.upstreams[rule.Service].JoinPath(rest)}, nil
	}

	return Match{}, internalErrors.ErrRouteNotFound
}

// trailing strips prefix from path, requiring a segment boundary so that
// "/gateway/inventoryX" does not match "/gateway/inventory".
func trailing(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}

	rest := path[len(prefix):]
	if rest != "" && rest[0] != '/' {
		return "", false
	}

	return strings.TrimPrefix(rest, "/"), true
}

func hasDotSegment(path string) bool {
	for _, segment := range strings.Split(path, "/") {
		if segment == "." || segment == ".." {
			return true
		}
	}

	return false
}

func Authorize(rule Rule, identity models.Identity) error {
	if rule.Role == "" || rule.Role == identity.Role {
		return nil
	}

	return internalErrors.ErrForbidden
}
