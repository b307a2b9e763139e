package errors

import "errors"

var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrForbidden           = errors.New("forbidden")
	ErrRouteNotFound       = errors.New("route not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrInvalidBody         = errors.New("request body is not valid json")

	ErrBrokerUnavailable = errors.New("broker unavailable")

	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrVersionConflict = errors.New("product was modified concurrently")
)
