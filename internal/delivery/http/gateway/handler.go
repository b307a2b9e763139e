package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	httpLib "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/gateway/forward"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/gateway/route"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/metrics"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_handler.go -package=mocks

const maxBodyBytes = 1 << 20

type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

type RouteMatcher interface {
	Match(path, method string) (route.Match, error)
}

type Forwarder interface {
	Forward(ctx context.Context, req forward.Request) (*forward.Response, error)
}

type Handler struct {
	log logger.Logger

	verifier  TokenVerifier
	routes    RouteMatcher
	forwarder Forwarder
}

func NewHandler(log logger.Logger, verifier TokenVerifier, routes RouteMatcher, forwarder Forwarder) *Handler {
	return &Handler{
		log:       log,
		verifier:  verifier,
		routes:    routes,
		forwarder: forwarder,
	}
}

// Proxy authenticates, matches, authorizes and forwards, in that order. A
// request that fails any step never reaches a backend.
func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.gateway.Proxy"

	identity, err := h.verifier.Verify(bearerToken(r))
	if err != nil {
		h.log.InfoContext(r.Context(), "request not authenticated",
			slog.String("op", op),
			slog.String("path", r.URL.Path),
			logger.Err(err),
		)
		metrics.GatewayRequests.WithLabelValues("unknown", metrics.OutcomeUnauthorized).Inc()

		w.Header().Set("WWW-Authenticate", `Bearer realm="gateway"`)
		httpLib.WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	match, err := h.routes.Match(r.URL.EscapedPath(), r.Method)
	if err != nil {
		metrics.GatewayRequests.WithLabelValues("unknown", metrics.OutcomeNotFound).Inc()
		httpLib.WriteJSONError(w, http.StatusNotFound, "route not found", "")
		return
	}

	service := match.Rule.Service

	if err = route.Authorize(match.Rule, identity); err != nil {
		h.log.InfoContext(r.Context(), "request forbidden",
			slog.String("op", op),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("user", identity.Name),
			slog.String("role", string(identity.Role)),
			slog.String("required_role", string(match.Rule.Role)),
		)
		metrics.GatewayRequests.WithLabelValues(service, metrics.OutcomeForbidden).Inc()

		httpLib.WriteJSONError(w, http.StatusForbidden, "forbidden", "")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(service, metrics.OutcomeBadRequest).Inc()
		httpLib.WriteJSONError(w, http.StatusBadRequest, "request body too large", "")
		return
	}

	resp, err := h.forwarder.Forward(r.Context(), forward.Request{
		Service:   service,
		Method:    r.Method,
		Target:    match.Target,
		RawQuery:  r.URL.RawQuery,
		Body:      body,
		Identity:  identity,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, internalErrors.ErrInvalidBody) {
			metrics.GatewayRequests.WithLabelValues(service, metrics.OutcomeBadRequest).Inc()
			httpLib.WriteJSONError(w, http.StatusBadRequest, "invalid json body", "")
			return
		}

		h.log.ErrorContext(r.Context(), "failed to forward request",
			slog.String("op", op),
			slog.String("service", service),
			slog.String("method", r.Method),
			logger.Err(err),
		)
		metrics.GatewayRequests.WithLabelValues(service, metrics.OutcomeUpstreamErr).Inc()

		httpLib.WriteJSONError(w, http.StatusInternalServerError, "gateway failed to process request", "")
		return
	}

	metrics.GatewayRequests.WithLabelValues(service, metrics.OutcomeForwarded).Inc()

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)

	if _, err = w.Write(resp.Body); err != nil {
		h.log.WarnContext(r.Context(), "failed to relay response", slog.String("op", op), logger.Err(err))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
