package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	httpLib "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

type orderGetter interface {
	Order(ctx context.Context, id int64, customer string) (*models.Order, error)
	Orders(ctx context.Context, customer string) ([]models.Order, error)
}

type Handler struct {
	log logger.Logger

	orderGetter orderGetter
}

func NewHandler(log logger.Logger, orderGetter orderGetter) *Handler {
	return &Handler{
		log:         log,
		orderGetter: orderGetter,
	}
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.order.Orders"

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httpLib.WriteJSONError(w, http.StatusUnauthorized, "missing identity", "")
		return
	}

	orders, err := h.orderGetter.Orders(r.Context(), identity.Name)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to get orders", slog.String("op", op), logger.Err(err))
		httpLib.WriteJSONError(w, http.StatusInternalServerError, "failed to get orders", "")
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}

	if err = httpLib.WriteJSON(w, http.StatusOK, orders); err != nil {
		h.log.ErrorContext(r.Context(), "failed to encode response", slog.String("op", op), logger.Err(err))
	}
}

func (h *Handler) Order(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.order.Order"

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httpLib.WriteJSONError(w, http.StatusUnauthorized, "missing identity", "")
		return
	}

	request := OrderByIDRequest{ID: chi.URLParam(r, "id")}
	if err := request.validate(); err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	order, err := h.orderGetter.Order(r.Context(), request.toServiceRepresentation(), identity.Name)
	if err != nil {
		if errors.Is(err, internalErrors.ErrOrderNotFound) {
			httpLib.WriteJSONError(w, http.StatusNotFound, "order not found", "")
			return
		}

		h.log.ErrorContext(r.Context(), "failed to get order", slog.String("op", op), logger.Err(err))
		httpLib.WriteJSONError(w, http.StatusInternalServerError, "failed to get order", "")
		return
	}

	if err = httpLib.WriteJSON(w, http.StatusOK, order); err != nil {
		h.log.ErrorContext(r.Context(), "failed to encode response", slog.String("op", op), logger.Err(err))
	}
}
