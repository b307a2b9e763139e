package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	httpLib "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

type orderCreator interface {
	Create(ctx context.Context, customer string, items []models.OrderItem) (*models.Order, error)
}

type Handler struct {
	log logger.Logger

	orderCreator orderCreator
}

func NewHandler(log logger.Logger, orderCreator orderCreator) *Handler {
	return &Handler{
		log:          log,
		orderCreator: orderCreator,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.order.Create"

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httpLib.WriteJSONError(w, http.StatusUnauthorized, "missing identity", "")
		return
	}

	var request CreateOrderRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.log.WarnContext(r.Context(), "failed to decode request", slog.String("op", op), logger.Err(err))
		httpLib.WriteJSONError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if err := request.validate(); err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	order, err := h.orderCreator.Create(r.Context(), identity.Name, request.toDTO())
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to create order", slog.String("op", op), logger.Err(err))
		httpLib.WriteJSONError(w, http.StatusInternalServerError, "failed to create order", "")
		return
	}

	w.Header().Set("Location", "/api/orders/"+strconv.FormatInt(order.ID, 10))

	if err = httpLib.WriteJSON(w, http.StatusCreated, order); err != nil {
		h.log.ErrorContext(r.Context(), "failed to encode response", slog.String("op", op), logger.Err(err))
	}
}
