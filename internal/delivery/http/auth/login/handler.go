package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	httpLib "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_handler.go -package=mocks

type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error)
}

type Handler struct {
	log logger.Logger

	authenticator Authenticator
}

func NewHandler(log logger.Logger, authenticator Authenticator) *Handler {
	return &Handler{
		log:           log,
		authenticator: authenticator,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.auth.Login"

	var request LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.log.WarnContext(r.Context(), "failed to decode request", slog.String("op", op), logger.Err(err))
		httpLib.WriteJSONError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if err := request.validate(); err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	token, expiresAt, err := h.authenticator.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		if errors.Is(err, internalErrors.ErrInvalidCredentials) {
			httpLib.WriteJSONError(w, http.StatusUnauthorized, "invalid credentials", "")
			return
		}

		h.log.ErrorContext(r.Context(), "failed to login", slog.String("op", op), logger.Err(err))
		httpLib.WriteJSONError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	if err = httpLib.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}); err != nil {
		h.log.ErrorContext(r.Context(), "failed to encode response", slog.String("op", op), logger.Err(err))
	}
}
