package product

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	httpLib "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/http"
	productService "github.com/tumbleweedd/two_services_system/order_inventory/internal/services/product"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_handler.go -package=mocks

type ProductService interface {
	Products(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product models.Product) (models.Product, error)
	Update(ctx context.Context, id int64, patch productService.Patch) (models.Product, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	log logger.Logger

	products ProductService
}

func NewHandler(log logger.Logger, products ProductService) *Handler {
	return &Handler{
		log:      log,
		products: products,
	}
}

// Routes mounts the product endpoints. Reads are open to every identity,
// writes need an Administrator.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleAdministrator))

		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.product.List"

	products, err := h.products.Products(r.Context())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	if products == nil {
		products = []models.Product{}
	}

	h.write(w, r, op, http.StatusOK, products)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.product.Get"

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	product, err := h.products.Product(r.Context(), id)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.write(w, r, op, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.product.Create"

	var request CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if err := request.validate(); err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	product, err := h.products.Create(r.Context(), request.toDTO())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	w.Header().Set("Location", "/api/products/"+strconv.FormatInt(product.ID, 10))
	h.write(w, r, op, http.StatusCreated, product)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.product.Update"

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	var request UpdateProductRequest
	if err = json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if err = request.validate(); err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	product, err := h.products.Update(r.Context(), id, request.toDTO())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.write(w, r, op, http.StatusOK, product)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.product.Delete"

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httpLib.WriteJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err = h.products.Delete(r.Context(), id); err != nil {
		h.fail(w, r, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, internalErrors.ErrProductNotFound):
		httpLib.WriteJSONError(w, http.StatusNotFound, "product not found", "")
	case errors.Is(err, internalErrors.ErrVersionConflict):
		httpLib.WriteJSONError(w, http.StatusConflict, "product was modified concurrently", "")
	default:
		h.log.ErrorContext(r.Context(), "product request failed", slog.String("op", op), logger.Err(err))
		httpLib.WriteJSONError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, op string, status int, body any) {
	if err := httpLib.WriteJSON(w, status, body); err != nil {
		h.log.ErrorContext(r.Context(), "failed to encode response", slog.String("op", op), logger.Err(err))
	}
}
