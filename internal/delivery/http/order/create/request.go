package create

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
)

var (
	errEmptyItems       = errors.New("order must contain at least one item")
	errInvalidProductID = errors.New("invalid product_id")
	errInvalidQuantity  = errors.New("quantity must be greater than zero")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CreateOrderRequest struct {
	Items []Item `json:"items" validate:"required,min=1,dive"`
}

type Item struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

func (req *CreateOrderRequest) validate() error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	switch fieldErrs[0].Field() {
	case "ProductID":
		return errInvalidProductID
	case "Quantity":
		return errInvalidQuantity
	default:
		return errEmptyItems
	}
}

func (req *CreateOrderRequest) toDTO() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return items
}
