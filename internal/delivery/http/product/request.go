package product

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	productService "github.com/tumbleweedd/two_services_system/order_inventory/internal/services/product"
)

var (
	errInvalidProductID = errors.New("invalid product id")
	errEmptyPatch       = errors.New("nothing to update")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
}

func (req *CreateProductRequest) validate() error {
	return validationError(validate.Struct(req))
}

func (req *CreateProductRequest) toDTO() models.Product {
	return models.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Quantity:    req.Quantity,
	}
}

type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	Quantity    *int    `json:"quantity" validate:"omitempty,gte=0"`
	Version     *int64  `json:"version" validate:"omitempty,gt=0"`
}

func (req *UpdateProductRequest) validate() error {
	if req.Name == nil && req.Description == nil && req.PriceCents == nil && req.Quantity == nil {
		return errEmptyPatch
	}

	return validationError(validate.Struct(req))
}

func (req *UpdateProductRequest) toDTO() productService.Patch {
	return productService.Patch{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Quantity:    req.Quantity,
		Version:     req.Version,
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidProductID
	}

	return id, nil
}

// validationError turns the first failed field into a short message such as
// "invalid price_cents".
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	return errors.New("invalid " + jsonName(fieldErrs[0].Field()))
}

func jsonName(field string) string {
	switch field {
	case "PriceCents":
		return "price_cents"
	case "Name":
		return "name"
	case "Description":
		return "description"
	case "Quantity":
		return "quantity"
	case "Version":
		return "version"
	default:
		return field
	}
}
